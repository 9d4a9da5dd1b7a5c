package livetiming

import (
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/getsentry/raven-go"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	panicHandler = middleware.Recoverer

	defaultPanicCapture = func(fn func()) {
		defer func() {
			if r := recover(); r != nil {
				_, _ = fmt.Fprintf(os.Stderr, "\n\nrecovered from panic: %v\n\n", r)
				_, _ = fmt.Fprint(os.Stderr, string(debug.Stack()))
			}
		}()

		fn()
	}

	panicCapture = defaultPanicCapture

	prometheusMonitoringHandler = http.NotFoundHandler

	prometheusMonitoringWrapper = func(next http.Handler) http.Handler {
		return next
	}

	captureError = func(err error) {}
)

// InitMonitoring switches on Sentry error capture (when a DSN is configured)
// and Prometheus metrics. It must be called before the router is built.
func InitMonitoring(conf MonitoringConfig) {
	if !conf.Enabled {
		return
	}

	if conf.SentryDSN != "" {
		logrus.Infof("initialising Raven monitoring")
		err := raven.SetDSN(conf.SentryDSN)

		if err != nil {
			logrus.WithError(err).Error("could not initialise raven monitoring")
		} else {
			raven.SetRelease(BuildVersion)

			panicHandler = raven.Recoverer
			panicCapture = func(fn func()) {
				raven.CapturePanic(fn, nil)
			}
			captureError = func(err error) {
				raven.CaptureError(err, nil)
			}
		}
	}

	logrus.Infof("initialising Prometheus Monitoring")
	prometheus.MustRegister(HTTPInFlightGauge, HTTPCounter, HTTPDuration, HTTPResponseSize, httpInFlightRequests, httpRequestCounter, histVec, upstreamRequestCounter)
	prometheusMonitoringHandler = promhttp.Handler
	prometheusMonitoringWrapper = func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerInFlight(HTTPInFlightGauge,
			promhttp.InstrumentHandlerDuration(HTTPDuration.MustCurryWith(prometheus.Labels{"handler": "dashboard"}),
				promhttp.InstrumentHandlerCounter(HTTPCounter,
					promhttp.InstrumentHandlerResponseSize(HTTPResponseSize, next),
				),
			),
		)
	}
}

var httpInFlightRequests = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "upstream_in_flight_requests",
	Help: "A gauge of in-flight requests to the upstream API.",
})

var httpRequestCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upstream_api_requests_total",
		Help: "A counter for requests to the upstream API by status code.",
	},
	[]string{"code", "method"},
)

// histVec has no labels, making it a zero-dimensional ObserverVec.
var histVec = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "A histogram of upstream API request latencies.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{},
)

// RoundTripper instruments requests made to the upstream API.
func RoundTripper(t http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(httpInFlightRequests,
		promhttp.InstrumentRoundTripperCounter(httpRequestCounter,
			promhttp.InstrumentRoundTripperDuration(histVec, t),
		),
	)
}

var HTTPInFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "in_flight_requests",
	Help: "A gauge of requests currently being served by the wrapped handler.",
})

var HTTPCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "web_requests_total",
		Help: "A counter for requests to the wrapped handler.",
	},
	[]string{"code", "method"},
)

// HTTPDuration is partitioned by the HTTP method and handler. It uses custom
// buckets based on the expected request duration.
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "A histogram of latencies for requests.",
		Buckets: []float64{.25, .5, 1, 2.5, 5, 10},
	},
	[]string{"handler", "method"},
)

// HTTPResponseSize has no labels, making it a zero-dimensional
// ObserverVec.
var HTTPResponseSize = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "response_size_bytes",
		Help:    "A histogram of response sizes for requests.",
		Buckets: []float64{200, 500, 900, 1500},
	},
	[]string{},
)

package livetiming

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-http-utils/etag"
	"github.com/sirupsen/logrus"
)

var (
	logMultiWriter io.Writer

	Debug = os.Getenv("DEBUG") == "true"
)

func InitLogging(conf LogConfig) {
	if !Debug && conf.Level != "debug" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if conf.File == "" {
		logrus.SetOutput(os.Stdout)
		return
	}

	logFile, err := os.OpenFile(conf.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)

	if err == nil {
		logMultiWriter = io.MultiWriter(os.Stdout, logFile)
	} else {
		logrus.WithError(err).Errorf("Could not create live timing log file")
		logMultiWriter = os.Stdout
	}

	logrus.SetOutput(logMultiWriter)
}

func Router(
	fs http.FileSystem,
	apiHandler *APIHandler,
	pagesHandler *PagesHandler,
	healthCheck *HealthCheck,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(panicHandler)

	r.Handle("/metrics", prometheusMonitoringHandler())
	r.Method(http.MethodGet, "/healthcheck", healthCheck)

	if Debug {
		r.Mount("/debug/", middleware.Profiler())
	}

	r.Get("/changelog", pagesHandler.changelogPage)

	r.Group(func(r chi.Router) {
		r.Use(apiHandler.RosterMiddleware)

		pagesHandler.routes(r)
		apiHandler.routes(r)
	})

	FileServer(r, "/static", fs)
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/img/favicon.png", http.StatusMovedPermanently)
	})

	return prometheusMonitoringWrapper(r)
}

func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	fs := etag.Handler(http.StripPrefix(path, http.FileServer(root)), false)

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, fs.ServeHTTP)
}

package livetiming

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	errorInternal           = "Internal Server Error"
	errorDriversInit        = "Failed to initialize drivers"
	errorInvalidDriverParam = "invalid driver number"
)

// APIHandler proxies the upstream resources as JSON. Positions, intervals,
// sessions and weather are folded into the registries on the way through.
type APIHandler struct {
	client    *OpenF1Client
	drivers   *DriverRegistry
	locations *LocationRegistry
	hub       *LiveHub

	// broadcaster receives driver updates, the hub unless replaced
	broadcaster Broadcaster

	singleDriverSamples int
	now                 func() time.Time

	rosterGroup singleflight.Group
}

func NewAPIHandler(client *OpenF1Client, drivers *DriverRegistry, locations *LocationRegistry, hub *LiveHub, singleDriverSamples int) *APIHandler {
	if singleDriverSamples <= 0 {
		singleDriverSamples = DefaultSingleDriverSamples
	}

	return &APIHandler{
		client:              client,
		drivers:             drivers,
		locations:           locations,
		hub:                 hub,
		broadcaster:         hub,
		singleDriverSamples: singleDriverSamples,
		now:                 time.Now,
	}
}

func (ah *APIHandler) routes(r chi.Router) {
	r.Get("/api/car_data", ah.passThrough(resourceCarData))
	r.Get("/api/drivers", ah.driverList)
	r.Get("/api/intervals", ah.intervals)
	r.Get("/api/laps", ah.passThrough(resourceLaps))
	r.Get("/api/pit", ah.passThrough(resourcePit))
	r.Get("/api/positions", ah.positions)
	r.Get("/api/race_control", ah.passThrough(resourceRaceControl))
	r.Get("/api/sessions", ah.sessions)
	r.Get("/api/stints", ah.passThrough(resourceStints))
	r.Get("/api/teamradio", ah.passThrough(resourceTeamRadio))
	r.Get("/api/weather", ah.weather)
	r.Get("/api/singledriver", ah.singleDriver)
	r.Get("/api/schedule", ah.schedule)
	r.Get("/api/location", ah.location)
	r.Get("/api/live", ah.live)
}

// RosterMiddleware makes sure the driver roster is loaded before the request
// is served. Concurrent first requests share a single upstream call.
func (ah *APIHandler) RosterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ah.loadRoster(r.Context()); err != nil {
			logrus.WithError(err).WithField("resource", resourceDrivers).Error("Could not load driver roster")
			writeError(w, http.StatusInternalServerError, errorDriversInit)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loadRoster fetches the roster once for every request waiting on it. The
// shared fetch is not bound to any one request, so a caller that goes away
// only gives up its own wait.
func (ah *APIHandler) loadRoster(ctx context.Context) error {
	if ah.drivers.Len() > 0 {
		return nil
	}

	flight := ah.rosterGroup.DoChan(resourceDrivers, func() (interface{}, error) {
		var upstreamDrivers []upstreamDriver

		if err := ah.client.FetchSession(context.Background(), resourceDrivers, nil, &upstreamDrivers); err != nil {
			return nil, err
		}

		drivers := make([]*Driver, 0, len(upstreamDrivers))

		for _, driver := range upstreamDrivers {
			drivers = append(drivers, driver.toDriver())
		}

		if ah.drivers.LoadIfEmpty(drivers) {
			logrus.Infof("Loaded %d drivers for session: %s", ah.drivers.Len(), ah.client.SessionKey())
		}

		return nil, nil
	})

	select {
	case result := <-flight:
		return result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchRaw fetches resource for the configured session, returning the body
// untouched. If fold is non-nil the body is also decoded into it.
func (ah *APIHandler) fetchRaw(ctx context.Context, resource string, params url.Values, fold interface{}) (json.RawMessage, error) {
	var raw json.RawMessage

	if err := ah.client.FetchSession(ctx, resource, params, &raw); err != nil {
		return nil, err
	}

	if fold != nil {
		if err := json.Unmarshal(raw, fold); err != nil {
			return nil, errors.Wrapf(err, "could not decode %s", resource)
		}
	}

	return raw, nil
}

func (ah *APIHandler) passThrough(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := ah.fetchRaw(r.Context(), resource, nil, nil)

		if err != nil {
			upstreamError(w, resource, err)
			return
		}

		writeRaw(w, raw)
	}
}

func (ah *APIHandler) driverList(w http.ResponseWriter, r *http.Request) {
	if err := ah.loadRoster(r.Context()); err != nil {
		upstreamError(w, resourceDrivers, err)
		return
	}

	writeJSON(w, http.StatusOK, ah.drivers.List())
}

func (ah *APIHandler) intervals(w http.ResponseWriter, r *http.Request) {
	var intervals []upstreamInterval

	raw, err := ah.fetchRaw(r.Context(), resourceIntervals, nil, &intervals)

	if err != nil {
		upstreamError(w, resourceIntervals, err)
		return
	}

	for _, interval := range intervals {
		if !interval.GapToLeader.Valid {
			continue
		}

		ah.drivers.UpdateGapToLeader(interval.DriverNumber, interval.GapToLeader.Value)
	}

	ah.broadcastDrivers()

	writeRaw(w, raw)
}

func (ah *APIHandler) positions(w http.ResponseWriter, r *http.Request) {
	var positions []upstreamPosition

	if _, err := ah.fetchRaw(r.Context(), resourcePosition, nil, &positions); err != nil {
		upstreamError(w, resourcePosition, err)
		return
	}

	// samples are in time order, so the latest position for each driver wins
	for _, position := range positions {
		ah.drivers.UpdatePosition(position.DriverNumber, position.Position)
	}

	ah.broadcastDrivers()

	writeJSON(w, http.StatusOK, ah.drivers.List())
}

func (ah *APIHandler) sessions(w http.ResponseWriter, r *http.Request) {
	var sessions []upstreamSession

	raw, err := ah.fetchRaw(r.Context(), resourceSessions, nil, &sessions)

	if err != nil {
		upstreamError(w, resourceSessions, err)
		return
	}

	// a session without a key cannot be told apart from the stored one
	if len(sessions) > 0 && sessions[len(sessions)-1].SessionKey != nil {
		ah.locations.Set(sessions[len(sessions)-1].toSessionInfo())
	}

	writeRaw(w, raw)
}

func (ah *APIHandler) weather(w http.ResponseWriter, r *http.Request) {
	var weather []upstreamWeather

	raw, err := ah.fetchRaw(r.Context(), resourceWeather, nil, &weather)

	if err != nil {
		upstreamError(w, resourceWeather, err)
		return
	}

	samples := make([]WeatherSample, 0, len(weather))

	for _, sample := range weather {
		samples = append(samples, sample.toSample())
	}

	ah.locations.AppendWeather(samples...)

	writeRaw(w, raw)
}

func (ah *APIHandler) singleDriver(w http.ResponseWriter, r *http.Request) {
	driverNumber, err := strconv.Atoi(r.URL.Query().Get("driverNumber"))

	if err != nil || driverNumber <= 0 {
		writeError(w, http.StatusBadRequest, errorInvalidDriverParam)
		return
	}

	var carData []upstreamCarData

	if err := ah.client.FetchSession(r.Context(), resourceCarData, driverNumberParam(driverNumber), &carData); err != nil {
		upstreamError(w, resourceCarData, err)
		return
	}

	if len(carData) > ah.singleDriverSamples {
		carData = carData[len(carData)-ah.singleDriverSamples:]
	}

	telemetry := make([]Telemetry, 0, len(carData))

	for _, sample := range carData {
		telemetry = append(telemetry, sample.toTelemetry())
	}

	writeJSON(w, http.StatusOK, telemetry)
}

func (ah *APIHandler) schedule(w http.ResponseWriter, r *http.Request) {
	events, err := ah.client.Schedule(r.Context(), ah.now().Year())

	if err != nil {
		upstreamError(w, resourceSessions, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (ah *APIHandler) location(w http.ResponseWriter, r *http.Request) {
	location, ok := ah.locations.Get()

	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, location)
}

func (ah *APIHandler) live(w http.ResponseWriter, r *http.Request) {
	ah.hub.ServeWebsocket(w, r, liveMessage{EventType: LiveEventDrivers, Message: ah.drivers.List()})
}

func (ah *APIHandler) broadcastDrivers() {
	if err := ah.broadcaster.Send(LiveEventDrivers, ah.drivers.List()); err != nil {
		logrus.WithError(err).Error("Unable to broadcast drivers")
	}
}

func upstreamError(w http.ResponseWriter, resource string, err error) {
	logrus.WithError(err).WithField("resource", resource).Error("Upstream request failed")
	writeError(w, http.StatusInternalServerError, errorInternal)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Could not encode response")
	}
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

package livetiming

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

var LaunchTime = time.Now()

type HealthCheck struct {
	drivers   *DriverRegistry
	locations *LocationRegistry
	client    *OpenF1Client
}

func NewHealthCheck(drivers *DriverRegistry, locations *LocationRegistry, client *OpenF1Client) *HealthCheck {
	return &HealthCheck{
		drivers:   drivers,
		locations: locations,
		client:    client,
	}
}

type HealthCheckResponse struct {
	OK      bool
	Version string

	OS            string
	NumCPU        int
	NumGoroutines int
	Uptime        string
	GoVersion     string

	SessionKey      string
	NumDrivers      int
	SessionID       int
	SessionName     string
	SessionLocation string
}

func (h *HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		OK:            true,
		OS:            runtime.GOOS + "/" + runtime.GOARCH,
		Version:       BuildVersion,
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		Uptime:        time.Since(LaunchTime).String(),
		GoVersion:     runtime.Version(),

		SessionKey: h.client.SessionKey(),
		NumDrivers: h.drivers.Len(),
	}

	if location, ok := h.locations.Get(); ok {
		response.SessionID = location.SessionID
		response.SessionName = location.SessionName
		response.SessionLocation = location.Name
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

package livetiming

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultUpstreamBaseURL = "https://api.openf1.org/v1"
	DefaultSessionKey      = "latest"
)

// upstream resource names
const (
	resourceCarData     = "car_data"
	resourceDrivers     = "drivers"
	resourceIntervals   = "intervals"
	resourceLaps        = "laps"
	resourcePit         = "pit"
	resourcePosition    = "position"
	resourceRaceControl = "race_control"
	resourceSessions    = "sessions"
	resourceStints      = "stints"
	resourceTeamRadio   = "team_radio"
	resourceWeather     = "weather"
)

var ErrUpstreamStatus = errors.New("livetiming: unexpected upstream status")

var upstreamRequestCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "A counter for upstream API requests, partitioned by resource and outcome.",
	},
	[]string{"resource", "outcome"},
)

// OpenF1Client reads resources from the upstream telemetry API. Every call is
// a single GET with no retry; a failure is total for that call.
type OpenF1Client struct {
	baseURL    *url.URL
	sessionKey string
	httpClient *http.Client
}

func NewOpenF1Client(baseURL, sessionKey string, httpClient *http.Client) (*OpenF1Client, error) {
	if baseURL == "" {
		baseURL = DefaultUpstreamBaseURL
	}

	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	u, err := url.Parse(baseURL)

	if err != nil {
		return nil, errors.Wrapf(err, "invalid upstream base url: %s", baseURL)
	}

	return &OpenF1Client{
		baseURL:    u,
		sessionKey: sessionKey,
		httpClient: httpClient,
	}, nil
}

func (c *OpenF1Client) SessionKey() string {
	return c.sessionKey
}

// FetchSession fetches resource scoped to the configured session and decodes
// the JSON response into v.
func (c *OpenF1Client) FetchSession(ctx context.Context, resource string, params url.Values, v interface{}) error {
	scoped := url.Values{}

	for key, values := range params {
		scoped[key] = values
	}

	scoped.Set("session_key", c.sessionKey)

	return c.Fetch(ctx, resource, scoped, v)
}

// Fetch fetches resource with params as given and decodes the JSON response into v.
func (c *OpenF1Client) Fetch(ctx context.Context, resource string, params url.Values, v interface{}) error {
	err := c.fetch(ctx, resource, params, v)

	outcome := "ok"

	if err != nil {
		outcome = "error"
	}

	upstreamRequestCounter.WithLabelValues(resource, outcome).Inc()

	return err
}

func (c *OpenF1Client) fetch(ctx context.Context, resource string, params url.Values, v interface{}) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, resource)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	if err != nil {
		return errors.Wrapf(err, "could not build request for %s", resource)
	}

	logrus.Debugf("fetching upstream resource: %s", u.String())

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return errors.Wrapf(err, "could not fetch %s", resource)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrUpstreamStatus, "%s returned %s", resource, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrapf(err, "could not decode %s", resource)
	}

	return nil
}

// flexString holds upstream values that are sometimes numbers and sometimes
// strings, e.g. a gap to leader of 1.234 or "+1 LAP".
type flexString struct {
	Value string
	Valid bool
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))

	if raw == "null" {
		*f = flexString{}
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string

		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*f = flexString{Value: s, Valid: true}
		return nil
	}

	var n json.Number

	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("livetiming: cannot read %s as string or number", raw)
	}

	*f = flexString{Value: n.String(), Valid: true}

	return nil
}

type upstreamDriver struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	CountryCode  string `json:"country_code"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
	HeadshotURL  string `json:"headshot_url"`
}

func (d upstreamDriver) toDriver() *Driver {
	return NewDriver(d.DriverNumber, d.FullName, d.CountryCode, d.TeamName, d.TeamColour, d.HeadshotURL)
}

type upstreamPosition struct {
	Date         string `json:"date"`
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
}

type upstreamInterval struct {
	Date         string     `json:"date"`
	DriverNumber int        `json:"driver_number"`
	GapToLeader  flexString `json:"gap_to_leader"`
	Interval     flexString `json:"interval"`
}

type upstreamSession struct {
	SessionKey       *int   `json:"session_key"`
	SessionName      string `json:"session_name"`
	SessionType      string `json:"session_type"`
	Location         string `json:"location"`
	CircuitShortName string `json:"circuit_short_name"`
	CountryName      string `json:"country_name"`
	DateStart        string `json:"date_start"`
	DateEnd          string `json:"date_end"`
	Year             int    `json:"year"`
}

func (s upstreamSession) toSessionInfo() SessionInfo {
	name := s.Location

	if name == "" {
		name = s.CircuitShortName
	}

	info := SessionInfo{
		SessionName: s.SessionName,
		SessionType: s.SessionType,
		Name:        name,
		Country:     s.CountryName,
		Start:       s.DateStart,
		End:         s.DateEnd,
	}

	if s.SessionKey != nil {
		info.SessionID = *s.SessionKey
	}

	return info
}

type upstreamWeather struct {
	Date             string  `json:"date"`
	AirTemperature   float64 `json:"air_temperature"`
	TrackTemperature float64 `json:"track_temperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	Rainfall         float64 `json:"rainfall"`
	WindDirection    float64 `json:"wind_direction"`
	WindSpeed        float64 `json:"wind_speed"`
}

func (w upstreamWeather) toSample() WeatherSample {
	return WeatherSample{
		Date:             w.Date,
		AirTemperature:   w.AirTemperature,
		TrackTemperature: w.TrackTemperature,
		Humidity:         w.Humidity,
		Pressure:         w.Pressure,
		Rainfall:         w.Rainfall,
		WindDirection:    w.WindDirection,
		WindSpeed:        w.WindSpeed,
	}
}

type upstreamCarData struct {
	Date         string `json:"date"`
	DriverNumber int    `json:"driver_number"`
	Gear         int    `json:"n_gear"`
	Speed        int    `json:"speed"`
	Throttle     int    `json:"throttle"`
	Brake        int    `json:"brake"`
	DRS          int    `json:"drs"`
	RPM          int    `json:"rpm"`
}

// Telemetry is a single car data sample as served to the single driver view.
type Telemetry struct {
	Date     string `json:"date"`
	Number   int    `json:"number"`
	Gear     int    `json:"gear"`
	Speed    int    `json:"speed"`
	Throttle int    `json:"throttle"`
	Brake    int    `json:"brake"`
	DRS      int    `json:"drs"`
	RPM      int    `json:"rpm"`
}

func (c upstreamCarData) toTelemetry() Telemetry {
	return Telemetry{
		Date:     c.Date,
		Number:   c.DriverNumber,
		Gear:     c.Gear,
		Speed:    c.Speed,
		Throttle: c.Throttle,
		Brake:    c.Brake,
		DRS:      c.DRS,
		RPM:      c.RPM,
	}
}

func driverNumberParam(number int) url.Values {
	return url.Values{"driver_number": []string{strconv.Itoa(number)}}
}

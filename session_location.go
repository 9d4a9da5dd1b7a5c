package livetiming

import (
	"sync"
	"time"
)

// SessionInfo is the subset of an upstream session that identifies where and
// when it runs. Start and End are upstream timestamps.
type SessionInfo struct {
	SessionID   int
	SessionName string
	SessionType string
	Name        string
	Country     string
	Start       string
	End         string
}

type WeatherSample struct {
	Date             string  `json:"date"`
	AirTemperature   float64 `json:"airTemperature"`
	TrackTemperature float64 `json:"trackTemperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	Rainfall         float64 `json:"rainfall"`
	WindDirection    float64 `json:"windDirection"`
	WindSpeed        float64 `json:"windSpeed"`
}

// SessionLocation describes the current session. Date, Start and End hold
// display strings, not timestamps.
type SessionLocation struct {
	SessionID   int             `json:"sessionId"`
	SessionName string          `json:"sessionName"`
	SessionType string          `json:"sessionType"`
	Name        string          `json:"name"`
	Country     string          `json:"country"`
	Date        string          `json:"date"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Weather     []WeatherSample `json:"weather"`

	startsAt time.Time
}

// StartsAt is the parsed start of the session, zero if the upstream start was missing.
func (sl SessionLocation) StartsAt() time.Time {
	return sl.startsAt
}

// LatestWeather returns the most recent weather sample, if any.
func (sl SessionLocation) LatestWeather() (WeatherSample, bool) {
	if len(sl.Weather) == 0 {
		return WeatherSample{}, false
	}

	return sl.Weather[len(sl.Weather)-1], true
}

type newSessionFunc func(location SessionLocation)

// LocationRegistry holds at most one SessionLocation. The session id is the
// change key: repeated snapshots of the running session leave it untouched,
// and a new session id replaces every field at once.
type LocationRegistry struct {
	location *SessionLocation
	tz       *time.Location

	newSessionCallbacks []newSessionFunc

	mutex sync.RWMutex
}

func NewLocationRegistry(loc *time.Location) *LocationRegistry {
	return &LocationRegistry{
		tz: displayLocation(loc),
	}
}

// OnNewSession registers fn to be called (outside of the registry lock) every
// time Set replaces the current session.
func (lr *LocationRegistry) OnNewSession(fn func(location SessionLocation)) {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()

	lr.newSessionCallbacks = append(lr.newSessionCallbacks, fn)
}

func (lr *LocationRegistry) Get() (SessionLocation, bool) {
	lr.mutex.RLock()
	defer lr.mutex.RUnlock()

	if lr.location == nil {
		return SessionLocation{}, false
	}

	return lr.location.copy(), true
}

// Set stores info as the current session if there is none yet, or if its
// session id differs from the stored one. It reports whether the session was replaced.
func (lr *LocationRegistry) Set(info SessionInfo) bool {
	lr.mutex.Lock()

	if lr.location != nil && lr.location.SessionID == info.SessionID {
		lr.mutex.Unlock()
		return false
	}

	startsAt, _ := parseUpstreamTime(info.Start)

	lr.location = &SessionLocation{
		SessionID:   info.SessionID,
		SessionName: info.SessionName,
		SessionType: info.SessionType,
		Name:        info.Name,
		Country:     info.Country,
		Date:        FormatDate(info.Start, lr.tz),
		Start:       FormatTime(info.Start, lr.tz),
		End:         FormatTime(info.End, lr.tz),
		Weather:     []WeatherSample{},
		startsAt:    startsAt,
	}

	location := lr.location.copy()
	callbacks := lr.newSessionCallbacks

	lr.mutex.Unlock()

	for _, fn := range callbacks {
		fn(location)
	}

	return true
}

// AppendWeather adds samples that are newer than the last stored sample.
// Samples are ignored while no session is known.
func (lr *LocationRegistry) AppendWeather(samples ...WeatherSample) int {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()

	if lr.location == nil {
		return 0
	}

	var last time.Time

	if latest, ok := lr.location.LatestWeather(); ok {
		last, _ = parseUpstreamTime(latest.Date)
	}

	added := 0

	for _, sample := range samples {
		date, ok := parseUpstreamTime(sample.Date)

		if !ok || !date.After(last) {
			continue
		}

		lr.location.Weather = append(lr.location.Weather, sample)
		last = date
		added++
	}

	return added
}

func (sl *SessionLocation) copy() SessionLocation {
	out := *sl
	out.Weather = make([]WeatherSample, len(sl.Weather))
	copy(out.Weather, sl.Weather)

	return out
}

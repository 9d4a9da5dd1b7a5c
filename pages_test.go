package livetiming

import (
	"html/template"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestRouter(t *testing.T, upstream *fakeUpstream) (*APIHandler, http.Handler) {
	ah, _ := newTestAPIHandler(t, upstream)

	renderer, err := NewRenderer(NewFilesystemTemplateLoader("views"), ah.locations, time.UTC, false)

	if err != nil {
		t.Fatal(err)
	}

	ph := NewPagesHandler(NewBaseHandler(renderer), ah.client, ah.drivers, ah.locations, template.HTML("<h2>v1.0.0</h2>"))
	ph.now = ah.now

	return ah, Router(http.Dir("static"), ah, ph, NewHealthCheck(ah.drivers, ah.locations, ah.client))
}

func TestPagesHandler(t *testing.T) {
	upstream := newFakeUpstream(map[string]string{
		"drivers": testDriversBody,
		"sessions": `[
			{"session_key":1,"session_name":"Practice 3","session_type":"Practice","location":"Sakhir","date_start":"2024-03-01T12:30:00+00:00","date_end":"2024-03-01T13:30:00+00:00"},
			{"session_key":2,"session_name":"Qualifying","session_type":"Qualifying","location":"Sakhir","date_start":"2024-03-01T16:00:00+00:00","date_end":"2024-03-01T17:00:00+00:00"},
			{"session_key":3,"session_name":"Race","session_type":"Race","location":"Jeddah","date_start":"2024-03-09T17:00:00+00:00","date_end":"2024-03-09T19:00:00+00:00"}
		]`,
	})
	defer upstream.Close()

	ah, router := newTestRouter(t, upstream)

	pages := map[string]string{
		"/":             "Countdown to next event:",
		"/drivers":      "Lewis HAMILTON",
		"/leaderboard":  "Red Bull Racing",
		"/racecontrol":  "racecontrol.js",
		"/teamradio":    "teamradio.js",
		"/trackinfo":    "No session loaded yet",
		"/training":     "training.js",
		"/singledriver": `<option value="44">44 - Lewis HAMILTON</option>`,
		"/changelog":    "<h2>v1.0.0</h2>",
	}

	for page, expected := range pages {
		rec := doGet(router, page)

		if rec.Code != http.StatusOK {
			t.Logf("%s: expected status 200, got %d: %s", page, rec.Code, rec.Body.String())
			t.Fail()
			continue
		}

		if !strings.Contains(rec.Body.String(), expected) {
			t.Logf("%s: expected page to contain %q", page, expected)
			t.Fail()
		}
	}

	t.Run("Index only lists events at the next location", func(t *testing.T) {
		body := doGet(router, "/").Body.String()

		if !strings.Contains(body, "Practice 3 - Sakhir") || !strings.Contains(body, "Qualifying - Sakhir") || strings.Contains(body, "Jeddah") {
			t.Logf("Unexpected upcoming events: %s", body)
			t.Fail()
		}
	})

	t.Run("Track info shows the session", func(t *testing.T) {
		ah.locations.Set(SessionInfo{SessionID: 3, SessionName: "Race", SessionType: "Race", Name: "Jeddah", Country: "Saudi Arabia", Start: "2024-03-09T17:00:00+00:00", End: "2024-03-09T19:00:00+00:00"})
		ah.locations.AppendWeather(WeatherSample{Date: "2024-03-09T16:55:00+00:00", AirTemperature: 25.5, Rainfall: 0})

		body := doGet(router, "/trackinfo").Body.String()

		if !strings.Contains(body, "Jeddah, Saudi Arabia") || !strings.Contains(body, "25.5") || !strings.Contains(body, "09/03/2024") {
			t.Logf("Track info is missing session details: %s", body)
			t.Fail()
		}
	})

	t.Run("Pages need the roster", func(t *testing.T) {
		failing := newFakeUpstream(map[string]string{})
		defer failing.Close()

		_, router := newTestRouter(t, failing)

		if rec := doGet(router, "/leaderboard"); rec.Code != http.StatusInternalServerError {
			t.Logf("Expected status 500 without a roster, got %d", rec.Code)
			t.Fail()
		}
	})
}

func TestRouter(t *testing.T) {
	upstream := newFakeUpstream(map[string]string{
		"drivers": testDriversBody,
	})
	defer upstream.Close()

	_, router := newTestRouter(t, upstream)

	t.Run("Health check", func(t *testing.T) {
		rec := doGet(router, "/healthcheck")

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"SessionKey":"latest"`) {
			t.Logf("Unexpected health check: %d %s", rec.Code, rec.Body.String())
			t.Fail()
		}

		if upstream.Calls("drivers") != 0 {
			t.Logf("Health check should not load the roster")
			t.Fail()
		}
	})

	t.Run("Static files carry an etag", func(t *testing.T) {
		rec := doGet(router, "/static/css/live-timing.css")

		if rec.Code != http.StatusOK || rec.Header().Get("ETag") == "" {
			t.Logf("Unexpected static response: %d, etag %q", rec.Code, rec.Header().Get("ETag"))
			t.Fail()
		}
	})

	t.Run("Favicon", func(t *testing.T) {
		if rec := doGet(router, "/favicon.ico"); rec.Code != http.StatusMovedPermanently {
			t.Logf("Expected favicon redirect, got %d", rec.Code)
			t.Fail()
		}
	})
}

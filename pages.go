package livetiming

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/sirupsen/logrus"
)

type BaseHandler struct {
	viewRenderer *Renderer
}

func NewBaseHandler(viewRenderer *Renderer) *BaseHandler {
	return &BaseHandler{
		viewRenderer: viewRenderer,
	}
}

// PagesHandler renders the dashboard pages. Each page is rendered with the
// state already held in the registries; the browser scripts poll the API
// afterwards.
type PagesHandler struct {
	*BaseHandler

	client    *OpenF1Client
	drivers   *DriverRegistry
	locations *LocationRegistry
	changelog template.HTML

	now func() time.Time
}

func NewPagesHandler(baseHandler *BaseHandler, client *OpenF1Client, drivers *DriverRegistry, locations *LocationRegistry, changelog template.HTML) *PagesHandler {
	return &PagesHandler{
		BaseHandler: baseHandler,
		client:      client,
		drivers:     drivers,
		locations:   locations,
		changelog:   changelog,
		now:         time.Now,
	}
}

func (ph *PagesHandler) routes(r chi.Router) {
	r.Get("/", ph.index)
	r.Get("/drivers", ph.driverPage("drivers.html", "Drivers"))
	r.Get("/leaderboard", ph.driverPage("leaderboard.html", "Leaderboard"))
	r.Get("/racecontrol", ph.simplePage("racecontrol.html", "Race Control"))
	r.Get("/teamradio", ph.driverPage("teamradio.html", "Team Radio"))
	r.Get("/trackinfo", ph.trackInfo)
	r.Get("/training", ph.driverPage("training.html", "Training"))
	r.Get("/singledriver", ph.driverPage("singledriver.html", "Single Driver"))
}

type indexTemplateVars struct {
	BaseTemplateVars

	NextEvent *ScheduleEvent
	Upcoming  []ScheduleEvent
}

func (ph *PagesHandler) index(w http.ResponseWriter, r *http.Request) {
	now := ph.now()

	events, err := ph.client.Schedule(r.Context(), now.Year())

	if err != nil {
		// the countdown script fetches the schedule itself, so render without it
		logrus.WithError(err).WithField("resource", resourceSessions).Warn("Could not load schedule for index page")
	}

	upcoming := UpcomingEvents(events, now, MaxUpcomingEvents)

	vars := &indexTemplateVars{
		BaseTemplateVars: BaseTemplateVars{
			Title:      "Next Session",
			ActivePage: "index.html",
		},
		Upcoming: upcoming,
	}

	if len(upcoming) > 0 {
		vars.NextEvent = &upcoming[0]
	}

	ph.viewRenderer.MustLoadTemplate(w, r, "index.html", vars)
}

type driversTemplateVars struct {
	BaseTemplateVars

	Drivers []Driver
}

func (ph *PagesHandler) driverPage(view, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ph.viewRenderer.MustLoadTemplate(w, r, view, &driversTemplateVars{
			BaseTemplateVars: BaseTemplateVars{
				Title:      title,
				ActivePage: view,
			},
			Drivers: ph.drivers.List(),
		})
	}
}

func (ph *PagesHandler) simplePage(view, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ph.viewRenderer.MustLoadTemplate(w, r, view, &BaseTemplateVars{
			Title:      title,
			ActivePage: view,
		})
	}
}

type trackInfoTemplateVars struct {
	BaseTemplateVars

	Weather    *WeatherSample
	HasStarted bool
}

func (ph *PagesHandler) trackInfo(w http.ResponseWriter, r *http.Request) {
	vars := &trackInfoTemplateVars{
		BaseTemplateVars: BaseTemplateVars{
			Title:      "Track Info",
			ActivePage: "trackinfo.html",
		},
	}

	if location, ok := ph.locations.Get(); ok {
		if weather, ok := location.LatestWeather(); ok {
			vars.Weather = &weather
		}

		vars.HasStarted = !location.StartsAt().After(ph.now())
	}

	ph.viewRenderer.MustLoadTemplate(w, r, "trackinfo.html", vars)
}

type changelogTemplateVars struct {
	BaseTemplateVars

	Changelog template.HTML
}

func (ph *PagesHandler) changelogPage(w http.ResponseWriter, r *http.Request) {
	ph.viewRenderer.MustLoadTemplate(w, r, "changelog.html", &changelogTemplateVars{
		BaseTemplateVars: BaseTemplateVars{
			Title:      "Changelog",
			ActivePage: "changelog.html",
		},
		Changelog: ph.changelog,
	})
}

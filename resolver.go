package livetiming

import (
	"html/template"
	"net/http"
	"time"

	"github.com/trackside/live-timing/pkg/when"
)

type Resolver struct {
	config         *Configuration
	templateLoader TemplateLoader
	changelog      template.HTML
	displayZone    *time.Location

	client             *OpenF1Client
	driverRegistry     *DriverRegistry
	locationRegistry   *LocationRegistry
	liveHub            *LiveHub
	sessionStartNotify *SessionStartNotifier
	viewRenderer       *Renderer

	// handlers
	baseHandler  *BaseHandler
	apiHandler   *APIHandler
	pagesHandler *PagesHandler
	healthCheck  *HealthCheck
}

func NewResolver(config *Configuration, templateLoader TemplateLoader, changelog template.HTML) (*Resolver, error) {
	displayZone, err := config.Display.Location()

	if err != nil {
		return nil, err
	}

	r := &Resolver{
		config:         config,
		templateLoader: templateLoader,
		changelog:      changelog,
		displayZone:    displayZone,
	}

	if err := r.initClient(); err != nil {
		return nil, err
	}

	if err := r.initViewRenderer(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Resolver) initClient() error {
	if r.client != nil {
		return nil
	}

	client, err := NewOpenF1Client(r.config.Upstream.BaseURL, r.config.Upstream.SessionKey, r.config.Upstream.HTTPClient(r.config.Monitoring))

	if err != nil {
		return err
	}

	r.client = client

	return nil
}

func (r *Resolver) initViewRenderer() error {
	if r.viewRenderer != nil {
		return nil
	}

	viewRenderer, err := NewRenderer(r.templateLoader, r.resolveLocationRegistry(), r.displayZone, r.config.Views.Reload)

	if err != nil {
		return err
	}

	r.viewRenderer = viewRenderer

	return nil
}

func (r *Resolver) resolveDriverRegistry() *DriverRegistry {
	if r.driverRegistry != nil {
		return r.driverRegistry
	}

	r.driverRegistry = NewDriverRegistry()

	return r.driverRegistry
}

func (r *Resolver) resolveLocationRegistry() *LocationRegistry {
	if r.locationRegistry != nil {
		return r.locationRegistry
	}

	r.locationRegistry = NewLocationRegistry(r.displayZone)
	r.locationRegistry.OnNewSession(r.resolveSessionStartNotifier().OnNewSession)

	return r.locationRegistry
}

func (r *Resolver) resolveLiveHub() *LiveHub {
	if r.liveHub != nil {
		return r.liveHub
	}

	r.liveHub = NewLiveHub()
	go panicCapture(r.liveHub.Run)

	return r.liveHub
}

func (r *Resolver) resolveSessionStartNotifier() *SessionStartNotifier {
	if r.sessionStartNotify != nil {
		return r.sessionStartNotify
	}

	r.sessionStartNotify = NewSessionStartNotifier(when.NewScheduler(when.DefaultResolution), r.resolveLiveHub())

	return r.sessionStartNotify
}

func (r *Resolver) resolveBaseHandler() *BaseHandler {
	if r.baseHandler != nil {
		return r.baseHandler
	}

	r.baseHandler = NewBaseHandler(r.viewRenderer)

	return r.baseHandler
}

func (r *Resolver) resolveAPIHandler() *APIHandler {
	if r.apiHandler != nil {
		return r.apiHandler
	}

	r.apiHandler = NewAPIHandler(
		r.client,
		r.resolveDriverRegistry(),
		r.resolveLocationRegistry(),
		r.resolveLiveHub(),
		r.config.Upstream.SingleDriverSamples,
	)

	return r.apiHandler
}

func (r *Resolver) resolvePagesHandler() *PagesHandler {
	if r.pagesHandler != nil {
		return r.pagesHandler
	}

	r.pagesHandler = NewPagesHandler(
		r.resolveBaseHandler(),
		r.client,
		r.resolveDriverRegistry(),
		r.resolveLocationRegistry(),
		r.changelog,
	)

	return r.pagesHandler
}

func (r *Resolver) resolveHealthCheck() *HealthCheck {
	if r.healthCheck != nil {
		return r.healthCheck
	}

	r.healthCheck = NewHealthCheck(r.resolveDriverRegistry(), r.resolveLocationRegistry(), r.client)

	return r.healthCheck
}

func (r *Resolver) ResolveRouter(fs http.FileSystem) http.Handler {
	return Router(
		fs,
		r.resolveAPIHandler(),
		r.resolvePagesHandler(),
		r.resolveHealthCheck(),
	)
}

package livetiming

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-zglob"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BuildVersion is the time the dashboard was built at
var BuildVersion string

type TemplateLoader interface {
	Init() error
	Templates(funcs template.FuncMap) (map[string]*template.Template, error)
}

func NewFilesystemTemplateLoader(dir string) TemplateLoader {
	return &filesystemTemplateLoader{
		dir: dir,
	}
}

type filesystemTemplateLoader struct {
	dir string

	pages, partials []string
}

func (fs *filesystemTemplateLoader) Init() error {
	var err error

	fs.pages, err = zglob.Glob(filepath.Join(fs.dir, "pages", "**", "*.html"))

	if err != nil {
		return err
	}

	fs.partials, err = zglob.Glob(filepath.Join(fs.dir, "partials", "**", "*.html"))

	if err != nil {
		return err
	}

	return nil
}

func (fs *filesystemTemplateLoader) Templates(funcs template.FuncMap) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	for _, page := range fs.pages {
		var templateList []string
		templateList = append(templateList, filepath.Join(fs.dir, "layout", "base.html"))
		templateList = append(templateList, fs.partials...)
		templateList = append(templateList, page)

		t, err := template.New(filepath.Base(page)).Funcs(funcs).ParseFiles(templateList...)

		if err != nil {
			return nil, err
		}

		templates[strings.TrimPrefix(filepath.ToSlash(page), filepath.ToSlash(fs.dir)+"/pages/")] = t
	}

	return templates, nil
}

// Renderer is the template engine.
type Renderer struct {
	loader    TemplateLoader
	locations *LocationRegistry
	tz        *time.Location

	templates map[string]*template.Template

	reload bool
	mutex  sync.Mutex
}

func NewRenderer(loader TemplateLoader, locations *LocationRegistry, loc *time.Location, reload bool) (*Renderer, error) {
	tr := &Renderer{
		loader:    loader,
		locations: locations,
		tz:        displayLocation(loc),

		templates: make(map[string]*template.Template),
		reload:    reload,
	}

	err := tr.init()

	if err != nil {
		return nil, err
	}

	return tr, nil
}

// init loads template files into memory.
func (tr *Renderer) init() error {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	err := tr.loader.Init()

	if err != nil {
		return err
	}

	funcs := sprig.FuncMap()
	funcs["jsonEncode"] = jsonEncode
	funcs["dateFormat"] = func(ts string) string { return FormatDate(ts, tr.tz) }
	funcs["timeFormat"] = func(ts string) string { return FormatTime(ts, tr.tz) }
	funcs["countdown"] = func(t time.Time) string { return Countdown(t, time.Now()) }
	funcs["countdownHuman"] = func(t time.Time) string { return CountdownHuman(t, time.Now()) }
	funcs["sampleAge"] = sampleAge
	funcs["title"] = title
	funcs["teamColour"] = teamColour
	funcs["asset"] = assetURL
	funcs["Version"] = func() string { return BuildVersion }

	tr.templates, err = tr.loader.Templates(funcs)

	if err != nil {
		return err
	}

	return nil
}

// title is not sprig's title: "PRACTICE 1" becomes "Practice 1". Casers are
// stateful, so one is made per call.
func title(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// sampleAge renders how long ago an upstream timestamp was, e.g. "3 minutes ago".
func sampleAge(ts string) string {
	t, ok := parseUpstreamTime(ts)

	if !ok {
		return ""
	}

	return humanize.Time(t)
}

func teamColour(colour string) template.CSS {
	colour = strings.TrimPrefix(strings.TrimSpace(colour), "#")

	if colour == "" {
		return template.CSS("#777777")
	}

	return template.CSS("#" + colour)
}

func assetURL(location string) string {
	if BuildVersion == "" {
		return location
	}

	return location + "?cb=" + BuildVersion
}

func jsonEncode(v interface{}) template.JS {
	buf := new(bytes.Buffer)

	_ = json.NewEncoder(buf).Encode(v)

	return template.JS(buf.String())
}

type TemplateVars interface {
	Get() *BaseTemplateVars
}

type BaseTemplateVars struct {
	Title      string
	ActivePage string

	Location    *SessionLocation
	SessionKey  string
	Request     *http.Request
	Debug       bool
	BuildTime   string
	GeneratedAt time.Time
}

func (b *BaseTemplateVars) Get() *BaseTemplateVars {
	return b
}

func (tr *Renderer) addData(r *http.Request, vars TemplateVars) {
	data := vars.Get()

	if location, ok := tr.locations.Get(); ok {
		data.Location = &location
	}

	data.Request = r
	data.Debug = Debug
	data.BuildTime = BuildVersion
	data.GeneratedAt = time.Now().In(tr.tz)
}

// LoadTemplate reads a template from templates and renders it with data to the given io.Writer
func (tr *Renderer) LoadTemplate(w http.ResponseWriter, r *http.Request, view string, vars TemplateVars) error {
	if tr.reload {
		// reload templates on every request if enabled, so
		// that we don't have to constantly restart the website
		err := tr.init()

		if err != nil {
			return err
		}
	}

	tr.mutex.Lock()
	t, ok := tr.templates[filepath.ToSlash(view)]
	tr.mutex.Unlock()

	if !ok {
		return fmt.Errorf("unable to find template: %s", filepath.ToSlash(view))
	}

	if vars == nil {
		vars = &BaseTemplateVars{}
	}

	tr.addData(r, vars)

	return t.ExecuteTemplate(w, "base", vars)
}

// MustLoadTemplate asserts that a LoadTemplate call must succeed or be dealt with via the http.ResponseWriter
func (tr *Renderer) MustLoadTemplate(w http.ResponseWriter, r *http.Request, view string, vars TemplateVars) {
	err := tr.LoadTemplate(w, r, view, vars)

	if err != nil {
		if _, ok := err.(*net.OpError); !ok {
			// don't capture OpErrors, they flood sentry with non-errors
			captureError(err)
		}
		logrus.WithError(err).Errorf("Unable to load template: %s", view)
		http.Error(w, "unable to load template", http.StatusInternalServerError)
		return
	}
}

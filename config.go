package livetiming

import (
	"net/http"
	"os"
	"time"

	"4d63.com/tz"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultHostname            = "0.0.0.0:3000"
	DefaultSingleDriverSamples = 20
)

type Configuration struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Views      ViewsConfig      `yaml:"views"`
	Static     StaticConfig     `yaml:"static"`
	Display    DisplayConfig    `yaml:"display"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Log        LogConfig        `yaml:"log"`
}

type HTTPConfig struct {
	Hostname string `yaml:"hostname"`
}

type UpstreamConfig struct {
	BaseURL    string `yaml:"base_url"`
	SessionKey string `yaml:"session_key"`

	// TimeoutSeconds of 0 leaves the transport default in place.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// SingleDriverSamples is how many of the most recent car data samples
	// the single driver endpoint returns.
	SingleDriverSamples int `yaml:"single_driver_samples"`
}

// HTTPClient builds the client used for upstream requests, instrumented when
// monitoring is enabled.
func (u *UpstreamConfig) HTTPClient(monitoring MonitoringConfig) *http.Client {
	transport := http.DefaultTransport

	if monitoring.Enabled {
		transport = RoundTripper(transport)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(u.TimeoutSeconds) * time.Second,
	}
}

type ViewsConfig struct {
	Path   string `yaml:"path"`
	Reload bool   `yaml:"reload"`
}

type StaticConfig struct {
	Path string `yaml:"path"`
}

type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// Location loads the configured display time zone, UTC if none is set.
func (d *DisplayConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}

	loc, err := tz.LoadLocation(d.Timezone)

	if err != nil {
		return nil, errors.Wrapf(err, "could not load display timezone: %s", d.Timezone)
	}

	return loc, nil
}

type MonitoringConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SentryDSN string `yaml:"sentry_dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func (c *Configuration) applyDefaults() {
	if c.HTTP.Hostname == "" {
		c.HTTP.Hostname = DefaultHostname
	}

	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultUpstreamBaseURL
	}

	if c.Upstream.SessionKey == "" {
		c.Upstream.SessionKey = DefaultSessionKey
	}

	if c.Upstream.SingleDriverSamples <= 0 {
		c.Upstream.SingleDriverSamples = DefaultSingleDriverSamples
	}

	if c.Views.Path == "" {
		c.Views.Path = "./views"
	}

	if c.Static.Path == "" {
		c.Static.Path = "./static"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DefaultConfig is the configuration used when no config file exists.
func DefaultConfig() *Configuration {
	conf := &Configuration{}
	conf.applyDefaults()

	return conf
}

func ReadConfig(location string) (*Configuration, error) {
	f, err := os.Open(location)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	conf := &Configuration{}

	if err := yaml.NewDecoder(f).Decode(conf); err != nil {
		return nil, errors.Wrapf(err, "could not decode config file: %s", location)
	}

	conf.applyDefaults()

	return conf, nil
}

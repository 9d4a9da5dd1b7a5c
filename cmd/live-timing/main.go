package main

import (
	"net/http"
	"os"

	livetiming "github.com/trackside/live-timing"
	"github.com/trackside/live-timing/internal/changelog"

	"github.com/sirupsen/logrus"
)

func main() {
	config, err := readConfig("config.yml")

	if err != nil {
		ServeHTTPWithError(livetiming.DefaultHostname, "read configuration file (config.yml)", err)
		return
	}

	livetiming.InitLogging(config.Log)
	livetiming.InitMonitoring(config.Monitoring)

	changelogHTML, err := changelog.LoadChangelog()

	if err != nil {
		logrus.WithError(err).Warn("could not load changelog")
	}

	resolver, err := livetiming.NewResolver(config, livetiming.NewFilesystemTemplateLoader(config.Views.Path), changelogHTML)

	if err != nil {
		ServeHTTPWithError(config.HTTP.Hostname, "initialise live timing", err)
		return
	}

	logrus.Infof("starting live timing (session: %s) on: %s", config.Upstream.SessionKey, config.HTTP.Hostname)

	router := resolver.ResolveRouter(http.Dir(config.Static.Path))

	if err := http.ListenAndServe(config.HTTP.Hostname, router); err != nil {
		logrus.Fatal(err)
	}
}

// readConfig falls back to the default configuration if there is no config file.
func readConfig(location string) (*livetiming.Configuration, error) {
	config, err := livetiming.ReadConfig(location)

	if os.IsNotExist(err) {
		logrus.Warnf("no %s found, using default configuration", location)
		return livetiming.DefaultConfig(), nil
	}

	return config, err
}

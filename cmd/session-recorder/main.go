package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"strings"
	"time"

	livetiming "github.com/trackside/live-timing"
	"github.com/trackside/live-timing/pkg/replay"

	"github.com/sirupsen/logrus"
)

var (
	baseURL    string
	sessionKey string
	resources  string
	interval   time.Duration
	outFile    string
)

func main() {
	flag.StringVar(&baseURL, "url", livetiming.DefaultUpstreamBaseURL, "upstream base url")
	flag.StringVar(&sessionKey, "session", livetiming.DefaultSessionKey, "session key to record")
	flag.StringVar(&resources, "resources", "drivers,position,intervals,sessions,weather,race_control,team_radio,laps,pit,stints", "comma separated resources to record")
	flag.DurationVar(&interval, "interval", 5*time.Second, "poll interval")
	flag.StringVar(&outFile, "o", time.Now().Format("2006-01-02_15.04.json"), "output file")
	flag.Parse()

	client, err := livetiming.NewOpenF1Client(baseURL, sessionKey, &http.Client{Timeout: 30 * time.Second})

	if err != nil {
		logrus.Fatal(err)
	}

	recorder := replay.NewRecorder(outFile)

	logrus.Infof("recording session %s to %s every %s", client.SessionKey(), outFile, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for ; ; <-ticker.C {
		for _, resource := range strings.Split(resources, ",") {
			resource = strings.TrimSpace(resource)

			var raw json.RawMessage

			if err := client.FetchSession(context.Background(), resource, nil, &raw); err != nil {
				logrus.WithError(err).WithField("resource", resource).Error("could not fetch resource")
				continue
			}

			if err := recorder.Record(resource, raw); err != nil {
				logrus.WithError(err).WithField("resource", resource).Error("could not record resource")
			}
		}
	}
}

package main

import (
	"flag"
	"net/http"

	"github.com/trackside/live-timing/pkg/replay"

	"github.com/sirupsen/logrus"
)

var (
	filename   string
	addr       string
	multiplier int
)

// session-replay serves a recording made by session-recorder as a stand-in
// upstream. Point upstream.base_url at http://<addr>/v1 to use it.
func main() {
	flag.StringVar(&filename, "f", "", "recording filename")
	flag.StringVar(&addr, "addr", "127.0.0.1:8081", "listen address")
	flag.IntVar(&multiplier, "x", 1, "replay speed multiplier")
	flag.Parse()

	entries, err := replay.Load(filename)

	if err != nil {
		logrus.Fatal(err)
	}

	upstream := replay.NewUpstream()

	go func() {
		replay.Replay(entries, multiplier, upstream.Set)
		logrus.Infof("replay of %d entries complete", len(entries))
	}()

	logrus.Infof("serving %s on: %s", filename, addr)
	logrus.Fatal(http.ListenAndServe(addr, upstream))
}

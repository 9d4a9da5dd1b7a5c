// Package replay records upstream API responses to a file and plays them back
// through a stand-in upstream server.
package replay

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNoResource = errors.New("replay: entry has no resource")

type Entry struct {
	Received time.Time
	Resource string

	Data json.RawMessage
}

// Recorder keeps every recorded entry and rewrites the whole file on each Record.
type Recorder struct {
	filename string

	entries []Entry
	mutex   sync.Mutex
}

func NewRecorder(filename string) *Recorder {
	return &Recorder{filename: filename}
}

func (r *Recorder) Record(resource string, data json.RawMessage) error {
	if resource == "" {
		return ErrNoResource
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.entries = append(r.entries, Entry{
		Received: time.Now(),
		Resource: resource,
		Data:     data,
	})

	f, err := os.Create(r.filename)

	if err != nil {
		return err
	}

	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")

	return encoder.Encode(r.entries)
}

func Load(filename string) ([]*Entry, error) {
	var loadedEntries []*Entry

	f, err := os.Open(filename)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	if err := json.NewDecoder(f).Decode(&loadedEntries); err != nil {
		return nil, errors.Wrapf(err, "could not decode recording: %s", filename)
	}

	return loadedEntries, nil
}

// Replay calls callbackFunc for each entry, keeping the recorded gaps between
// entries divided by multiplier.
func Replay(entries []*Entry, multiplier int, callbackFunc func(entry *Entry)) {
	if len(entries) == 0 {
		return
	}

	if multiplier <= 0 {
		multiplier = 1
	}

	timeStart := entries[0].Received

	for _, entry := range entries {
		tickDuration := entry.Received.Sub(timeStart) / time.Duration(multiplier)

		logrus.Debugf("next tick occurs in: %s", tickDuration)

		if tickDuration > 0 {
			time.Sleep(tickDuration)
		}

		callbackFunc(entry)

		timeStart = entry.Received
	}
}

// Upstream serves the most recently replayed body of each resource. Resources
// that have not been replayed yet are served as an empty list.
type Upstream struct {
	bodies map[string]json.RawMessage
	mutex  sync.RWMutex
}

func NewUpstream() *Upstream {
	return &Upstream{
		bodies: make(map[string]json.RawMessage),
	}
}

func (u *Upstream) Set(entry *Entry) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.bodies[entry.Resource] = entry.Data
}

func (u *Upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mutex.RLock()
	body, ok := u.bodies[path.Base(r.URL.Path)]
	u.mutex.RUnlock()

	if !ok {
		body = json.RawMessage("[]")
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

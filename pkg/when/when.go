// Package when runs callbacks at a wall-clock time. Timers are checked on a
// fixed resolution.
package when

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrTimeInPast = errors.New("when: time specified is in the past")

// DefaultResolution is how often the default scheduler checks its timers.
const DefaultResolution = time.Second

type Timer struct {
	fn func()
	t  time.Time

	scheduler *Scheduler
}

// Stop cancels the timer. Stopping a timer that already fired is a no-op.
func (t *Timer) Stop() {
	t.scheduler.remove(t)
}

func (t *Timer) Time() time.Time {
	return t.t
}

type Scheduler struct {
	resolution time.Duration

	timers map[*Timer]bool
	mutex  sync.Mutex
	once   sync.Once
}

func NewScheduler(resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	return &Scheduler{
		resolution: resolution,
		timers:     make(map[*Timer]bool),
	}
}

var defaultScheduler = NewScheduler(DefaultResolution)

// When calls fn on the default scheduler once t has been reached.
func When(t time.Time, fn func()) (*Timer, error) {
	return defaultScheduler.When(t, fn)
}

// When calls fn in its own goroutine once t has been reached. Times in the
// past are rejected with ErrTimeInPast.
func (s *Scheduler) When(t time.Time, fn func()) (*Timer, error) {
	if t.Before(time.Now()) {
		return nil, ErrTimeInPast
	}

	s.once.Do(func() {
		go s.loop()
	})

	timer := &Timer{
		fn:        fn,
		t:         t,
		scheduler: s,
	}

	s.mutex.Lock()
	s.timers[timer] = true
	s.mutex.Unlock()

	return timer, nil
}

// Pending is the number of timers that have not fired or been stopped.
func (s *Scheduler) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.timers)
}

func (s *Scheduler) remove(t *Timer) {
	s.mutex.Lock()
	delete(s.timers, t)
	s.mutex.Unlock()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.resolution)

	for tick := range ticker.C {
		now := tick.Round(s.resolution)

		var due []*Timer

		s.mutex.Lock()
		for timer := range s.timers {
			if !now.Before(timer.t.Round(s.resolution)) {
				due = append(due, timer)
				delete(s.timers, timer)
			}
		}
		s.mutex.Unlock()

		for _, timer := range due {
			logrus.Debugf("Starting scheduled callback (was due at %s)", timer.t)
			go timer.fn()
		}
	}
}

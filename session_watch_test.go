package livetiming

import (
	"testing"
	"time"

	"github.com/trackside/live-timing/pkg/when"
)

type chanBroadcaster struct {
	events chan LiveEvent
}

func (c chanBroadcaster) Send(event LiveEvent, message interface{}) error {
	c.events <- event
	return nil
}

func TestSessionStartNotifier(t *testing.T) {
	t.Run("Announces a future session", func(t *testing.T) {
		broadcaster := chanBroadcaster{events: make(chan LiveEvent, 1)}
		notifier := NewSessionStartNotifier(when.NewScheduler(10*time.Millisecond), broadcaster)

		registry := NewLocationRegistry(time.UTC)
		registry.OnNewSession(notifier.OnNewSession)

		registry.Set(SessionInfo{
			SessionID: 1,
			Start:     time.Now().Add(100 * time.Millisecond).UTC().Format(time.RFC3339Nano),
		})

		select {
		case event := <-broadcaster.events:
			if event != LiveEventSessionStarted {
				t.Logf("Unexpected event: %s", event)
				t.Fail()
			}
		case <-time.After(3 * time.Second):
			t.Logf("Session start was not announced")
			t.Fail()
		}
	})

	t.Run("A newer session replaces the pending announcement", func(t *testing.T) {
		scheduler := when.NewScheduler(10 * time.Millisecond)
		notifier := NewSessionStartNotifier(scheduler, NilBroadcaster{})

		notifier.OnNewSession(SessionLocation{SessionID: 1, startsAt: time.Now().Add(time.Hour)})
		notifier.OnNewSession(SessionLocation{SessionID: 2, startsAt: time.Now().Add(2 * time.Hour)})

		if scheduler.Pending() != 1 {
			t.Logf("Expected a single pending announcement, got: %d", scheduler.Pending())
			t.Fail()
		}
	})

	t.Run("Sessions already running are not announced", func(t *testing.T) {
		scheduler := when.NewScheduler(10 * time.Millisecond)
		notifier := NewSessionStartNotifier(scheduler, NilBroadcaster{})

		notifier.OnNewSession(SessionLocation{SessionID: 1, startsAt: time.Now().Add(-time.Minute)})
		notifier.OnNewSession(SessionLocation{SessionID: 2})

		if scheduler.Pending() != 0 {
			t.Logf("Expected no pending announcement, got: %d", scheduler.Pending())
			t.Fail()
		}
	})
}

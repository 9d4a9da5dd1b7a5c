package when

import (
	"testing"
	"time"
)

func TestScheduler_When(t *testing.T) {
	t.Run("Fires once the time is reached", func(t *testing.T) {
		s := NewScheduler(10 * time.Millisecond)
		fired := make(chan struct{}, 1)

		_, err := s.When(time.Now().Add(50*time.Millisecond), func() {
			fired <- struct{}{}
		})

		if err != nil {
			t.Error(err)
			return
		}

		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Logf("Timer did not fire")
			t.Fail()
		}

		if s.Pending() != 0 {
			t.Logf("Fired timer should have been removed, pending: %d", s.Pending())
			t.Fail()
		}
	})

	t.Run("Stopped timers do not fire", func(t *testing.T) {
		s := NewScheduler(10 * time.Millisecond)
		fired := make(chan struct{}, 1)

		timer, err := s.When(time.Now().Add(100*time.Millisecond), func() {
			fired <- struct{}{}
		})

		if err != nil {
			t.Error(err)
			return
		}

		timer.Stop()

		select {
		case <-fired:
			t.Logf("Stopped timer fired")
			t.Fail()
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("Rejects times in the past", func(t *testing.T) {
		s := NewScheduler(10 * time.Millisecond)

		if _, err := s.When(time.Now().Add(-time.Minute), func() {}); err != ErrTimeInPast {
			t.Logf("Expected ErrTimeInPast, got: %v", err)
			t.Fail()
		}
	})
}

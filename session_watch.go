package livetiming

import (
	"sync"
	"time"

	"github.com/trackside/live-timing/pkg/when"

	"github.com/sirupsen/logrus"
)

// SessionStartNotifier announces the start of the current session on the live
// hub. Only the most recently observed session has a pending announcement.
type SessionStartNotifier struct {
	scheduler   *when.Scheduler
	broadcaster Broadcaster

	timer *when.Timer
	mutex sync.Mutex
}

func NewSessionStartNotifier(scheduler *when.Scheduler, broadcaster Broadcaster) *SessionStartNotifier {
	return &SessionStartNotifier{
		scheduler:   scheduler,
		broadcaster: broadcaster,
	}
}

// OnNewSession is registered with the LocationRegistry.
func (n *SessionStartNotifier) OnNewSession(location SessionLocation) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}

	startsAt := location.StartsAt()

	if startsAt.IsZero() || !startsAt.After(time.Now()) {
		return
	}

	timer, err := n.scheduler.When(startsAt, func() {
		logrus.Infof("Session started: %s - %s (%d)", location.Name, location.SessionName, location.SessionID)

		if err := n.broadcaster.Send(LiveEventSessionStarted, location); err != nil {
			logrus.WithError(err).Error("Unable to broadcast session start")
		}
	})

	if err != nil {
		logrus.WithError(err).Warnf("Could not schedule start notification for session %d", location.SessionID)
		return
	}

	logrus.Debugf("Scheduled start notification for session %d at %s", location.SessionID, startsAt)

	n.timer = timer
}

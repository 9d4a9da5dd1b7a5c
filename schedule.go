package livetiming

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// MaxUpcomingEvents is how many events the index page lists.
const MaxUpcomingEvents = 10

// ScheduleEvent is one session of the season calendar.
type ScheduleEvent struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Category string `json:"category"`
	Start    string `json:"start"`
	End      string `json:"end"`

	startsAt, endsAt time.Time
}

func (e ScheduleEvent) StartsAt() time.Time {
	return e.startsAt
}

func newScheduleEvent(session upstreamSession) ScheduleEvent {
	startsAt, _ := parseUpstreamTime(session.DateStart)
	endsAt, _ := parseUpstreamTime(session.DateEnd)

	return ScheduleEvent{
		Name:     session.SessionName,
		Location: session.Location,
		Category: session.SessionType,
		Start:    session.DateStart,
		End:      session.DateEnd,
		startsAt: startsAt,
		endsAt:   endsAt,
	}
}

// buildSchedule converts upstream sessions to events ordered by start time.
func buildSchedule(sessions []upstreamSession) []ScheduleEvent {
	events := make([]ScheduleEvent, 0, len(sessions))

	for _, session := range sessions {
		events = append(events, newScheduleEvent(session))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].startsAt.Before(events[j].startsAt)
	})

	return events
}

// Schedule fetches every session of the given season. The calendar is not
// scoped to the configured session key.
func (c *OpenF1Client) Schedule(ctx context.Context, year int) ([]ScheduleEvent, error) {
	var sessions []upstreamSession

	err := c.Fetch(ctx, resourceSessions, url.Values{"year": []string{strconv.Itoa(year)}}, &sessions)

	if err != nil {
		return nil, err
	}

	return buildSchedule(sessions), nil
}

// UpcomingEvents returns up to limit events that have not ended yet and take
// place at the same location as the first of them.
func UpcomingEvents(events []ScheduleEvent, now time.Time, limit int) []ScheduleEvent {
	var upcoming []ScheduleEvent

	for _, event := range events {
		if len(upcoming) >= limit {
			break
		}

		if !event.endsAt.After(now) {
			continue
		}

		if len(upcoming) > 0 && event.Location != upcoming[0].Location {
			continue
		}

		upcoming = append(upcoming, event)
	}

	return upcoming
}

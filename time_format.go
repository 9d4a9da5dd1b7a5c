package livetiming

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
)

const (
	displayDateFormat = "02/01/2006"
	displayTimeFormat = "15:04"
)

// parseUpstreamTime reads the RFC3339 timestamps used throughout the upstream API
// (e.g. "2024-06-30T13:00:00+00:00"). Fractional seconds are optional.
func parseUpstreamTime(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339Nano, ts)

	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// FormatDate converts an upstream timestamp into a display date in loc.
// Empty or malformed timestamps produce an empty string.
func FormatDate(ts string, loc *time.Location) string {
	t, ok := parseUpstreamTime(ts)

	if !ok {
		return ""
	}

	return t.In(displayLocation(loc)).Format(displayDateFormat)
}

// FormatTime converts an upstream timestamp into a display time of day in loc.
func FormatTime(ts string, loc *time.Location) string {
	t, ok := parseUpstreamTime(ts)

	if !ok {
		return ""
	}

	return t.In(displayLocation(loc)).Format(displayTimeFormat)
}

func displayLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}

	return loc
}

// Countdown renders the time remaining until start as HH:MM:SS, prefixed with
// the number of whole days when there is at least one. Once start has passed
// the countdown stays at 00:00:00.
func Countdown(start, now time.Time) string {
	rest := start.Sub(now)

	if rest < 0 {
		return "00:00:00"
	}

	days := int(rest / (24 * time.Hour))
	hours := int((rest % (24 * time.Hour)) / time.Hour)
	minutes := int((rest % time.Hour) / time.Minute)
	seconds := int((rest % time.Minute) / time.Second)

	out := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)

	if days > 0 {
		out = fmt.Sprintf("%dd %s", days, out)
	}

	return out
}

// CountdownHuman is the coarse version of Countdown used on the track info page,
// e.g. "2 days".
func CountdownHuman(start, now time.Time) string {
	rest := start.Sub(now)

	if rest <= 0 {
		return "now"
	}

	return durafmt.ParseShort(rest.Truncate(time.Second)).String()
}

package livetiming

import (
	"testing"
	"time"
)

func TestFormatDateAndTime(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)

	if date := FormatDate("2024-06-30T13:00:00+00:00", loc); date != "30/06/2024" {
		t.Logf("unexpected date: %s", date)
		t.Fail()
	}

	if tod := FormatTime("2024-06-30T13:00:00+00:00", loc); tod != "15:00" {
		t.Logf("unexpected time: %s", tod)
		t.Fail()
	}

	if tod := FormatTime("2024-06-30T23:30:00.123000+00:00", nil); tod != "23:30" {
		t.Logf("unexpected time for fractional timestamp: %s", tod)
		t.Fail()
	}

	for _, bad := range []string{"", "yesterday", "2024-06-30"} {
		if FormatDate(bad, loc) != "" || FormatTime(bad, loc) != "" {
			t.Logf("expected empty output for %q", bad)
			t.Fail()
		}
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	start := now.Add(90 * time.Second)

	t.Run("ticks down towards zero", func(t *testing.T) {
		expected := map[time.Duration]string{
			0:                "00:01:30",
			30 * time.Second: "00:01:00",
			89 * time.Second: "00:00:01",
			90 * time.Second: "00:00:00",
		}

		for elapsed, want := range expected {
			if got := Countdown(start, now.Add(elapsed)); got != want {
				t.Logf("after %s: expected %s, got %s", elapsed, want, got)
				t.Fail()
			}
		}
	})

	t.Run("clamps once the start has passed", func(t *testing.T) {
		for _, elapsed := range []time.Duration{91 * time.Second, time.Hour, 72 * time.Hour} {
			if got := Countdown(start, now.Add(elapsed)); got != "00:00:00" {
				t.Logf("after %s: expected clamp, got %s", elapsed, got)
				t.Fail()
			}
		}
	})

	t.Run("prefixes whole days", func(t *testing.T) {
		got := Countdown(now.Add(2*24*time.Hour+3*time.Hour+4*time.Minute+5*time.Second), now)

		if got != "2d 03:04:05" {
			t.Logf("unexpected countdown: %s", got)
			t.Fail()
		}
	})
}

func TestCountdownHuman(t *testing.T) {
	now := time.Now()

	if got := CountdownHuman(now.Add(-time.Minute), now); got != "now" {
		t.Logf("expected now, got %s", got)
		t.Fail()
	}

	if got := CountdownHuman(now.Add(49*time.Hour), now); got != "2 days" {
		t.Logf("expected 2 days, got %s", got)
		t.Fail()
	}
}

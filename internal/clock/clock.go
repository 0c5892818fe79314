// Package clock provides the hot-window calendar math for the world
// simulation. The voting window recurs daily in KST (UTC+9) and spans
// midnight: it opens at HotStartHour and closes at HotEndHour the next
// morning. Every function takes the current instant as an argument so the
// package stays pure and testable; nothing in here reads the wall clock.
package clock

import (
	"fmt"
	"time"
)

const (
	// HotStartHour and HotEndHour are hours-of-day in KST.
	HotStartHour = 15
	HotEndHour   = 4

	// Timezone is the display name of the fixed hot-window timezone.
	Timezone = "Asia/Seoul"

	kstOffset = 9 * time.Hour
)

// ToKST shifts an instant into KST wall-clock time. The result is still a
// time.Time in UTC; only the clock reading matters to callers.
func ToKST(t time.Time) time.Time {
	return t.UTC().Add(kstOffset)
}

func fromKST(t time.Time) time.Time {
	return t.Add(-kstOffset)
}

// IsHotTime reports whether now falls inside the daily hot window.
func IsHotTime(now time.Time) bool {
	hour := ToKST(now).Hour()
	return hour >= HotStartHour || hour < HotEndHour
}

// CurrentHotWindowEnd returns the instant the ongoing hot window closes.
// ok is false when now is outside the window.
func CurrentHotWindowEnd(now time.Time) (end time.Time, ok bool) {
	if !IsHotTime(now) {
		return time.Time{}, false
	}

	kst := ToKST(now)
	day := kst
	if kst.Hour() >= HotStartHour {
		// The window wraps midnight; it closes tomorrow morning.
		day = kst.AddDate(0, 0, 1)
	}
	end = time.Date(day.Year(), day.Month(), day.Day(), HotEndHour, 0, 0, 0, time.UTC)
	return fromKST(end), true
}

// NextHotWindowStart returns the next instant the hot window opens. When now
// is before today's start hour the window opens today, otherwise tomorrow.
func NextHotWindowStart(now time.Time) time.Time {
	kst := ToKST(now)
	day := kst
	if kst.Hour() >= HotStartHour {
		day = kst.AddDate(0, 0, 1)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), HotStartHour, 0, 0, 0, time.UTC)
	return fromKST(start)
}

// CanOpenTurn reports whether a full turn of the given length fits inside the
// remainder of the current hot window. Turns never straddle the window end,
// so a turn that would have to resolve outside hot time is not opened.
func CanOpenTurn(now time.Time, turnLength time.Duration) bool {
	end, ok := CurrentHotWindowEnd(now)
	if !ok {
		return false
	}
	return !now.Add(turnLength).After(end)
}

// FormatCountdown renders a duration as hh:mm:ss for user-facing countdowns.
// Negative durations render as zero.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

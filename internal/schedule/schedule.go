package schedule

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"codeberg.org/snonux/wordofday/internal/entry"
)

const (
	// AlarmName is the name the daily rotation alarm is registered under.
	AlarmName = "updateWord"

	// PeriodInMinutes is the repeat interval of the daily alarm.
	PeriodInMinutes = 1440

	// WakeCheckInterval is how often armed fire times are compared with the
	// wall clock. Timers count monotonic time, which stands still while the
	// machine is suspended.
	WakeCheckInterval = time.Minute
)

// Rotator is the part of the current-word manager the triggers drive.
type Rotator interface {
	// EnsureCurrent loads the stored word, rotating once if there is none.
	EnsureCurrent(ctx context.Context) (entry.Entry, bool, error)
	// Next rotates to a new word, avoiding the current one.
	Next(ctx context.Context) (entry.Entry, error)
}

// NextMidnight returns the first local midnight strictly after now, in
// now's location. Days shortened or stretched by DST are handled by
// time.Date normalisation.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// UntilMidnight returns how long it is from now until NextMidnight(now).
func UntilMidnight(now time.Time) time.Duration {
	return NextMidnight(now).Sub(now)
}

// wallNow returns the current time without its monotonic reading, so that
// comparisons with fire times use the wall clock.
func wallNow(c clockwork.Clock) time.Time {
	return c.Now().Round(0)
}

// watchWallClock calls check every WakeCheckInterval until done is closed.
func watchWallClock(c clockwork.Clock, done <-chan struct{}, check func()) {
	ticker := c.NewTicker(WakeCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			check()
		}
	}
}

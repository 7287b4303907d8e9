package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrClosed is returned when registering on a closed AlarmHost.
var ErrClosed = errors.New("alarm host closed")

// AlarmSpec describes when a named alarm fires. A zero PeriodInMinutes
// makes it a one-shot alarm.
type AlarmSpec struct {
	When            time.Time
	PeriodInMinutes int
}

// AlarmHost is a small periodic alarm facility on top of a Clock. Alarms
// are identified by name and re-arm themselves after every fire, so a
// registered repeating alarm needs no further attention from its owner.
//
// An alarm that fell due while the machine was suspended fires once on the
// next wall clock check; the periods missed in between are skipped.
type AlarmHost struct {
	clock clockwork.Clock
	fired chan string
	done  chan struct{}

	mu       sync.Mutex
	alarms   map[string]*alarm
	watching bool
	closed   bool
}

type alarm struct {
	spec  AlarmSpec
	next  time.Time
	timer clockwork.Timer
}

// NewAlarmHost returns an AlarmHost using c.
func NewAlarmHost(c clockwork.Clock) *AlarmHost {
	return &AlarmHost{
		clock:  c,
		fired:  make(chan string, 16),
		done:   make(chan struct{}),
		alarms: make(map[string]*alarm),
	}
}

// Register arms the alarm name according to spec, replacing any alarm
// already registered under the same name.
func (h *AlarmHost) Register(name string, spec AlarmSpec) error {
	if spec.PeriodInMinutes < 0 {
		return fmt.Errorf("invalid period for alarm %q: %d minutes", name, spec.PeriodInMinutes)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if old, ok := h.alarms[name]; ok {
		old.timer.Stop()
	}

	a := &alarm{spec: spec, next: spec.When.Round(0)}
	h.alarms[name] = a
	h.arm(name, a)

	if !h.watching {
		h.watching = true
		go watchWallClock(h.clock, h.done, h.catchUp)
	}
	return nil
}

// Clear cancels the alarm name. It reports whether an alarm was registered.
func (h *AlarmHost) Clear(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.alarms[name]
	if !ok {
		return false
	}
	a.timer.Stop()
	delete(h.alarms, name)
	return true
}

// Next returns the next fire time of the alarm name.
func (h *AlarmHost) Next(name string) (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.alarms[name]
	if !ok {
		return time.Time{}, false
	}
	return a.next, true
}

// Fired delivers the name of every alarm that fires. Fires are dropped
// while the buffer is full.
func (h *AlarmHost) Fired() <-chan string {
	return h.fired
}

// Close cancels all alarms. Further registrations fail with ErrClosed.
func (h *AlarmHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for name, a := range h.alarms {
		a.timer.Stop()
		delete(h.alarms, name)
	}
}

// arm must be called with h.mu held.
func (h *AlarmHost) arm(name string, a *alarm) {
	due := a.next
	d := due.Sub(wallNow(h.clock))
	if d < 0 {
		d = 0
	}
	a.timer = h.clock.AfterFunc(d, func() { h.fire(name, a, due) })
}

func (h *AlarmHost) fire(name string, a *alarm, due time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Replaced, cleared or already fired by catchUp
	if h.closed || h.alarms[name] != a || !a.next.Equal(due) {
		return
	}
	h.fireLocked(name, a)
}

// catchUp fires every alarm whose fire time has passed on the wall clock.
func (h *AlarmHost) catchUp() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	now := wallNow(h.clock)
	for name, a := range h.alarms {
		if !now.Before(a.next) {
			h.fireLocked(name, a)
		}
	}
}

// fireLocked re-arms or removes a before delivering the fire, so a receiver
// of Fired always sees the following fire time in Next.
func (h *AlarmHost) fireLocked(name string, a *alarm) {
	a.timer.Stop()

	if a.spec.PeriodInMinutes == 0 {
		delete(h.alarms, name)
	} else {
		period := time.Duration(a.spec.PeriodInMinutes) * time.Minute
		now := wallNow(h.clock)
		a.next = a.next.Add(period)
		for !a.next.After(now) {
			a.next = a.next.Add(period)
		}
		h.arm(name, a)
	}

	select {
	case h.fired <- name:
	default:
	}
}

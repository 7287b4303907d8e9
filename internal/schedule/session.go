package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Session is the transient trigger of one open popup. It must be closed
// when the popup goes away; closing cancels the midnight timer and any
// rotation still in flight. A midnight slept through while suspended is
// caught up by the next wall clock check.
type Session struct {
	rotator Rotator
	clock   clockwork.Clock
	logger  *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	timer  clockwork.Timer
	next   time.Time
	closed bool
}

// NewSession returns an idle session. Call Start to arm it.
func NewSession(r Rotator, c clockwork.Clock, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{rotator: r, clock: c, logger: logger}
}

// Start runs the startup transition and arms the timer for the next local
// midnight. The timer is armed even if the startup transition failed; that
// error is returned so the caller can offer a retry.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.ctx != nil {
		s.mu.Unlock()
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	sctx := s.ctx
	s.mu.Unlock()

	_, _, err := s.rotator.EnsureCurrent(sctx)
	if err != nil {
		s.logger.Error("Failed to load current word", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.armLocked(NextMidnight(wallNow(s.clock)))
		go watchWallClock(s.clock, sctx.Done(), s.catchUp)
	}
	return err
}

// Next returns the time the timer is armed for, if any.
func (s *Session) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return time.Time{}, false
	}
	return s.next, true
}

// Close cancels the timer. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) armLocked(at time.Time) {
	d := at.Sub(wallNow(s.clock))
	if d < 0 {
		d = 0
	}
	s.next = at
	s.timer = s.clock.AfterFunc(d, func() { s.fire(at) })
}

func (s *Session) catchUp() {
	s.mu.Lock()
	if s.closed || s.timer == nil || wallNow(s.clock).Before(s.next) {
		s.mu.Unlock()
		return
	}
	at := s.next
	s.mu.Unlock()

	s.fire(at)
}

func (s *Session) fire(at time.Time) {
	s.mu.Lock()
	// Closed, or this midnight was already handled by catchUp
	if s.closed || s.timer == nil || !s.next.Equal(at) {
		s.mu.Unlock()
		return
	}
	s.timer.Stop()
	s.timer = nil
	ctx := s.ctx
	s.mu.Unlock()

	if e, err := s.rotator.Next(ctx); err != nil {
		s.logger.Error("Failed to rotate word at midnight", zap.Error(err))
	} else {
		s.logger.Info("Rotated word at midnight", zap.String("word", e.Word))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Re-arm from the scheduled instant, not from Now, unless that midnight
	// has passed as well.
	next := NextMidnight(at)
	if now := wallNow(s.clock); !next.After(now) {
		next = NextMidnight(now)
	}
	s.armLocked(next)
}

package rotation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordofday/internal/enrich"
	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/picker"
	"codeberg.org/snonux/wordofday/internal/store"
)

// State is the observable outcome of the most recent rotation attempt.
type State struct {
	Current    entry.Entry
	HasCurrent bool
	Err        error // last failure, nil after a success
	UpdatedAt  time.Time
}

// Failed reports whether the last attempt failed.
func (s State) Failed() bool {
	return s.Err != nil
}

// Manager produces and persists the current word.
type Manager struct {
	store    store.Store
	picker   picker.Picker
	enricher enrich.Provider
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewManager creates a manager. enricher may be nil when every candidate
// the picker produces is already complete.
func NewManager(st store.Store, p picker.Picker, enricher enrich.Provider, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:     st,
		picker:    p,
		enricher:  enricher,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(State)),
	}
}

// Current loads the stored word. The boolean is false when nothing is
// stored yet.
func (m *Manager) Current(ctx context.Context) (entry.Entry, bool, error) {
	var e entry.Entry
	err := m.store.Get(ctx, store.KeyDailyWord, &e)
	if errors.Is(err, store.ErrNotFound) {
		return entry.Entry{}, false, nil
	}
	if err != nil {
		return entry.Entry{}, false, err
	}
	return e, true, nil
}

// EnsureCurrent is the startup transition. A stored word is returned as is
// without any freshness check; when nothing is stored a rotation runs
// immediately. The boolean reports whether a rotation happened.
func (m *Manager) EnsureCurrent(ctx context.Context) (entry.Entry, bool, error) {
	e, ok, err := m.Current(ctx)
	if err != nil {
		rerr := &RotationError{Kind: KindStorage, Err: err}
		m.publishFailure(rerr)
		return entry.Entry{}, false, rerr
	}
	if ok {
		m.publishSuccess(e)
		return e, false, nil
	}

	m.logger.Info("No current word stored, rotating now")
	e, err = m.Rotate(ctx, nil)
	if err != nil {
		return entry.Entry{}, false, err
	}
	return e, true, nil
}

// Next rotates away from whatever word is currently stored. Both the
// scheduled triggers and the manual "next word" action use it.
func (m *Manager) Next(ctx context.Context) (entry.Entry, error) {
	prev, ok, err := m.Current(ctx)
	if err != nil {
		// The previous word only steers the picker; carry on without it.
		m.logger.Warn("Failed to load previous word", zap.Error(err))
		ok = false
	}
	if !ok {
		return m.Rotate(ctx, nil)
	}
	return m.Rotate(ctx, &prev)
}

// Rotate replaces the current word. previous, when given, is excluded from
// the pick. On failure the stored word is left untouched and the returned
// error is a *RotationError.
func (m *Manager) Rotate(ctx context.Context, previous *entry.Entry) (entry.Entry, error) {
	exclude := ""
	if previous != nil {
		exclude = previous.Word
	}

	candidate, err := m.picker.Pick(ctx, exclude)
	if err != nil {
		return entry.Entry{}, m.fail(&RotationError{Kind: KindPickerUnavailable, Err: err})
	}

	next := candidate
	if !candidate.Complete() {
		var rerr *RotationError
		if next, rerr = m.enrich(ctx, candidate); rerr != nil {
			return entry.Entry{}, m.fail(rerr)
		}
	}

	if err := m.store.Set(ctx, store.KeyDailyWord, next); err != nil {
		return entry.Entry{}, m.fail(&RotationError{Kind: KindStorage, Word: next.Word, Err: err})
	}

	m.logger.Info("Rotated word of the day",
		zap.String("word", next.Word),
		zap.String("previous", exclude),
		zap.String("picker", m.picker.Name()),
	)
	m.publishSuccess(next)
	return next, nil
}

func (m *Manager) enrich(ctx context.Context, candidate entry.Entry) (entry.Entry, *RotationError) {
	word := candidate.Word
	if m.enricher == nil {
		return entry.Entry{}, &RotationError{
			Kind: KindEnrichmentUnavailable,
			Word: word,
			Err:  fmt.Errorf("%w: no provider configured", enrich.ErrUnavailable),
		}
	}

	details, err := m.enricher.Enrich(ctx, word)
	if err != nil {
		kind := KindEnrichmentUnavailable
		if errors.Is(err, enrich.ErrMalformed) {
			kind = KindEnrichmentMalformed
		}
		return entry.Entry{}, &RotationError{Kind: kind, Word: word, Err: err}
	}

	e := details.Apply(candidate)
	if err := e.Validate(); err != nil {
		return entry.Entry{}, &RotationError{Kind: KindEnrichmentMalformed, Word: word, Err: err}
	}
	return e, nil
}

func (m *Manager) fail(err *RotationError) error {
	m.logger.Error("Rotation failed",
		zap.String("kind", err.Kind.String()),
		zap.String("word", err.Word),
		zap.Error(err.Err),
	)
	m.publishFailure(err)
	return err
}

// State returns the latest observable state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to be called after every state change. The
// returned function removes the subscription.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publishSuccess(e entry.Entry) {
	m.publish(func(s *State) {
		s.Current = e.Clone()
		s.HasCurrent = true
		s.Err = nil
	})
}

// publishFailure keeps the last good word visible next to the error.
func (m *Manager) publishFailure(err error) {
	m.publish(func(s *State) {
		s.Err = err
	})
}

func (m *Manager) publish(update func(*State)) {
	m.mu.Lock()
	update(&m.state)
	m.state.UpdatedAt = m.now()
	state := m.state
	listeners := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// Package history keeps the words the user chose to save: an insertion
// ordered list, unique by word and capped in size, persisted in full after
// every change.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/store"
)

// DefaultMax is the number of entries kept before the oldest are evicted.
const DefaultMax = 100

// History is the saved word list. Mutations are written through to the
// store; the in-memory copy only changes once the write succeeded.
type History struct {
	store  store.Store
	max    int
	logger *zap.Logger

	mu      sync.Mutex
	entries []entry.Entry
}

// Option configures a History.
type Option func(*History)

// WithMax lowers the cap below DefaultMax. Values outside 1..DefaultMax
// are ignored.
func WithMax(n int) Option {
	return func(h *History) {
		if n > 0 && n <= DefaultMax {
			h.max = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Open loads the saved list from st. A missing key and a stored empty list
// both mean no history.
func Open(ctx context.Context, st store.Store, opts ...Option) (*History, error) {
	h := &History{
		store:  st,
		max:    DefaultMax,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	var entries []entry.Entry
	err := st.Get(ctx, store.KeyHistory, &entries)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	h.entries = h.normalize(entries)
	return h, nil
}

// normalize drops repeated and empty words and trims to the cap.
func (h *History) normalize(entries []entry.Entry) []entry.Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Word == "" || seen[e.Word] {
			continue
		}
		seen[e.Word] = true
		out = append(out, e)
	}
	if len(out) > h.max {
		out = out[len(out)-h.max:]
	}
	return out
}

func (h *History) indexOf(word string) int {
	for i, e := range h.entries {
		if e.Word == word {
			return i
		}
	}
	return -1
}

// IsSaved reports whether word is in the history.
func (h *History) IsSaved(word string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.indexOf(word) >= 0
}

// Add appends e unless its word is already saved, evicting the oldest
// entries beyond the cap. It reports whether e was added.
func (h *History) Add(ctx context.Context, e entry.Entry) (bool, error) {
	if e.Word == "" {
		return false, entry.ErrEmptyWord
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.add(ctx, e)
}

func (h *History) add(ctx context.Context, e entry.Entry) (bool, error) {
	if h.indexOf(e.Word) >= 0 {
		return false, nil
	}

	next := make([]entry.Entry, 0, len(h.entries)+1)
	next = append(next, h.entries...)
	next = append(next, e.Clone())
	if len(next) > h.max {
		evicted := next[:len(next)-h.max]
		next = next[len(next)-h.max:]
		h.logger.Debug("Evicted oldest history entries", zap.Int("count", len(evicted)))
	}

	if err := h.persist(ctx, next); err != nil {
		return false, err
	}
	h.entries = next
	return true, nil
}

// Remove deletes word from the history. Removing a word that is not saved
// changes nothing and writes nothing. It reports whether an entry was
// removed.
func (h *History) Remove(ctx context.Context, word string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.remove(ctx, word)
}

func (h *History) remove(ctx context.Context, word string) (bool, error) {
	i := h.indexOf(word)
	if i < 0 {
		return false, nil
	}

	next := make([]entry.Entry, 0, len(h.entries)-1)
	next = append(next, h.entries[:i]...)
	next = append(next, h.entries[i+1:]...)

	if err := h.persist(ctx, next); err != nil {
		return false, err
	}
	h.entries = next
	return true, nil
}

// Toggle removes e if its word is saved and adds it otherwise. It reports
// whether e is saved afterwards.
func (h *History) Toggle(ctx context.Context, e entry.Entry) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexOf(e.Word) >= 0 {
		if _, err := h.remove(ctx, e.Word); err != nil {
			return true, err
		}
		return false, nil
	}

	if e.Word == "" {
		return false, entry.ErrEmptyWord
	}
	if _, err := h.add(ctx, e); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the history and deletes the stored key.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Remove(ctx, store.KeyHistory); err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err))
		return fmt.Errorf("failed to clear history: %w", err)
	}
	h.entries = nil
	return nil
}

// List returns the history oldest first. With limit > 0 only the most
// recent limit entries are returned, still oldest first.
func (h *History) List(limit int) []entry.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	src := h.entries
	if limit > 0 && limit < len(src) {
		src = src[len(src)-limit:]
	}

	out := make([]entry.Entry, len(src))
	for i, e := range src {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of saved entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Max returns the cap.
func (h *History) Max() int {
	return h.max
}

func (h *History) persist(ctx context.Context, entries []entry.Entry) error {
	if err := h.store.Set(ctx, store.KeyHistory, entries); err != nil {
		h.logger.Error("Failed to persist history", zap.Int("entries", len(entries)), zap.Error(err))
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"codeberg.org/snonux/wordofday/internal/enrich"
	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/store"
)

// MockPicker is a mock for picker.Picker
type MockPicker struct {
	mock.Mock
}

func (m *MockPicker) Pick(ctx context.Context, exclude string) (entry.Entry, error) {
	args := m.Called(ctx, exclude)
	return args.Get(0).(entry.Entry), args.Error(1)
}

func (m *MockPicker) Name() string {
	return "mock"
}

// MockProvider is a mock for enrich.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Enrich(ctx context.Context, word string) (enrich.Details, error) {
	args := m.Called(ctx, word)
	return args.Get(0).(enrich.Details), args.Error(1)
}

func (m *MockProvider) Name() string {
	return "mock"
}

// MockRotator is a mock for the rotation calls made by the scheduler
type MockRotator struct {
	mock.Mock
}

func (m *MockRotator) EnsureCurrent(ctx context.Context) (entry.Entry, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(entry.Entry), args.Bool(1), args.Error(2)
}

func (m *MockRotator) Next(ctx context.Context) (entry.Entry, error) {
	args := m.Called(ctx)
	return args.Get(0).(entry.Entry), args.Error(1)
}

// FailingStore wraps a MemoryStore and returns injected errors per
// operation ("get", "set", "remove") and key.
type FailingStore struct {
	*store.MemoryStore

	mu     sync.Mutex
	errors map[string]error
	Writes int
}

// NewFailingStore returns a FailingStore with no failures armed.
func NewFailingStore() *FailingStore {
	return &FailingStore{
		MemoryStore: store.NewMemoryStore(),
		errors:      make(map[string]error),
	}
}

// FailOn makes op on key return err until cleared with a nil err.
func (s *FailingStore) FailOn(op, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errors, op+":"+key)
		return
	}
	s.errors[op+":"+key] = err
}

func (s *FailingStore) injected(op, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errors[op+":"+key]; ok {
		return &store.StorageError{Op: op, Key: key, Err: err}
	}
	return nil
}

func (s *FailingStore) Get(ctx context.Context, key string, v any) error {
	if err := s.injected("get", key); err != nil {
		return err
	}
	return s.MemoryStore.Get(ctx, key, v)
}

func (s *FailingStore) Set(ctx context.Context, key string, v any) error {
	if err := s.injected("set", key); err != nil {
		return err
	}
	s.mu.Lock()
	s.Writes++
	s.mu.Unlock()
	return s.MemoryStore.Set(ctx, key, v)
}

func (s *FailingStore) Remove(ctx context.Context, key string) error {
	if err := s.injected("remove", key); err != nil {
		return err
	}
	return s.MemoryStore.Remove(ctx, key)
}

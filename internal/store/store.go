package store

import (
	"context"
	"errors"
	"fmt"
)

// Keys used by wordofday.
const (
	KeyDailyWord = "dailyWord"
	KeyHistory   = "history"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Store is key-value storage that survives process restarts.
// Values are JSON encoded.
type Store interface {
	// Get decodes the value stored under key into v.
	Get(ctx context.Context, key string, v any) error

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, v any) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// StorageError reports a failure of the persistence layer.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

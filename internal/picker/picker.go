package picker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/wordlist"
)

// ErrFetch is returned when the word source cannot produce a word.
var ErrFetch = errors.New("word source unavailable")

// Picker produces a candidate entry. The result may be fully populated or
// carry only a bare word that still needs enrichment.
type Picker interface {
	// Pick returns a candidate, avoiding exclude where the source allows it.
	Pick(ctx context.Context, exclude string) (entry.Entry, error)

	// Name returns the picker name
	Name() string
}

// Config selects and configures a picker.
type Config struct {
	Mode      string // "static" or "remote"
	WordsFile string // optional list for static mode, defaults to the embedded list
	RemoteURL string
	Timeout   time.Duration
}

// DefaultConfig returns the static picker over the embedded list.
func DefaultConfig() *Config {
	return &Config{
		Mode:      "static",
		RemoteURL: DefaultRemoteURL,
		Timeout:   10 * time.Second,
	}
}

// New creates the picker described by config.
func New(config *Config) (Picker, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Mode {
	case "", "static":
		words := wordlist.Default()
		if config.WordsFile != "" {
			var err error
			if words, err = wordlist.ReadFile(config.WordsFile); err != nil {
				return nil, err
			}
		}
		return NewStaticPicker(words, time.Now().UnixNano())

	case "remote":
		return NewRemotePicker(config.RemoteURL, config.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown picker mode: %s", config.Mode)
	}
}

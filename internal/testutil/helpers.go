package testutil

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"codeberg.org/snonux/wordofday/internal/entry"
)

// NewTestLogger returns a logger that writes through t.Log.
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t)
}

// SampleEntry returns a complete entry for word.
func SampleEntry(word string) entry.Entry {
	return entry.Entry{
		Word:         word,
		Translation:  word + " (translated)",
		PartOfSpeech: entry.Noun,
		Examples: []string{
			fmt.Sprintf("This is a %s.", word),
			fmt.Sprintf("I like the %s.", word),
			fmt.Sprintf("Where is my %s?", word),
		},
	}
}

// SampleEntries returns n complete entries named word-0 ... word-(n-1).
func SampleEntries(n int) []entry.Entry {
	out := make([]entry.Entry, n)
	for i := range out {
		out[i] = SampleEntry(fmt.Sprintf("word-%d", i))
	}
	return out
}

// Words returns the keys of entries in order.
func Words(entries []entry.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Word
	}
	return out
}

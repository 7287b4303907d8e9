package gui

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/rotation"
)

// HistoryPreview is how many saved words are listed while collapsed.
const HistoryPreview = 5

// visibleHistory returns the history entries to list, newest first. Unless
// showAll is set only the HistoryPreview most recent are returned.
func visibleHistory(entries []entry.Entry, showAll bool) []entry.Entry {
	n := len(entries)
	if !showAll && n > HistoryPreview {
		n = HistoryPreview
	}

	out := make([]entry.Entry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}

func exampleLines(examples []string) []string {
	out := make([]string, len(examples))
	for i, ex := range examples {
		out[i] = fmt.Sprintf("%d. %s", i+1, ex)
	}
	return out
}

func saveLabel(saved bool) string {
	if saved {
		return "Remove from history"
	}
	return "Save to history"
}

func showMoreLabel(showAll bool) string {
	if showAll {
		return "Hide"
	}
	return "Show more"
}

func errorMessage(err error) string {
	var rerr *rotation.RotationError
	if errors.As(err, &rerr) {
		return rerr.Message()
	}
	return err.Error()
}

// Package archive writes snapshots of the saved word history to disk.
package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/wordofday/internal/entry"
)

// Supported export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportHistory writes entries to a timestamped file in dir and returns its
// path. The directory is created if needed.
func ExportHistory(dir string, entries []entry.Entry, format string, now time.Time) (string, error) {
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatCSV {
		return "", fmt.Errorf("unsupported export format: %s", format)
	}

	// Create archive directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	timestamp := now.Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("history-%s.%s", timestamp, format))

	// Check if the export already exists (two exports in one second)
	if _, err := os.Stat(path); err == nil {
		timestamp = now.Format("20060102-150405.000000")
		path = filepath.Join(dir, fmt.Sprintf("history-%s.%s", timestamp, format))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if format == FormatCSV {
		err = WriteCSV(f, entries)
	} else {
		err = WriteJSON(f, entries)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	return path, nil
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []entry.Entry) error {
	if entries == nil {
		entries = []entry.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteCSV writes one row per entry. Examples are joined with " | ".
func WriteCSV(w io.Writer, entries []entry.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"word", "translation", "part_of_speech", "examples"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{e.Word, e.Translation, string(e.PartOfSpeech), strings.Join(e.Examples, " | ")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

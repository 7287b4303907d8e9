package wordlist

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wordofday/internal/entry"
)

//go:embed words.json
var defaultWords []byte

// Default returns the built-in list of fully populated entries.
func Default() []entry.Entry {
	var entries []entry.Entry
	if err := json.Unmarshal(defaultWords, &entries); err != nil {
		panic(fmt.Sprintf("embedded word list is invalid: %v", err))
	}
	return entries
}

// ReadFile loads candidates from filename. Files ending in .json hold an
// array of entries; anything else is read line by line with Parse.
func ReadFile(filename string) ([]entry.Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(filename), ".json") {
		var entries []entry.Entry
		if err := json.NewDecoder(f).Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode word list %s: %w", filename, err)
		}
		return dedupe(entries), nil
	}

	return Parse(f)
}

// Parse reads one candidate per line. Supported formats:
//   - word only: "apple" (translated by the enrichment provider)
//   - with translation: "apple = яблуко" (still enriched for examples)
//
// Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]entry.Entry, error) {
	var entries []entry.Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, translation, _ := strings.Cut(line, "=")
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}

		entries = append(entries, entry.Entry{
			Word:        word,
			Translation: strings.TrimSpace(translation),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return dedupe(entries), nil
}

// dedupe keeps the first entry for every word.
func dedupe(entries []entry.Entry) []entry.Entry {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.Word == "" || seen[e.Word] {
			continue
		}
		seen[e.Word] = true
		out = append(out, e)
	}
	return out
}

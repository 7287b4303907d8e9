package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PartOfSpeech is the grammatical category of a word. Values outside the
// known set collapse to Other.
type PartOfSpeech string

const (
	Noun         PartOfSpeech = "noun"
	Verb         PartOfSpeech = "verb"
	Adjective    PartOfSpeech = "adjective"
	Adverb       PartOfSpeech = "adverb"
	Pronoun      PartOfSpeech = "pronoun"
	Preposition  PartOfSpeech = "preposition"
	Conjunction  PartOfSpeech = "conjunction"
	Interjection PartOfSpeech = "interjection"
	Other        PartOfSpeech = "other"
)

var knownPartsOfSpeech = map[string]PartOfSpeech{
	"noun":         Noun,
	"verb":         Verb,
	"adjective":    Adjective,
	"adj":          Adjective,
	"adverb":       Adverb,
	"adv":          Adverb,
	"pronoun":      Pronoun,
	"preposition":  Preposition,
	"conjunction":  Conjunction,
	"interjection": Interjection,
}

// ParsePartOfSpeech maps a provider supplied string onto the closed set.
func ParsePartOfSpeech(s string) PartOfSpeech {
	if pos, ok := knownPartsOfSpeech[strings.ToLower(strings.TrimSpace(s))]; ok {
		return pos
	}
	return Other
}

// UnmarshalJSON accepts any string and normalizes it.
func (p *PartOfSpeech) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("part of speech: %w", err)
	}
	*p = ParsePartOfSpeech(s)
	return nil
}

var (
	ErrEmptyWord  = errors.New("entry has an empty word")
	ErrIncomplete = errors.New("entry is not fully populated")
)

// Entry is one vocabulary item. Word is the natural key and is compared
// case-sensitively.
type Entry struct {
	Word         string       `json:"word"`
	Translation  string       `json:"translation"`
	PartOfSpeech PartOfSpeech `json:"partOfSpeech"`
	Examples     []string     `json:"examples"`
}

// Bare returns an entry carrying only the word token.
func Bare(word string) Entry {
	return Entry{Word: word}
}

// Complete reports whether the entry can be shown without enrichment.
func (e Entry) Complete() bool {
	return e.Validate() == nil
}

// Validate checks that every field of the entry is populated.
func (e Entry) Validate() error {
	if e.Word == "" {
		return ErrEmptyWord
	}
	if strings.TrimSpace(e.Translation) == "" || e.PartOfSpeech == "" || len(e.Examples) == 0 {
		return fmt.Errorf("%w: %q", ErrIncomplete, e.Word)
	}
	return nil
}

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	c := e
	if e.Examples != nil {
		c.Examples = append([]string(nil), e.Examples...)
	}
	return c
}

func (e Entry) String() string {
	if e.Translation == "" {
		return e.Word
	}
	return fmt.Sprintf("%s - %s", e.Word, e.Translation)
}

package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordofday/internal/entry"
)

func TestDefault(t *testing.T) {
	words := Default()
	require.NotEmpty(t, words)

	seen := map[string]bool{}
	for _, e := range words {
		assert.NoError(t, e.Validate())
		assert.False(t, seen[e.Word], "duplicate word %q", e.Word)
		seen[e.Word] = true
	}
	assert.True(t, seen["apple"])
}

func TestParse(t *testing.T) {
	input := `
# saved from class
apple
run = бігти
  beautiful  =  гарний
= orphan translation
apple
`
	entries, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	want := []entry.Entry{
		{Word: "apple"},
		{Word: "run", Translation: "бігти"},
		{Word: "beautiful", Translation: "гарний"},
	}
	assert.Equal(t, want, entries)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(txt, []byte("one\ntwo\n"), 0644))

	entries, err := ReadFile(txt)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	js := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(js, []byte(`[{"word":"apple","translation":"яблуко","partOfSpeech":"noun","examples":["x"]}]`), 0644))

	entries, err = ReadFile(js)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Complete())

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

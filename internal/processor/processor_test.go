package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordofday/internal/cli"
	"codeberg.org/snonux/wordofday/internal/enrich"
	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/picker"
	"codeberg.org/snonux/wordofday/internal/rotation"
	"codeberg.org/snonux/wordofday/internal/store"
	"codeberg.org/snonux/wordofday/internal/testutil"
	"codeberg.org/snonux/wordofday/internal/wordlist"
)

var ctx = context.Background()

func testConfig(t *testing.T) *cli.Config {
	t.Helper()
	dir := t.TempDir()
	return &cli.Config{
		StoragePath: filepath.Join(dir, "wordofday.db"),
		ArchiveDir:  filepath.Join(dir, "archive"),
		HistoryMax:  100,
		Picker:      picker.DefaultConfig(),
		Enrich: &enrich.Config{
			Provider: "openrouter",
			Language: "Ukrainian",
			Timeout:  5 * time.Second,
		},
		LogLevel: "debug",
	}
}

func newTestProcessor(t *testing.T, config *cli.Config, st store.Store) *Processor {
	t.Helper()
	p, err := New(ctx, config, st, clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func writeWords(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewProcessor(t *testing.T) {
	config := testConfig(t)

	p, err := NewProcessor(ctx, config)
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.manager)
	assert.NotNil(t, p.history)
	assert.NotNil(t, p.closer)

	_, err = os.Stat(config.StoragePath)
	assert.NoError(t, err, "database file should exist")
}

func TestNewProcessor_InvalidConfig(t *testing.T) {
	config := testConfig(t)
	config.LogLevel = "loud"
	_, err := NewProcessor(ctx, config)
	assert.Error(t, err)

	config = testConfig(t)
	config.Picker.Mode = "carrier-pigeon"
	_, err = NewProcessor(ctx, config)
	assert.Error(t, err)
}

func TestNew_EnrichmentConfiguration(t *testing.T) {
	// A missing key only disables enrichment
	config := testConfig(t)
	config.Enrich.APIKey = ""
	p, err := New(ctx, config, store.NewMemoryStore(), clockwork.NewFakeClock(), nil)
	require.NoError(t, err)
	p.Close()

	// A misspelled provider is a configuration error
	config = testConfig(t)
	config.Enrich.Provider = "gemnii"
	config.Enrich.APIKey = "test-key"
	_, err = New(ctx, config, store.NewMemoryStore(), clockwork.NewFakeClock(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemnii")
}

func TestShow_FirstRunRotatesThenKeepsWord(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestProcessor(t, testConfig(t), st)

	var out bytes.Buffer
	require.NoError(t, p.Show(ctx, &out))
	require.True(t, st.Has(store.KeyDailyWord))

	var first entry.Entry
	require.NoError(t, st.Get(ctx, store.KeyDailyWord, &first))
	assert.True(t, strings.HasPrefix(out.String(), first.Word+" ("))
	assert.Contains(t, out.String(), "  1. ")

	out.Reset()
	require.NoError(t, p.Show(ctx, &out))
	assert.True(t, strings.HasPrefix(out.String(), first.Word+" ("))
}

func TestNext_ChangesWord(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestProcessor(t, testConfig(t), st)

	require.NoError(t, p.Show(ctx, &bytes.Buffer{}))
	var before entry.Entry
	require.NoError(t, st.Get(ctx, store.KeyDailyWord, &before))

	require.NoError(t, p.Next(ctx, &bytes.Buffer{}))
	var after entry.Entry
	require.NoError(t, st.Get(ctx, store.KeyDailyWord, &after))

	assert.NotEqual(t, before.Word, after.Word)
	assert.True(t, after.Complete())
}

func TestNext_BareWordWithoutProvider(t *testing.T) {
	config := testConfig(t)
	config.Picker.WordsFile = writeWords(t, "serendipity\n")
	st := store.NewMemoryStore()
	p := newTestProcessor(t, config, st)

	err := p.Next(ctx, &bytes.Buffer{})
	var rerr *rotation.RotationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, rotation.KindEnrichmentUnavailable, rerr.Kind)
	assert.False(t, st.Has(store.KeyDailyWord))
}

func TestNext_BareWordIsEnriched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		content := `{"translation":"щаслива випадковість","partOfSpeech":"noun","examples":["It was pure serendipity."]}`
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	defer srv.Close()

	config := testConfig(t)
	config.Picker.WordsFile = writeWords(t, "serendipity\n")
	config.Enrich.Provider = "openai"
	config.Enrich.APIKey = "test-key"
	config.Enrich.BaseURL = srv.URL
	p := newTestProcessor(t, config, store.NewMemoryStore())

	var out bytes.Buffer
	require.NoError(t, p.Next(ctx, &out))
	assert.Equal(t, "serendipity (noun)\n  щаслива випадковість\n\n  1. It was pure serendipity.\n", out.String())
}

func TestShow_StorageFailure(t *testing.T) {
	st := testutil.NewFailingStore()
	p := newTestProcessor(t, testConfig(t), st)
	st.FailOn("get", store.KeyDailyWord, errors.New("database is locked"))

	err := p.Show(ctx, &bytes.Buffer{})
	var rerr *rotation.RotationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, rotation.KindStorage, rerr.Kind)
}

func TestHistoryCommands(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestProcessor(t, testConfig(t), st)

	var out bytes.Buffer
	require.NoError(t, p.HistoryList(ctx, &out, 0, false))
	assert.Equal(t, "No saved words\n", out.String())

	// Save the current word, then a second one after rotating
	require.NoError(t, p.HistorySave(ctx, &bytes.Buffer{}))
	first := p.manager.State().Current.Word

	out.Reset()
	require.NoError(t, p.HistorySave(ctx, &out))
	assert.Contains(t, out.String(), "already saved")

	require.NoError(t, p.Next(ctx, &bytes.Buffer{}))
	second := p.manager.State().Current.Word
	require.NoError(t, p.HistoryToggle(ctx, &bytes.Buffer{}))

	out.Reset()
	require.NoError(t, p.HistoryList(ctx, &out, 0, true))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], second+"\t"))
	assert.True(t, strings.HasPrefix(lines[1], first+"\t"))

	out.Reset()
	require.NoError(t, p.HistoryList(ctx, &out, 1, false))
	assert.True(t, strings.HasPrefix(out.String(), second+"\t"))

	// Toggle again removes the current word
	out.Reset()
	require.NoError(t, p.HistoryToggle(ctx, &out))
	assert.Equal(t, "Removed \""+second+"\"\n", out.String())

	out.Reset()
	require.NoError(t, p.HistoryRemove(ctx, &out, "not-a-saved-word"))
	assert.Contains(t, out.String(), "is not saved")

	require.NoError(t, p.HistoryRemove(ctx, &bytes.Buffer{}, first))
	assert.Equal(t, 0, p.history.Len())

	require.NoError(t, p.HistorySave(ctx, &bytes.Buffer{}))
	out.Reset()
	require.NoError(t, p.HistoryClear(ctx, &out))
	assert.Equal(t, "Cleared 1 saved words\n", out.String())
	assert.False(t, st.Has(store.KeyHistory))
}

func TestHistoryExport(t *testing.T) {
	config := testConfig(t)
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyHistory, wordlist.Default()[:4]))
	p := newTestProcessor(t, config, st)

	var out bytes.Buffer
	require.NoError(t, p.HistoryExport(ctx, &out, "csv"))
	assert.Contains(t, out.String(), filepath.Join(config.ArchiveDir, "history-20240510-090000.csv"))

	data, err := os.ReadFile(filepath.Join(config.ArchiveDir, "history-20240510-090000.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 5)

	assert.Error(t, p.HistoryExport(ctx, &out, "xml"))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"}]}`))
	}))
	defer srv.Close()

	config := testConfig(t)
	config.Enrich.Provider = "openai"
	config.Enrich.APIKey = "test-key"
	config.Enrich.BaseURL = srv.URL
	p := newTestProcessor(t, config, store.NewMemoryStore())

	var out bytes.Buffer
	require.NoError(t, p.ListModels(ctx, &out))
	assert.Contains(t, out.String(), "gpt-4o-mini")

	p.config.Enrich.Provider = "gemini"
	assert.Error(t, p.ListModels(ctx, &out))
}

func TestDaemon_StopsWithContext(t *testing.T) {
	p := newTestProcessor(t, testConfig(t), store.NewMemoryStore())

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- p.Daemon(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

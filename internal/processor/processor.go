package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordofday/internal/archive"
	"codeberg.org/snonux/wordofday/internal/cli"
	"codeberg.org/snonux/wordofday/internal/enrich"
	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/gui"
	"codeberg.org/snonux/wordofday/internal/history"
	"codeberg.org/snonux/wordofday/internal/logging"
	"codeberg.org/snonux/wordofday/internal/models"
	"codeberg.org/snonux/wordofday/internal/picker"
	"codeberg.org/snonux/wordofday/internal/rotation"
	"codeberg.org/snonux/wordofday/internal/schedule"
	"codeberg.org/snonux/wordofday/internal/store"
)

// Processor implements cli.Runner on top of the configured components
type Processor struct {
	config  *cli.Config
	logger  *zap.Logger
	clock   clockwork.Clock
	store   store.Store
	closer  io.Closer
	manager *rotation.Manager
	history *history.History
}

var _ cli.Runner = (*Processor)(nil)

// NewProcessor opens the database and builds every component from config
func NewProcessor(ctx context.Context, config *cli.Config) (*Processor, error) {
	logger, err := logging.New(config.LogLevel, config.LogDevelopment)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(config.StoragePath)
	if err != nil {
		return nil, err
	}

	p, err := New(ctx, config, st, clockwork.NewRealClock(), logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	p.closer = st
	return p, nil
}

// New builds a processor on an existing store.
func New(ctx context.Context, config *cli.Config, st store.Store, c clockwork.Clock, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pick, err := picker.New(config.Picker)
	if err != nil {
		return nil, fmt.Errorf("failed to create word picker: %w", err)
	}

	// Without an API key only complete entries can be rotated in; bare
	// words fail with EnrichmentUnavailable.
	var enricher enrich.Provider
	provider, err := enrich.NewProvider(ctx, config.Enrich, logger)
	switch {
	case errors.Is(err, enrich.ErrMissingAPIKey):
		logger.Warn("Word enrichment disabled", zap.String("provider", config.Enrich.Provider), zap.Error(err))
	case err != nil:
		return nil, fmt.Errorf("failed to create enrichment provider: %w", err)
	default:
		enricher = provider
	}

	hist, err := history.Open(ctx, st, history.WithMax(config.HistoryMax), history.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Processor{
		config:  config,
		logger:  logger,
		clock:   c,
		store:   st,
		manager: rotation.NewManager(st, pick, enricher, logger),
		history: hist,
	}, nil
}

// Close releases the database and flushes the logger
func (p *Processor) Close() error {
	_ = p.logger.Sync()
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// Popup opens the popup and blocks until it is closed, ctx is cancelled or
// SIGINT or SIGTERM arrives
func (p *Processor) Popup(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := schedule.NewSession(p.manager, p.clock, p.logger)
	defer session.Close()

	app := gui.New(ctx, p.manager, p.history, session, p.logger)
	app.Run()
	return nil
}

// Daemon runs the persistent trigger until SIGINT or SIGTERM
func (p *Processor) Daemon(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return schedule.NewDaemon(p.manager, p.clock, p.logger).Run(ctx)
}

// Show prints the current word, rotating first if none is stored
func (p *Processor) Show(ctx context.Context, w io.Writer) error {
	e, _, err := p.manager.EnsureCurrent(ctx)
	if err != nil {
		return err
	}
	printEntry(w, e, p.history.IsSaved(e.Word))
	return nil
}

// Next replaces the current word and prints the new one
func (p *Processor) Next(ctx context.Context, w io.Writer) error {
	e, err := p.manager.Next(ctx)
	if err != nil {
		return err
	}
	printEntry(w, e, p.history.IsSaved(e.Word))
	return nil
}

// ListModels prints the chat models of the configured provider
func (p *Processor) ListModels(ctx context.Context, w io.Writer) error {
	baseURL := p.config.Enrich.BaseURL
	switch p.config.Enrich.Provider {
	case "gemini":
		return fmt.Errorf("model listing needs an OpenAI compatible provider, not %s", p.config.Enrich.Provider)
	case "openrouter", "":
		if baseURL == "" {
			baseURL = enrich.OpenRouterBaseURL
		}
	}
	return models.NewLister(p.config.Enrich.APIKey, baseURL).ListAvailableModels(ctx, w)
}

// HistoryList prints saved words
func (p *Processor) HistoryList(ctx context.Context, w io.Writer, limit int, newestFirst bool) error {
	entries := p.history.List(limit)
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved words")
		return nil
	}
	if newestFirst {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Word, e.Translation, e.PartOfSpeech)
	}
	return nil
}

// HistorySave saves the current word
func (p *Processor) HistorySave(ctx context.Context, w io.Writer) error {
	e, err := p.current(ctx)
	if err != nil {
		return err
	}

	added, err := p.history.Add(ctx, e)
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintf(w, "Saved %q\n", e.Word)
	} else {
		fmt.Fprintf(w, "%q is already saved\n", e.Word)
	}
	return nil
}

// HistoryRemove removes word from the history
func (p *Processor) HistoryRemove(ctx context.Context, w io.Writer, word string) error {
	removed, err := p.history.Remove(ctx, word)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(w, "Removed %q\n", word)
	} else {
		fmt.Fprintf(w, "%q is not saved\n", word)
	}
	return nil
}

// HistoryToggle saves the current word or removes it if already saved
func (p *Processor) HistoryToggle(ctx context.Context, w io.Writer) error {
	e, err := p.current(ctx)
	if err != nil {
		return err
	}

	saved, err := p.history.Toggle(ctx, e)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintf(w, "Saved %q\n", e.Word)
	} else {
		fmt.Fprintf(w, "Removed %q\n", e.Word)
	}
	return nil
}

// HistoryClear removes every saved word
func (p *Processor) HistoryClear(ctx context.Context, w io.Writer) error {
	n := p.history.Len()
	if err := p.history.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared %d saved words\n", n)
	return nil
}

// HistoryExport writes the history to the archive directory
func (p *Processor) HistoryExport(ctx context.Context, w io.Writer, format string) error {
	path, err := archive.ExportHistory(p.config.ArchiveDir, p.history.List(0), format, p.clock.Now())
	if err != nil {
		return err
	}
	p.logger.Info("Exported history", zap.String("path", path), zap.Int("entries", p.history.Len()))
	fmt.Fprintf(w, "History exported to: %s\n", path)
	return nil
}

func (p *Processor) current(ctx context.Context) (entry.Entry, error) {
	e, _, err := p.manager.EnsureCurrent(ctx)
	return e, err
}

func printEntry(w io.Writer, e entry.Entry, saved bool) {
	fmt.Fprintf(w, "%s (%s)\n", e.Word, e.PartOfSpeech)
	fmt.Fprintf(w, "  %s\n", e.Translation)
	if len(e.Examples) > 0 {
		fmt.Fprintln(w)
	}
	for i, ex := range e.Examples {
		fmt.Fprintf(w, "  %d. %s\n", i+1, ex)
	}
	if saved {
		fmt.Fprintln(w, "\n  [saved]")
	}
}

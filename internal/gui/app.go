// Package gui implements the word of the day popup with fyne. The popup
// shows the current word, lets the user skip it or save it to the history,
// and owns the transient midnight timer for as long as it is open.
package gui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordofday/internal"
	"codeberg.org/snonux/wordofday/internal/history"
	"codeberg.org/snonux/wordofday/internal/rotation"
	"codeberg.org/snonux/wordofday/internal/schedule"
)

// Application represents the popup
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// UI elements
	wordLabel        *widget.Label
	posLabel         *widget.Label
	translationLabel *widget.Label
	examplesBox      *fyne.Container
	errorLabel       *widget.Label
	historyBox       *fyne.Container

	// Action buttons
	nextButton     *ttwidget.Button
	saveButton     *ttwidget.Button
	retryButton    *ttwidget.Button
	showMoreButton *widget.Button
	clearButton    *ttwidget.Button

	// Collaborators
	manager *rotation.Manager
	history *history.History
	session *schedule.Session
	logger  *zap.Logger

	// State management
	showAll     bool
	unsubscribe func()

	// Background rotations
	ctx       context.Context
	cancel    context.CancelFunc
	stopWatch func() bool
	wg        sync.WaitGroup
	mu     sync.Mutex
	busy   bool
}

// New creates the popup. The session is started by Run and closed when
// the window closes. Cancelling ctx closes the window.
func New(ctx context.Context, manager *rotation.Manager, hist *history.History, session *schedule.Session, logger *zap.Logger) *Application {
	return newApplication(ctx, app.NewWithID("org.codeberg.snonux.wordofday"), manager, hist, session, logger)
}

func newApplication(parent context.Context, fyneApp fyne.App, manager *rotation.Manager, hist *history.History, session *schedule.Session, logger *zap.Logger) *Application {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)

	a := &Application{
		app:     fyneApp,
		manager: manager,
		history: hist,
		session: session,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	a.setupUI()

	a.unsubscribe = manager.Subscribe(func(state rotation.State) {
		fyne.Do(func() { a.render(state) })
	})
	a.stopWatch = context.AfterFunc(parent, func() {
		fyne.Do(a.window.Close)
	})

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("Word of the Day v%s", internal.Version))
	a.window.Resize(fyne.NewSize(420, 560))

	a.wordLabel = widget.NewLabelWithStyle("Loading...", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	a.posLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	a.translationLabel = widget.NewLabel("")
	a.translationLabel.Wrapping = fyne.TextWrapWord
	a.examplesBox = container.NewVBox()

	a.errorLabel = widget.NewLabel("")
	a.errorLabel.Wrapping = fyne.TextWrapWord
	a.errorLabel.Importance = widget.DangerImportance
	a.errorLabel.Hide()

	a.nextButton = ttwidget.NewButtonWithIcon("I know this word", theme.MediaSkipNextIcon(), a.onNext)
	a.saveButton = ttwidget.NewButtonWithIcon(saveLabel(false), theme.ContentAddIcon(), a.onToggleSave)
	a.retryButton = ttwidget.NewButtonWithIcon("Retry", theme.ViewRefreshIcon(), a.onRetry)
	a.retryButton.Hide()

	a.historyBox = container.NewVBox()
	a.showMoreButton = widget.NewButton("Show more", a.onToggleShowAll)
	a.showMoreButton.Hide()
	a.clearButton = ttwidget.NewButtonWithIcon("Clear history", theme.DeleteIcon(), a.onClearHistory)

	wordSection := container.NewVBox(
		a.wordLabel,
		a.posLabel,
		a.translationLabel,
		widget.NewSeparator(),
		a.examplesBox,
		a.errorLabel,
	)

	actions := container.NewHBox(a.nextButton, a.saveButton, layout.NewSpacer(), a.retryButton)

	historySection := container.NewVBox(
		widget.NewLabelWithStyle("History", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.historyBox,
		container.NewHBox(a.showMoreButton, layout.NewSpacer(), a.clearButton),
	)

	content := container.NewBorder(
		nil,
		historySection,
		nil, nil,
		container.NewVScroll(container.NewVBox(wordSection, actions)),
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	a.nextButton.SetToolTip("Skip to another word (n)")
	a.saveButton.SetToolTip("Save or remove the current word (s)")
	a.retryButton.SetToolTip("Try fetching a word again")
	a.clearButton.SetToolTip("Remove all saved words")

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyN:
			a.onNext()
		case fyne.KeyS:
			a.onToggleSave()
		case fyne.KeyEscape:
			a.window.Close()
		}
	})

	a.window.SetOnClosed(func() {
		a.stopWatch()
		a.session.Close()
		a.unsubscribe()
		a.cancel()
		a.wg.Wait()
	})

	a.refreshHistory()
}

// Run starts the session and blocks until the window is closed.
func (a *Application) Run() {
	a.goRotate(func(ctx context.Context) error {
		return a.session.Start(ctx)
	})
	a.window.ShowAndRun()
}

// goRotate runs fn off the UI goroutine. Results reach the UI through the
// manager's state subscription; only one rotation runs at a time.
func (a *Application) goRotate(fn func(ctx context.Context) error) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return
	}
	a.busy = true
	a.mu.Unlock()

	a.setBusy(true)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := fn(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Rotation from popup failed", zap.Error(err))
		}

		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
		fyne.Do(func() { a.setBusy(false) })
	}()
}

func (a *Application) setBusy(busy bool) {
	if busy {
		a.nextButton.Disable()
		a.retryButton.Disable()
		return
	}
	a.nextButton.Enable()
	a.retryButton.Enable()
}

func (a *Application) onNext() {
	a.goRotate(func(ctx context.Context) error {
		_, err := a.manager.Next(ctx)
		return err
	})
}

func (a *Application) onRetry() {
	a.goRotate(func(ctx context.Context) error {
		if a.manager.State().HasCurrent {
			_, err := a.manager.Next(ctx)
			return err
		}
		_, _, err := a.manager.EnsureCurrent(ctx)
		return err
	})
}

func (a *Application) onToggleSave() {
	state := a.manager.State()
	if !state.HasCurrent {
		return
	}

	saved, err := a.history.Toggle(a.ctx, state.Current)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to update history: %w", err), a.window)
	}
	a.updateSaveButton(saved)
	a.refreshHistory()
}

func (a *Application) onToggleShowAll() {
	a.showAll = !a.showAll
	a.refreshHistory()
}

func (a *Application) onClearHistory() {
	if a.history.Len() == 0 {
		return
	}
	dialog.ShowConfirm("Clear history", "Remove all saved words?", func(ok bool) {
		if !ok {
			return
		}
		if err := a.history.Clear(a.ctx); err != nil {
			dialog.ShowError(err, a.window)
		}
		a.showAll = false
		a.refreshHistory()
		if state := a.manager.State(); state.HasCurrent {
			a.updateSaveButton(a.history.IsSaved(state.Current.Word))
		}
	}, a.window)
}

// render must run on the UI goroutine.
func (a *Application) render(state rotation.State) {
	if state.HasCurrent {
		e := state.Current
		a.wordLabel.SetText(e.Word)
		a.posLabel.SetText(string(e.PartOfSpeech))
		a.translationLabel.SetText(e.Translation)

		a.examplesBox.RemoveAll()
		for _, line := range exampleLines(e.Examples) {
			l := widget.NewLabel(line)
			l.Wrapping = fyne.TextWrapWord
			a.examplesBox.Add(l)
		}
		a.updateSaveButton(a.history.IsSaved(e.Word))
	}

	if state.Failed() {
		a.errorLabel.SetText(errorMessage(state.Err))
		a.errorLabel.Show()
		a.retryButton.Show()
		if !state.HasCurrent {
			a.wordLabel.SetText("No word yet")
		}
		return
	}
	a.errorLabel.Hide()
	a.retryButton.Hide()
}

func (a *Application) updateSaveButton(saved bool) {
	a.saveButton.SetText(saveLabel(saved))
	if saved {
		a.saveButton.SetIcon(theme.ContentRemoveIcon())
	} else {
		a.saveButton.SetIcon(theme.ContentAddIcon())
	}
}

func (a *Application) refreshHistory() {
	entries := a.history.List(0)

	a.historyBox.RemoveAll()
	if len(entries) == 0 {
		a.historyBox.Add(widget.NewLabel("No saved words yet"))
	}
	for _, e := range visibleHistory(entries, a.showAll) {
		a.historyBox.Add(widget.NewLabel(e.String()))
	}

	if len(entries) > HistoryPreview {
		a.showMoreButton.SetText(showMoreLabel(a.showAll))
		a.showMoreButton.Show()
	} else {
		a.showMoreButton.Hide()
	}
}

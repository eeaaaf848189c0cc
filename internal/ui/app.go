package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
	"github.com/superplanehq/superplane-desktop/internal/logtail"
	"github.com/superplanehq/superplane-desktop/internal/prefs"
	"github.com/superplanehq/superplane-desktop/internal/state"
)

// Actions are the launcher operations the loading screen can trigger.
type Actions interface {
	Retry(ctx context.Context) error
	OpenWindow() error
}

// logSource selects what the log pane shows.
type logSource int

const (
	logSourceOutput logSource = iota
	logSourceDiagnostic
)

// Options configures the UI.
type Options struct {
	Context           context.Context
	Store             *state.Store
	Actions           Actions
	AppName           string
	DiagnosticLogPath string
	RefreshEvery      time.Duration
	ThemeName         string
	PrefsPath         string
	Prefs             prefs.Prefs
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	store        *state.Store
	actions      Actions
	appName      string
	diagPath     string
	prefsPath    string
	prefs        prefs.Prefs
	refreshEvery time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	logo     string
	showHelp bool
	spinner  spinner.Model

	// Data state
	snapshot state.Snapshot
	retrying bool
	notice   string

	// Log state
	logViewport viewport.Model
	logSource   logSource
	follow      bool
	diagLines   []string
	diagErr     error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = DefaultUIInterval
	}

	appName := opts.AppName
	if appName == "" {
		appName = "SuperPlane"
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:          ctx,
		store:        opts.Store,
		actions:      opts.Actions,
		appName:      appName,
		diagPath:     opts.DiagnosticLogPath,
		prefsPath:    prefsPath,
		prefs:        opts.Prefs,
		refreshEvery: refresh,
		theme:        GetTheme(themeName),
		keys:         DefaultKeyMap(),
		logo:         createLogo(strings.ToLower(appName)),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		follow:       true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.refreshEvery),
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		if m.logSource == logSourceOutput {
			m.updateLogViewport()
		}
		return m, nil

	case diagnosticMsg:
		m.diagLines = msg.lines
		m.diagErr = msg.err
		if m.logSource == logSourceDiagnostic {
			m.updateLogViewport()
		}
		return m, nil

	case retryDoneMsg:
		m.retrying = false
		m.notice = ""
		if errors.Is(msg.err, launcher.ErrRunInProgress) {
			m.notice = "A launch is already in progress."
		}
		return m, fetchSnapshotCmd(m.store)

	case openDoneMsg:
		if msg.err != nil {
			m.notice = "Could not open window: " + msg.err.Error()
		} else {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, m.prefs)
		}
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m.requestRetry()

	case key.Matches(msg, m.keys.OpenWindow):
		return m.requestOpen()

	case key.Matches(msg, m.keys.ToggleLogSource):
		if m.logSource == logSourceOutput {
			m.logSource = logSourceDiagnostic
			m.updateLogViewport()
			return m, readDiagnosticCmd(m.diagPath)
		}
		m.logSource = logSourceOutput
		m.updateLogViewport()
		return m, nil
	}

	return m.handleLogsKey(msg)
}

// requestRetry starts a retry unless one is already running or the current
// attempt has not finished.
func (m Model) requestRetry() (tea.Model, tea.Cmd) {
	if m.actions == nil {
		return m, nil
	}
	if m.retrying {
		m.notice = "Retry already running."
		return m, nil
	}
	if phase := m.snapshot.Phase; phase != launcher.PhaseIdle && !phase.Terminal() {
		m.notice = "A launch is already in progress."
		return m, nil
	}
	m.retrying = true
	m.notice = ""
	return m, retryCmd(m.ctx, m.actions)
}

func (m Model) requestOpen() (tea.Model, tea.Cmd) {
	if m.actions == nil {
		return m, nil
	}
	if m.snapshot.Phase != launcher.PhaseReady {
		m.notice = m.appName + " is not ready yet."
		return m, nil
	}
	return m, openCmd(m.actions)
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logSource == logSourceDiagnostic && m.follow {
		cmds = append(cmds, readDiagnosticCmd(m.diagPath))
	}
	cmds = append(cmds, tickCmd(m.refreshEvery))

	return m, tea.Batch(cmds...)
}

// renderMain renders the full screen.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderLogs())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type diagnosticMsg struct {
	lines []string
	err   error
}

type retryDoneMsg struct{ err error }

type openDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readDiagnosticCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, DiagnosticFetchLimit)
		return diagnosticMsg{lines: lines, err: err}
	}
}

// retryCmd runs the retry in the command goroutine; it returns once the new
// attempt reaches Ready or fails.
func retryCmd(ctx context.Context, actions Actions) tea.Cmd {
	return func() tea.Msg {
		return retryDoneMsg{err: actions.Retry(ctx)}
	}
}

func openCmd(actions Actions) tea.Cmd {
	return func() tea.Msg {
		return openDoneMsg{err: actions.OpenWindow()}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		// Cancelled from outside, e.g. the app window was closed.
		return nil
	}
	return err
}

package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
	"github.com/superplanehq/superplane-desktop/internal/state"
	"github.com/superplanehq/superplane-desktop/internal/window"
)

var errNotRunning = errors.New("application is not running")

// opener creates application windows; *window.Opener in production.
type opener interface {
	Open(url string) (window.Window, error)
}

// windowPresenter hands the ready application over to a window. Closing that
// window ends the launcher.
type windowPresenter struct {
	opener   opener
	store    *state.Store
	logger   zerolog.Logger
	onClosed func()

	mu  sync.Mutex
	win window.Window
	url string
}

func newWindowPresenter(o opener, store *state.Store, logger zerolog.Logger, onClosed func()) *windowPresenter {
	return &windowPresenter{opener: o, store: store, logger: logger, onClosed: onClosed}
}

// LoadApplication implements launcher.Presenter.
func (p *windowPresenter) LoadApplication(url string) {
	p.store.SetAppURL(url)
	if err := p.show(url); err != nil {
		p.logger.Error().Err(err).Str("url", url).Msg("show application")
		p.store.Log("Could not open window: " + err.Error())
	}
}

// OpenWindow reopens the application after the user closed a browser tab or
// the window failed to open.
func (p *windowPresenter) OpenWindow() error {
	p.mu.Lock()
	url := p.url
	p.mu.Unlock()
	if url == "" {
		return errNotRunning
	}
	return p.show(url)
}

func (p *windowPresenter) show(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url

	if p.win != nil {
		select {
		case <-p.win.Done():
		default:
			// Still open: navigate it so a restarted application is picked up.
			return p.win.Load(url)
		}
	}

	win, err := p.opener.Open(url)
	if err != nil {
		return err
	}
	p.win = win
	go p.watch(win)
	return nil
}

// watch reports a user-closed window. Windows replaced or closed through
// Close are ignored.
func (p *windowPresenter) watch(win window.Window) {
	<-win.Done()

	p.mu.Lock()
	current := p.win == win
	if current {
		p.win = nil
	}
	p.mu.Unlock()

	if current {
		p.logger.Info().Msg("application window closed")
		if p.onClosed != nil {
			p.onClosed()
		}
	}
}

// Close closes the window without triggering onClosed.
func (p *windowPresenter) Close() {
	p.mu.Lock()
	win := p.win
	p.win = nil
	p.mu.Unlock()
	if win != nil {
		_ = win.Close()
	}
}

var _ launcher.Presenter = (*windowPresenter)(nil)

// actions adapts the orchestrator and presenter to the loading screen.
type actions struct {
	orchestrator *launcher.Orchestrator
	presenter    *windowPresenter
	store        *state.Store
	retries      *inflight
}

// Retry clears the previous attempt's output and relaunches. It refuses to
// start once the launcher is shutting down.
func (a actions) Retry(ctx context.Context) error {
	if !a.retries.begin() {
		return context.Canceled
	}
	defer a.retries.done()

	if p := a.orchestrator.Phase(); p == launcher.PhaseIdle || p.Terminal() {
		a.store.ClearLogs()
	}
	return a.orchestrator.Retry(ctx)
}

func (a actions) OpenWindow() error {
	return a.presenter.OpenWindow()
}

// inflight counts running operations and lets shutdown wait for them.
type inflight struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (f *inflight) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.wg.Add(1)
	return true
}

func (f *inflight) done() {
	f.wg.Done()
}

// closeAndWait rejects new operations and waits for running ones to return.
func (f *inflight) closeAndWait() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

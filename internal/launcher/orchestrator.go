package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/superplanehq/superplane-desktop/internal/docker"
)

// Runtime probes the container runtime and acquires the application image.
type Runtime interface {
	Available(ctx context.Context) bool
	ImageExists(ctx context.Context) bool
	Pull(ctx context.Context, sink docker.LineSink) error
	PullBackground(ctx context.Context, sink docker.LineSink) <-chan error
}

// Container supervises the application container process.
type Container interface {
	RemoveOrphan(ctx context.Context)
	Start(ctx context.Context, sink docker.LineSink) error
	Stop(ctx context.Context)
	Running() bool
}

// Readiness waits until the application answers HTTP requests.
type Readiness interface {
	Wait(ctx context.Context) (int, error)
}

// Reporter receives progress for the loading screen. Implementations must be
// safe for concurrent use; container output arrives from its own goroutines.
type Reporter interface {
	Status(text string)
	Log(text string)
	Error(text string)
	Phase(p Phase)
}

// Presenter switches from the loading screen to the application view.
type Presenter interface {
	LoadApplication(url string)
}

// Options configure an Orchestrator.
type Options struct {
	Runtime     Runtime
	Container   Container
	Readiness   Readiness
	Reporter    Reporter
	Presenter   Presenter
	Logger      zerolog.Logger
	AppURL      string
	AppName     string
	RuntimeName string
	// AlwaysPull skips the local-image fast path and blocks on every pull.
	AlwaysPull bool
}

// cleanupTimeout bounds teardown that runs after the caller's context is gone.
const cleanupTimeout = 15 * time.Second

// Orchestrator sequences the launch phases for a single application instance.
type Orchestrator struct {
	opts Options

	mu       sync.Mutex
	phase    Phase
	inFlight bool
	attempt  string
	refresh  chan struct{} // closed when the background image refresh ends
}

// New builds an Orchestrator. Runtime, Container, Readiness and Reporter are
// required.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Runtime == nil:
		return nil, fmt.Errorf("orchestrator requires a runtime")
	case opts.Container == nil:
		return nil, fmt.Errorf("orchestrator requires a container supervisor")
	case opts.Readiness == nil:
		return nil, fmt.Errorf("orchestrator requires a readiness poller")
	case opts.Reporter == nil:
		return nil, fmt.Errorf("orchestrator requires a reporter")
	}
	if opts.AppName == "" {
		opts.AppName = "SuperPlane"
	}
	if opts.RuntimeName == "" {
		opts.RuntimeName = "Docker"
	}
	return &Orchestrator{opts: opts}, nil
}

// Phase returns the phase of the current or most recent attempt.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Attempt returns the ID of the current or most recent attempt.
func (o *Orchestrator) Attempt() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempt
}

// Run executes one full launch attempt. Phases run strictly in order and the
// first failure ends the attempt in PhaseFailed; the error is also reported
// to the loading screen. Run is not re-entrant.
func (o *Orchestrator) Run(ctx context.Context) error {
	attempt, ok := o.begin()
	if !ok {
		return ErrRunInProgress
	}
	defer o.end()
	return o.run(ctx, attempt)
}

func (o *Orchestrator) run(ctx context.Context, attempt string) error {
	logger := o.opts.Logger.With().Str("attempt", attempt).Logger()
	logger.Info().Msg("launch attempt started")

	err := o.sequence(ctx, attempt, logger)
	if err == nil {
		logger.Info().Msg("launch attempt ready")
		return nil
	}

	o.setPhase(PhaseFailed)
	logger.Error().Err(err).Msg("launch attempt failed")
	if o.opts.Container.Running() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		o.opts.Container.Stop(cleanupCtx)
		cancel()
	}
	if !errors.Is(err, ErrRuntimeUnavailable) {
		o.opts.Reporter.Log("Error: " + err.Error())
	}
	o.opts.Reporter.Error(userMessage(o.opts.RuntimeName, err))
	return err
}

func (o *Orchestrator) sequence(ctx context.Context, attempt string, logger zerolog.Logger) error {
	r := o.opts.Reporter

	o.setPhase(PhaseCheckingRuntime)
	r.Status(fmt.Sprintf("Checking %s…", o.opts.RuntimeName))
	if !o.opts.Runtime.Available(ctx) {
		return phaseError(PhaseCheckingRuntime, ErrRuntimeUnavailable)
	}

	o.opts.Container.RemoveOrphan(ctx)

	o.setPhase(PhasePulling)
	if !o.opts.AlwaysPull && o.opts.Runtime.ImageExists(ctx) {
		r.Log("Image found locally — starting immediately.")
		o.refreshImage(ctx, attempt, logger)
	} else {
		if err := o.awaitRefresh(ctx); err != nil {
			return phaseError(PhasePulling, err)
		}
		r.Status(fmt.Sprintf("Pulling %s image…", o.opts.RuntimeName))
		if err := o.opts.Runtime.Pull(ctx, r.Log); err != nil {
			return phaseError(PhasePulling, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return phaseError(PhasePulling, err)
	}

	o.setPhase(PhaseStarting)
	r.Status("Starting container…")
	if err := o.opts.Container.Start(ctx, r.Log); err != nil {
		return phaseError(PhaseStarting, err)
	}

	o.setPhase(PhaseWaitingReady)
	r.Status(fmt.Sprintf("Waiting for %s to be ready…", o.opts.AppName))
	code, err := o.opts.Readiness.Wait(ctx)
	if err != nil {
		return phaseError(PhaseWaitingReady, err)
	}
	r.Log(fmt.Sprintf("Got HTTP %d — app is ready.", code))

	o.setPhase(PhaseReady)
	r.Status(fmt.Sprintf("Launching %s…", o.opts.AppName))
	logger.Debug().Str("url", o.opts.AppURL).Msg("loading application view")
	if o.opts.Presenter != nil {
		o.opts.Presenter.LoadApplication(o.opts.AppURL)
	}
	return nil
}

// refreshImage pulls the image in the background unless an earlier refresh is
// still running. Lines it reports after a newer attempt began are dropped.
func (o *Orchestrator) refreshImage(ctx context.Context, attempt string, logger zerolog.Logger) {
	o.mu.Lock()
	if o.refresh != nil {
		o.mu.Unlock()
		logger.Debug().Msg("background image refresh still running")
		return
	}
	done := make(chan struct{})
	o.refresh = done
	o.mu.Unlock()

	sink := func(line string) {
		if o.Attempt() == attempt {
			o.opts.Reporter.Log(line)
		}
	}
	result := o.opts.Runtime.PullBackground(ctx, sink)
	go func() {
		if result != nil {
			for range result {
			}
		}
		o.mu.Lock()
		o.refresh = nil
		o.mu.Unlock()
		close(done)
	}()
}

// awaitRefresh blocks until a running background refresh ends, so a blocking
// pull never races it for the same image.
func (o *Orchestrator) awaitRefresh(ctx context.Context) error {
	o.mu.Lock()
	done := o.refresh
	o.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry stops any supervised container and starts a fresh attempt from the
// runtime check.
func (o *Orchestrator) Retry(ctx context.Context) error {
	attempt, ok := o.begin()
	if !ok {
		return ErrRunInProgress
	}
	defer o.end()

	o.opts.Logger.Info().Str("attempt", attempt).Msg("retry requested")
	o.opts.Container.Stop(ctx)
	return o.run(ctx, attempt)
}

// Shutdown stops any supervised container, waiting for a stop already in
// progress elsewhere. It is safe to call repeatedly.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	if o.opts.Container.Running() {
		o.opts.Logger.Info().Msg("stopping application container")
	}
	o.opts.Container.Stop(ctx)
}

func (o *Orchestrator) begin() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return "", false
	}
	o.inFlight = true
	o.attempt = uuid.NewString()
	return o.attempt, true
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
	o.opts.Reporter.Phase(p)
}

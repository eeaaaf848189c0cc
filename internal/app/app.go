package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/superplanehq/superplane-desktop/internal/config"
	"github.com/superplanehq/superplane-desktop/internal/docker"
	"github.com/superplanehq/superplane-desktop/internal/launcher"
	"github.com/superplanehq/superplane-desktop/internal/prefs"
	"github.com/superplanehq/superplane-desktop/internal/readiness"
	"github.com/superplanehq/superplane-desktop/internal/state"
	"github.com/superplanehq/superplane-desktop/internal/ui"
	"github.com/superplanehq/superplane-desktop/internal/window"
)

const (
	appName     = "SuperPlane"
	runtimeName = "Docker"

	// shutdownTimeout bounds stopping the container after the UI exits.
	shutdownTimeout = 20 * time.Second
)

// Options configure the launcher.
type Options struct {
	ConfigPath string // empty uses ~/.config/superplane-desktop/config.toml
	PrefsPath  string // empty uses ~/.config/superplane-desktop/prefs.toml
	LogLevel   string // zerolog level name; empty means info
}

// Run boots the application and shows the loading screen until the user
// quits, the application window is closed, or the context is cancelled. The
// container is stopped before Run returns.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	base, closer, err := newLogger(cfg.LogPath(), opts.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()
	logger := component(base, "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := state.NewStore(state.DefaultLogLimit)

	dockerOpts := docker.Options{
		Binary:         cfg.DockerBinary,
		Image:          cfg.Image,
		ContainerName:  cfg.ContainerName,
		Port:           cfg.Port,
		Volume:         cfg.Volume,
		CommandTimeout: cfg.CommandTimeout,
		GracePeriod:    cfg.GracePeriod,
	}
	cli := docker.NewCLI(dockerOpts, component(base, "docker"))
	supervisor := docker.NewSupervisor(dockerOpts, component(base, "docker"))

	probe, err := readiness.NewClient(cfg.HealthURL(), cfg.ProbeTimeout)
	if err != nil {
		return fmt.Errorf("init readiness client: %w", err)
	}
	poller := readiness.NewPoller(probe, cfg.PollInterval, cfg.PollTimeout, component(base, "readiness"))

	opener := window.NewOpener(window.Options{
		Mode:       userPrefs.Window,
		ProfileDir: filepath.Join(cfg.LogDir, "window"),
		Logger:     component(base, "window"),
	})
	logger.Info().
		Str("image", cfg.Image).
		Int("port", cfg.Port).
		Str("health_url", probe.URL()).
		Str("window", opener.Mode()).
		Msg("launcher starting")

	// Closing the application window quits the launcher.
	presenter := newWindowPresenter(opener, store, component(base, "window"), cancel)

	orchestrator, err := launcher.New(launcher.Options{
		Runtime:     cli,
		Container:   supervisor,
		Readiness:   poller,
		Reporter:    store,
		Presenter:   presenter,
		Logger:      component(base, "launcher"),
		AppURL:      cfg.Origin(),
		AppName:     appName,
		RuntimeName: runtimeName,
		AlwaysPull:  cfg.AlwaysPull,
	})
	if err != nil {
		return fmt.Errorf("init launcher: %w", err)
	}

	retries := &inflight{}
	StartHealthMonitor(ctx, store, probe, defaultHealthInterval, component(base, "health"))

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = orchestrator.Run(ctx)
	}()

	uiErr := ui.Run(ui.Options{
		Context:           ctx,
		Store:             store,
		Actions:           actions{orchestrator: orchestrator, presenter: presenter, store: store, retries: retries},
		AppName:           appName,
		DiagnosticLogPath: cfg.LogPath(),
		PrefsPath:         opts.PrefsPath,
		Prefs:             userPrefs,
	})

	cancel()
	<-runDone
	// A retry started from the loading screen may still hold the container.
	retries.closeAndWait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	orchestrator.Shutdown(shutdownCtx)
	presenter.Close()
	logger.Info().Msg("launcher stopped")

	if uiErr != nil {
		return fmt.Errorf("run loading screen: %w", uiErr)
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
	"github.com/superplanehq/superplane-desktop/internal/readiness"
	"github.com/superplanehq/superplane-desktop/internal/state"
)

const (
	defaultHealthInterval = 5 * time.Second
	maxBackoff            = 30 * time.Second
)

// StartHealthMonitor launches a background goroutine that keeps probing the
// application while the launcher reports it ready, so the loading screen can
// tell when a running instance stops answering. It returns immediately.
func StartHealthMonitor(ctx context.Context, store *state.Store, prober readiness.Prober, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			failures := checkHealth(ctx, store, prober, logger)
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// checkHealth probes once if the application is up and returns the number of
// consecutive failed probes.
func checkHealth(ctx context.Context, store *state.Store, prober readiness.Prober, logger zerolog.Logger) int {
	if store.Snapshot().Phase != launcher.PhaseReady {
		return 0
	}
	code, err := prober.Probe(ctx)
	if err == nil && !readiness.Healthy(code) {
		err = fmt.Errorf("unhealthy status %d", code)
	}
	if ctx.Err() != nil {
		return 0
	}
	store.RecordProbe(code, err)

	snap := store.Snapshot()
	if err != nil {
		logger.Debug().Err(err).Int("failures", snap.ConsecutiveFailures).Msg("health probe failed")
		if snap.ConsecutiveFailures == 2 {
			logger.Warn().Err(err).Msg("application stopped responding")
		}
	}
	return snap.ConsecutiveFailures
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 16 {
		return maxBackoff
	}
	backoff := base << failures
	if backoff > maxBackoff || backoff <= 0 {
		return maxBackoff
	}
	return backoff
}

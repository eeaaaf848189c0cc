package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPollInterval = 1500 * time.Millisecond
	defaultPollTimeout  = 120 * time.Second
)

// TimeoutError reports that no probe succeeded before the deadline.
type TimeoutError struct {
	Timeout  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("application not ready after %s (%d probes)", e.Timeout, e.Attempts)
}

// Poller repeatedly probes an endpoint until it answers with a healthy status
// or the timeout elapses.
type Poller struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPoller builds a Poller. Non-positive durations select the defaults.
func NewPoller(prober Prober, interval, timeout time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &Poller{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Wait blocks until a probe returns a 2xx or 3xx status, returning that
// status. Failed probes only schedule the next attempt; once more than the
// timeout has passed since Wait began it gives up with *TimeoutError.
func (p *Poller) Wait(ctx context.Context) (int, error) {
	start := p.now()
	attempts := 0

	timer := time.NewTimer(p.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		if p.now().Sub(start) > p.timeout {
			return 0, &TimeoutError{Timeout: p.timeout, Attempts: attempts}
		}

		attempts++
		code, err := p.prober.Probe(ctx)
		switch {
		case err == nil && Healthy(code):
			p.logger.Info().Int("status", code).Int("attempts", attempts).Msg("application ready")
			return code, nil
		case err != nil:
			p.logger.Debug().Err(err).Int("attempt", attempts).Msg("readiness probe failed")
		default:
			p.logger.Debug().Int("status", code).Int("attempt", attempts).Msg("readiness probe not healthy")
		}

		timer.Reset(p.interval)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}
}

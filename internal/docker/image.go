package docker

import (
	"context"
	"fmt"
	"os/exec"
)

// ImageExists reports whether the configured image is already present in the
// local image store.
func (c *CLI) ImageExists(ctx context.Context) bool {
	if err := runQuiet(ctx, c.opts, "image", "inspect", c.opts.Image); err != nil {
		c.logger.Debug().Err(err).Str("image", c.opts.Image).Msg("image not available locally")
		return false
	}
	return true
}

// Pull fetches the configured image and blocks until docker pull exits,
// streaming its progress to sink.
func (c *CLI) Pull(ctx context.Context, sink LineSink) error {
	args := []string{"pull", c.opts.Image}
	if sink != nil {
		sink("$ " + commandLine(c.opts.Binary, args))
	}

	cmd := exec.CommandContext(ctx, c.opts.Binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("docker pull stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("docker pull stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("run docker pull: %w", err)
	}

	streamOutput(stdout, stderr, sink, nil).Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &PullError{ExitCode: exitCode(cmd, err)}
	}
	c.logger.Info().Str("image", c.opts.Image).Msg("image pulled")
	return nil
}

// PullBackground refreshes the image without blocking the caller. Output is
// discarded; only a successful refresh is reported to sink. The returned
// channel yields the pull result once and is then closed.
func (c *CLI) PullBackground(ctx context.Context, sink LineSink) <-chan error {
	done := make(chan error, 1)
	if sink != nil {
		sink("Checking for image updates in the background…")
	}
	go func() {
		defer close(done)
		cmd := exec.CommandContext(ctx, c.opts.Binary, "pull", c.opts.Image)
		err := cmd.Run()
		switch {
		case err == nil:
			c.logger.Info().Str("image", c.opts.Image).Msg("background image refresh finished")
			if sink != nil {
				sink("Image updated — changes apply on next launch.")
			}
		case ctx.Err() != nil:
			err = ctx.Err()
		default:
			if code := exitCode(cmd, err); code >= 0 {
				err = &PullError{ExitCode: code}
			}
			c.logger.Warn().Err(err).Str("image", c.opts.Image).Msg("background image refresh failed")
		}
		done <- err
	}()
	return done
}

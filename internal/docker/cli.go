package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LineSink receives runtime output one line at a time. It may be called from
// several goroutines at once.
type LineSink func(line string)

// Options describe how to reach the container runtime and what to run on it.
type Options struct {
	Binary         string
	Image          string
	ContainerName  string
	Port           int
	Volume         string
	CommandTimeout time.Duration
	GracePeriod    time.Duration
}

const (
	defaultBinary         = "docker"
	defaultCommandTimeout = 10 * time.Second
	defaultGracePeriod    = 5 * time.Second
	dataMountPath         = "/app/data"
)

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Binary) == "" {
		o.Binary = defaultBinary
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = defaultCommandTimeout
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = defaultGracePeriod
	}
	return o
}

// CLI drives the docker command line for probing the runtime and acquiring
// the application image.
type CLI struct {
	opts   Options
	logger zerolog.Logger
}

// NewCLI builds a CLI for the given options.
func NewCLI(opts Options, logger zerolog.Logger) *CLI {
	return &CLI{opts: opts.withDefaults(), logger: logger}
}

// Available reports whether the runtime answers `docker info` within the
// command timeout.
func (c *CLI) Available(ctx context.Context) bool {
	if err := runQuiet(ctx, c.opts, "info"); err != nil {
		c.logger.Debug().Err(err).Msg("runtime probe failed")
		return false
	}
	return true
}

// PullError reports a docker pull that ran but exited unsuccessfully.
type PullError struct {
	ExitCode int
}

func (e *PullError) Error() string {
	return fmt.Sprintf("docker pull exited with code %d", e.ExitCode)
}

// StartError reports a container process that exited before it produced any
// output and before the grace period elapsed.
type StartError struct {
	ExitCode int
}

func (e *StartError) Error() string {
	return fmt.Sprintf("container exited with code %d before producing output", e.ExitCode)
}

// runQuiet executes a fire-and-wait command with its output discarded.
func runQuiet(ctx context.Context, opts Options, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, opts.CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opts.Binary, args...)
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", commandLine(opts.Binary, args), opts.CommandTimeout)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", commandLine(opts.Binary, args), err)
	}
	return nil
}

func commandLine(binary string, args []string) string {
	return strings.Join(append([]string{binary}, args...), " ")
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

func portMapping(port int) string {
	p := strconv.Itoa(port)
	return p + ":" + p
}

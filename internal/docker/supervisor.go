package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned by Start while a container handle is held.
var ErrAlreadyRunning = errors.New("container already running")

// Supervisor owns the single application container process.
type Supervisor struct {
	opts   Options
	logger zerolog.Logger

	mu       sync.Mutex
	proc     *process
	stopping *process
}

type process struct {
	cmd      *exec.Cmd
	output   chan struct{} // closed on the first byte of output
	exited   chan struct{} // closed after Wait returns
	stopped  chan struct{} // closed when Stop is done with it
	exitCode int
}

// NewSupervisor builds a Supervisor for the given options.
func NewSupervisor(opts Options, logger zerolog.Logger) *Supervisor {
	return &Supervisor{opts: opts.withDefaults(), logger: logger}
}

// RemoveOrphan force-removes a container left behind by an unclean shutdown.
// A missing container is not an error.
func (s *Supervisor) RemoveOrphan(ctx context.Context) {
	if err := runQuiet(ctx, s.opts, "rm", "-f", s.opts.ContainerName); err != nil {
		s.logger.Debug().Err(err).Str("container", s.opts.ContainerName).Msg("no orphan container removed")
	}
}

// Running reports whether a container handle is currently held.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

func (s *Supervisor) runArgs() []string {
	return []string{
		"run", "--rm",
		"--name", s.opts.ContainerName,
		"-p", portMapping(s.opts.Port),
		"-v", s.opts.Volume + ":" + dataMountPath,
		s.opts.Image,
	}
}

// Start launches the application container. It returns as soon as the process
// writes anything to stdout or stderr, or once the grace period passes in
// silence. A process that exits before either happens yields a *StartError.
// All output keeps flowing to sink for the lifetime of the container.
func (s *Supervisor) Start(ctx context.Context, sink LineSink) error {
	s.mu.Lock()
	if s.proc != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	args := s.runArgs()
	if sink != nil {
		sink("$ " + commandLine(s.opts.Binary, args))
	}

	// The container outlives this call, so it is not bound to ctx.
	cmd := exec.Command(s.opts.Binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("container stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("container stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("run container: %w", err)
	}

	p := &process{
		cmd:    cmd,
		output:  make(chan struct{}),
		exited:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	s.proc = p
	s.mu.Unlock()

	s.logger.Info().
		Str("container", s.opts.ContainerName).
		Int("pid", cmd.Process.Pid).
		Msg("container process started")

	streams := streamOutput(stdout, stderr, sink, func() { close(p.output) })
	go s.reap(p, streams)

	timer := time.NewTimer(s.opts.GracePeriod)
	defer timer.Stop()

	select {
	case <-p.output:
		return nil
	case <-timer.C:
		s.logger.Debug().Dur("grace", s.opts.GracePeriod).Msg("no container output within grace period")
		return nil
	case <-p.exited:
		select {
		case <-p.output:
			return nil
		default:
		}
		return &StartError{ExitCode: p.exitCode}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reap waits for the output streams to drain and the process to exit, then
// releases the handle if it is still the current one.
func (s *Supervisor) reap(p *process, streams *sync.WaitGroup) {
	streams.Wait()
	err := p.cmd.Wait()
	p.exitCode = exitCode(p.cmd, err)

	s.mu.Lock()
	if s.proc == p {
		s.proc = nil
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("container", s.opts.ContainerName).
		Int("exit_code", p.exitCode).
		Msg("container process exited")
	close(p.exited)
}

// Stop asks the runtime to stop the named container and waits for the
// supervised process to exit, killing it if it outlives the command timeout.
// A Stop that finds another Stop in progress waits for that one to finish.
// Stop is a no-op when nothing is running.
func (s *Supervisor) Stop(ctx context.Context) {
	s.mu.Lock()
	p := s.proc
	if p == nil {
		pending := s.stopping
		s.mu.Unlock()
		if pending != nil {
			select {
			case <-pending.exited:
			case <-pending.stopped:
			case <-ctx.Done():
			}
		}
		return
	}
	s.proc = nil
	s.stopping = p
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.stopping == p {
			s.stopping = nil
		}
		s.mu.Unlock()
		close(p.stopped)
	}()

	if err := runQuiet(ctx, s.opts, "stop", s.opts.ContainerName); err != nil {
		s.logger.Debug().Err(err).Str("container", s.opts.ContainerName).Msg("docker stop failed")
	}

	timer := time.NewTimer(s.opts.CommandTimeout)
	defer timer.Stop()
	select {
	case <-p.exited:
		return
	case <-timer.C:
	case <-ctx.Done():
	}

	s.logger.Warn().Str("container", s.opts.ContainerName).Msg("container process did not exit, killing it")
	_ = p.cmd.Process.Kill()
	select {
	case <-p.exited:
	case <-time.After(time.Second):
	}
}

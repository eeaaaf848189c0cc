package launcher

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeUnavailable means the container runtime did not answer the
	// diagnostic check.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable")

	// ErrRunInProgress is returned when Run or Retry is called while another
	// launch attempt is still in flight.
	ErrRunInProgress = errors.New("launch already in progress")
)

// PhaseError ties a terminal failure to the phase that produced it. Its
// message is the underlying error's so it can be shown to users verbatim.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return e.Err.Error()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func phaseError(p Phase, err error) error {
	if err == nil {
		return nil
	}
	return &PhaseError{Phase: p, Err: err}
}

// userMessage renders a terminal failure for the loading screen.
func userMessage(runtimeName string, err error) string {
	if errors.Is(err, ErrRuntimeUnavailable) {
		return fmt.Sprintf("%s is not running. Please start %s and retry.", runtimeName, runtimeName)
	}
	return "Failed: " + err.Error()
}

package launcher

// Phase describes how far the current launch attempt has progressed.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseCheckingRuntime
	PhasePulling
	PhaseStarting
	PhaseWaitingReady
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCheckingRuntime:
		return "checking runtime"
	case PhasePulling:
		return "pulling"
	case PhaseStarting:
		return "starting"
	case PhaseWaitingReady:
		return "waiting for ready"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a launch attempt.
func (p Phase) Terminal() bool {
	return p == PhaseReady || p == PhaseFailed
}

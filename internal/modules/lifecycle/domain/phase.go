package domain

// Phase is the process-wide session state.
type Phase int

const (
	PhaseCold Phase = iota
	PhaseRunning
	PhaseSuspended
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseCold:
		return "cold"
	case PhaseRunning:
		return "running"
	case PhaseSuspended:
		return "suspended"
	case PhaseTerminated:
		return "terminated"
	}
	return "unknown"
}

// CanTransition reports whether the session may move from p to next.
// Terminated is final.
func (p Phase) CanTransition(next Phase) bool {
	switch p {
	case PhaseCold:
		return next == PhaseRunning || next == PhaseTerminated
	case PhaseRunning:
		return next == PhaseSuspended || next == PhaseTerminated
	case PhaseSuspended:
		return next == PhaseRunning || next == PhaseTerminated
	}
	return false
}

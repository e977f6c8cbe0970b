package popout

import "fmt"

// Phase is the sync state of one window.
type Phase string

const (
	PhaseNotAPopout    Phase = "not_a_popout"
	PhaseAwaitingState Phase = "awaiting_state"
	PhaseSynced        Phase = "synced"
)

// Trigger moves a window between phases.
type Trigger string

const (
	PopoutDetected Trigger = "popout_detected"
	StateReceived  Trigger = "state_received"
)

// transitionTable defines all valid transitions.
// Key: current phase → trigger → next phase.
var transitionTable = map[Phase]map[Trigger]Phase{
	PhaseNotAPopout: {
		PopoutDetected: PhaseAwaitingState,
	},
	PhaseAwaitingState: {
		StateReceived: PhaseSynced,
	},
	PhaseSynced: {
		StateReceived: PhaseSynced,
	},
}

// ApplyTransition returns the phase reached from current on trigger, or an
// error when the table has no such transition.
func ApplyTransition(current Phase, trigger Trigger) (Phase, error) {
	triggers, ok := transitionTable[current]
	if !ok {
		return "", fmt.Errorf("no transitions defined for phase %q", current)
	}
	next, ok := triggers[trigger]
	if !ok {
		return "", fmt.Errorf("invalid transition: %q + %q", current, trigger)
	}
	return next, nil
}

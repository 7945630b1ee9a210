package tween

// State is the lifecycle state of a Tween.
//
// Configuration advances strictly IDLE -> CONSTRUCTED -> WAITING -> READY ->
// RUNNING. A running tween ends FINISHED on completion, CANCELLED after
// Cancel, or ERROR when its update callback fails. INVALID is entered when
// configuration input fails validation.
type State int

const (
	// StateIdle: constructed with valid initial values, awaiting SetTarget.
	StateIdle State = iota + 1
	// StateConstructed: target and duration set, awaiting SetEasing.
	StateConstructed
	// StateWaiting: easing chosen and steps computed, awaiting OnUpdate.
	StateWaiting
	// StateReady: callback registered, awaiting Start.
	StateReady
	// StateRunning: ticking.
	StateRunning
	// StateFinished: final target values delivered, completion callback run.
	StateFinished
	// StateCancelled: stopped by Cancel or context cancellation before finishing.
	StateCancelled
	// StateInvalid: configuration input failed validation.
	StateInvalid
	// StateError: the update callback failed during a tick.
	StateError
)

var stateNames = map[State]string{
	StateIdle:        "IDLE",
	StateConstructed: "CONSTRUCTED",
	StateWaiting:     "WAITING",
	StateReady:       "READY",
	StateRunning:     "RUNNING",
	StateFinished:    "FINISHED",
	StateCancelled:   "CANCELLED",
	StateInvalid:     "INVALID",
	StateError:       "ERROR",
}

// String returns the upper-case state name, or "UNKNOWN".
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseState is the inverse of String.
func ParseState(name string) (State, bool) {
	for s, n := range stateNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Terminal reports whether no further transition can leave s.
// CANCELLED is final for the instance but is not a terminal outcome: the
// tween was stopped, not completed or failed.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateInvalid || s == StateError
}

// Stopped reports whether the tween will deliver no further updates.
func (s State) Stopped() bool {
	return s.Terminal() || s == StateCancelled
}

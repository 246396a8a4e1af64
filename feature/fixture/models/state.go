package models

// FixtureState is the lifecycle state of a match.
type FixtureState string

const (
	StateNotStarted  FixtureState = "NOT_STARTED"
	StateFirstHalf   FixtureState = "FIRST_HALF"
	StateHalfTime    FixtureState = "HALF_TIME"
	StateSecondHalf  FixtureState = "SECOND_HALF"
	StateExtraTime   FixtureState = "EXTRA_TIME"
	StatePenalties   FixtureState = "PENALTIES"
	StateFinished    FixtureState = "FINISHED"
	StateFinishedAET FixtureState = "FINISHED_AET"
	StateFinishedPen FixtureState = "FINISHED_PEN"
	StateCancelled   FixtureState = "CANCELLED"
	StateInterrupted FixtureState = "INTERRUPTED"
)

// stateRank orders states along the natural match lifecycle. The finished
// variants share a rank: a match ends exactly once. CANCELLED ranks above
// them so it stays reachable from any non-terminal state.
var stateRank = map[FixtureState]int{
	StateNotStarted:  0,
	StateFirstHalf:   1,
	StateHalfTime:    2,
	StateSecondHalf:  3,
	StateExtraTime:   4,
	StatePenalties:   5,
	StateFinished:    6,
	StateFinishedAET: 6,
	StateFinishedPen: 6,
	StateCancelled:   7,
	StateInterrupted: 1,
}

// ParseState validates a provider state code.
func ParseState(s string) (FixtureState, bool) {
	state := FixtureState(s)
	_, ok := stateRank[state]
	return state, ok
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s FixtureState) IsTerminal() bool {
	switch s {
	case StateFinished, StateFinishedAET, StateFinishedPen, StateCancelled:
		return true
	default:
		return false
	}
}

// IsLive reports whether the match is currently being played.
func (s FixtureState) IsLive() bool {
	switch s {
	case StateFirstHalf, StateHalfTime, StateSecondHalf, StateExtraTime, StatePenalties:
		return true
	default:
		return false
	}
}

// ValidTransition decides whether moving a fixture from current to proposed
// is legal. Only forward-moving or same-state transitions are allowed; a
// fixture never moves backward in its lifecycle. Interruptions are reachable
// from any non-terminal state and can resume anywhere except NOT_STARTED.
func ValidTransition(current, proposed FixtureState) bool {
	if current == proposed {
		return true
	}
	if current.IsTerminal() {
		return false
	}
	if proposed == StateInterrupted {
		return true
	}
	if current == StateInterrupted {
		return proposed != StateNotStarted
	}
	return stateRank[proposed] > stateRank[current]
}

package smartcube

// Phase is the CFOP solving phase of the cube. Phases progress from
// Scrambled to Solved, allowing comparison with < and >.
type Phase int

const (
	// PhaseScrambled means no cross has been found yet.
	PhaseScrambled Phase = iota

	// PhaseCrossSolved means a cross is complete on some face.
	PhaseCrossSolved

	// PhaseF2LProgress means at least one F2L slot has been filled.
	PhaseF2LProgress

	// PhaseOLL means all four slots are done and the last layer is being
	// oriented.
	PhaseOLL

	// PhasePLL means the last layer is oriented and being permuted.
	PhasePLL

	// PhaseSolved means the cube is solved.
	PhaseSolved
)

// String returns a short identifier for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseScrambled:
		return "scrambled"
	case PhaseCrossSolved:
		return "cross_solved"
	case PhaseF2LProgress:
		return "f2l_progress"
	case PhaseOLL:
		return "oll"
	case PhasePLL:
		return "pll"
	case PhaseSolved:
		return "solved"
	default:
		return "unknown"
	}
}

// DisplayName returns a human-readable name for the phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseScrambled:
		return "Scrambled"
	case PhaseCrossSolved:
		return "Cross"
	case PhaseF2LProgress:
		return "F2L"
	case PhaseOLL:
		return "OLL"
	case PhasePLL:
		return "PLL"
	case PhaseSolved:
		return "Solved"
	default:
		return "Unknown"
	}
}

// EventKind identifies a phase event.
type EventKind int

const (
	EventCrossSolved EventKind = iota
	EventF2LProgress
	EventF2LComplete
	EventOLL
	EventSolved
)

// String returns the event's wire name.
func (k EventKind) String() string {
	switch k {
	case EventCrossSolved:
		return "CROSS_SOLVED"
	case EventF2LProgress:
		return "F2L_PROGRESS"
	case EventF2LComplete:
		return "F2L_COMPLETE"
	case EventOLL:
		return "OLL"
	case EventSolved:
		return "SOLVED"
	default:
		return "UNKNOWN"
	}
}

// Event is emitted by the Tracker on a phase transition.
type Event struct {
	Kind EventKind
	// Face is the cross face (EventCrossSolved).
	Face Face
	// Count and Slots describe cumulative F2L progress (EventF2LProgress).
	Count int
	Slots uint8
}

// Observer receives phase events.
type Observer func(Event)

package smartcube

import "context"

// Scramble is a scramble to be applied to a solved cube. Index identifies
// the algorithm case it was built from, or is -1 for random-state
// scrambles.
type Scramble struct {
	Moves []Move
	Index int
}

// String returns the scramble in notation.
func (s Scramble) String() string {
	return FormatMoves(s.Moves)
}

// ScrambleSource produces scrambles. Implementations may block, e.g. to
// load case data, and must honour ctx.
type ScrambleSource interface {
	Next(ctx context.Context) (Scramble, error)
}

// ScrambleSourceFunc adapts a function to ScrambleSource.
type ScrambleSourceFunc func(ctx context.Context) (Scramble, error)

// Next calls f.
func (f ScrambleSourceFunc) Next(ctx context.Context) (Scramble, error) {
	return f(ctx)
}

// FixedScramble returns a source that always yields moves.
func FixedScramble(moves []Move) ScrambleSource {
	return ScrambleSourceFunc(func(ctx context.Context) (Scramble, error) {
		if err := ctx.Err(); err != nil {
			return Scramble{}, err
		}
		return Scramble{Moves: append([]Move(nil), moves...), Index: -1}, nil
	})
}

// Mode is a training mode. It decides which phase events are timed as
// splits and which one ends the solve.
type Mode interface {
	Name() string
	// ExpectedCheckpoints is the maximum number of splits in one solve.
	ExpectedCheckpoints() int
	// CrossFace is the face the cross must be built on, if fixed.
	CrossFace() (Face, bool)
	GenerateScramble(ctx context.Context) (Scramble, error)
	// HandleEvent reports whether e records a split and whether it
	// finishes the solve.
	HandleEvent(e Event) (checkpoint, finished bool)
}

// CFOPMode times a full solve with a split at every phase.
type CFOPMode struct {
	Source ScrambleSource
}

// NewCFOPMode creates a full-solve mode.
func NewCFOPMode(src ScrambleSource) *CFOPMode {
	return &CFOPMode{Source: src}
}

func (m *CFOPMode) Name() string { return "cfop" }

// ExpectedCheckpoints covers cross, four slots, OLL and the finish.
func (m *CFOPMode) ExpectedCheckpoints() int { return 7 }

func (m *CFOPMode) CrossFace() (Face, bool) { return "", false }

func (m *CFOPMode) GenerateScramble(ctx context.Context) (Scramble, error) {
	return m.Source.Next(ctx)
}

func (m *CFOPMode) HandleEvent(e Event) (checkpoint, finished bool) {
	switch e.Kind {
	case EventCrossSolved, EventF2LProgress, EventOLL:
		return true, false
	case EventSolved:
		return true, true
	default:
		return false, false
	}
}

// F2LMode practises first-two-layers cases from a finished cross on D.
type F2LMode struct {
	Source ScrambleSource
}

// NewF2LMode creates an F2L practice mode.
func NewF2LMode(src ScrambleSource) *F2LMode {
	return &F2LMode{Source: src}
}

func (m *F2LMode) Name() string { return "f2l" }

func (m *F2LMode) ExpectedCheckpoints() int { return 1 }

func (m *F2LMode) CrossFace() (Face, bool) { return FaceD, true }

func (m *F2LMode) GenerateScramble(ctx context.Context) (Scramble, error) {
	return m.Source.Next(ctx)
}

func (m *F2LMode) HandleEvent(e Event) (checkpoint, finished bool) {
	if e.Kind == EventF2LComplete || e.Kind == EventSolved {
		return true, true
	}
	return false, false
}

// OLLMode practises last-layer orientation cases.
type OLLMode struct {
	Source ScrambleSource
}

// NewOLLMode creates an OLL practice mode.
func NewOLLMode(src ScrambleSource) *OLLMode {
	return &OLLMode{Source: src}
}

func (m *OLLMode) Name() string { return "oll" }

func (m *OLLMode) ExpectedCheckpoints() int { return 1 }

func (m *OLLMode) CrossFace() (Face, bool) { return FaceD, true }

func (m *OLLMode) GenerateScramble(ctx context.Context) (Scramble, error) {
	return m.Source.Next(ctx)
}

func (m *OLLMode) HandleEvent(e Event) (checkpoint, finished bool) {
	if e.Kind == EventOLL || e.Kind == EventSolved {
		return true, true
	}
	return false, false
}

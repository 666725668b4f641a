package smartcube

// ScrambleVerifier checks the solver's turns against a target scramble.
// A wrong turn is never an error: the remaining target is rewritten so that
// following it from the cube's actual state still reaches the intended
// scrambled state.
//
// A ScrambleVerifier is not safe for concurrent use.
type ScrambleVerifier struct {
	target  []Move
	cursor  int
	pending *Move // first quarter of a half-turn target
}

// NewScrambleVerifier creates a verifier for target.
func NewScrambleVerifier(target []Move) *ScrambleVerifier {
	v := &ScrambleVerifier{}
	v.SetTarget(target)
	return v
}

// SetTarget replaces the target and rewinds to its start.
func (v *ScrambleVerifier) SetTarget(target []Move) {
	v.target = append([]Move(nil), target...)
	v.cursor = 0
	v.pending = nil
}

// Reset clears the target.
func (v *ScrambleVerifier) Reset() {
	v.SetTarget(nil)
}

// CheckMove checks one turn. When wrong is true, correction is the turn
// that undoes the mistake.
//
// A half-turn target also accepts either quarter turn of its face as a
// first half; the next turn must then repeat that quarter.
func (v *ScrambleVerifier) CheckMove(m Move) (correction Move, wrong bool) {
	if v.pending != nil {
		pending := *v.pending
		v.pending = nil
		if m == pending {
			v.cursor++
			return Move{}, false
		}
		return pending.Inverse(), true
	}

	if v.cursor >= len(v.target) {
		return m.Inverse(), true
	}

	expected := v.target[v.cursor]
	switch {
	case m == expected:
		v.cursor++
		return Move{}, false
	case expected.IsHalf() && m.Face == expected.Face:
		v.pending = &m
		return Move{}, false
	default:
		return m.Inverse(), true
	}
}

// ProcessMoves feeds a batch of turns and returns how many of them belong
// to the scramble. Turns after the one that completes the target are left
// unconsumed for the caller.
//
// On the first wrong turn the rest of the batch is treated as already
// applied to the cube, and the target is rewritten as: undo the batch from
// the mistake onwards, undo any pending half, then the unconsumed target,
// simplified. The whole batch is then consumed.
func (v *ScrambleVerifier) ProcessMoves(moves []Move) (rewritten bool, consumed int) {
	for i, m := range moves {
		pending := v.pending
		if _, wrong := v.CheckMove(m); !wrong {
			if v.IsComplete() {
				return false, i + 1
			}
			continue
		}

		correction := InvertMoves(moves[i:])
		if pending != nil {
			correction = append(correction, pending.Inverse())
		}
		target := append(correction, v.target[v.cursor:]...)

		v.target = Simplify(target)
		v.cursor = 0
		v.pending = nil
		return true, len(moves)
	}
	return false, len(moves)
}

// IsComplete reports whether every target turn has been made.
func (v *ScrambleVerifier) IsComplete() bool {
	return v.cursor >= len(v.target) && v.pending == nil
}

// Target returns a copy of the current (possibly rewritten) target.
func (v *ScrambleVerifier) Target() []Move {
	return append([]Move(nil), v.target...)
}

// Cursor returns the index of the next expected target turn.
func (v *ScrambleVerifier) Cursor() int {
	return v.cursor
}

// Pending returns the first quarter of a half turn in progress.
func (v *ScrambleVerifier) Pending() (Move, bool) {
	if v.pending == nil {
		return Move{}, false
	}
	return *v.pending, true
}

// Remaining returns the target turns still to be made.
func (v *ScrambleVerifier) Remaining() []Move {
	if v.cursor >= len(v.target) {
		return nil
	}
	return append([]Move(nil), v.target[v.cursor:]...)
}

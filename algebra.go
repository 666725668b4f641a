package smartcube

// CancelPair combines two consecutive moves. ok is false when the pair does
// not simplify. An empty, non-nil result means the pair cancels out.
//
// Rules, first match wins:
//   - different faces do not simplify
//   - a move followed by its inverse cancels
//   - two half turns do not simplify (unreachable, R2 is its own inverse)
//   - a half turn and a quarter turn give the quarter turn's inverse
//   - two identical quarter turns give a half turn
func CancelPair(a, b Move) ([]Move, bool) {
	if a.Face != b.Face {
		return nil, false
	}
	if a == b.Inverse() {
		return []Move{}, true
	}
	if a.IsHalf() && b.IsHalf() {
		return nil, false
	}
	if a.IsHalf() {
		return []Move{b.Inverse()}, true
	}
	if b.IsHalf() {
		return []Move{a.Inverse()}, true
	}
	if a == b {
		return []Move{{Face: a.Face, Turn: Double}}, true
	}
	return nil, false
}

// Simplify makes a single left-to-right pass, collapsing each new move with
// the top of the stack once. Moves on opposite faces do not commute past each
// other, so R L R' is left as is.
func Simplify(moves []Move) []Move {
	stack := make([]Move, 0, len(moves))
	for _, m := range moves {
		stack = append(stack, m)
		if len(stack) < 2 {
			continue
		}

		n := len(stack)
		merged, ok := CancelPair(stack[n-2], stack[n-1])
		if !ok {
			continue
		}
		stack = append(stack[:n-2], merged...)
	}
	return stack
}

package smartcube

import (
	"strings"
)

// Face represents a cube face in standard notation.
type Face string

const (
	FaceU Face = "U" // Up
	FaceR Face = "R" // Right
	FaceF Face = "F" // Front
	FaceD Face = "D" // Down
	FaceL Face = "L" // Left
	FaceB Face = "B" // Back
)

// Faces lists the faces in facelet-string block order.
var Faces = [6]Face{FaceU, FaceR, FaceF, FaceD, FaceL, FaceB}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	switch f {
	case FaceU, FaceR, FaceF, FaceD, FaceL, FaceB:
		return true
	}
	return false
}

// Turn represents the direction and magnitude of a face turn.
type Turn int

const (
	CW     Turn = 1  // Clockwise (90 degrees)
	CCW    Turn = -1 // Counter-clockwise (90 degrees)
	Double Turn = 2  // Half turn (180 degrees)
)

// Move is a single face turn. Moves are plain values and compare with ==.
type Move struct {
	Face Face
	Turn Turn
}

// Notation returns the standard cube notation string for this move.
// Examples: R, R', R2
func (m Move) Notation() string {
	suffix := ""
	switch m.Turn {
	case CCW:
		suffix = "'"
	case Double:
		suffix = "2"
	}
	return string(m.Face) + suffix
}

// String returns the notation string (alias for Notation).
func (m Move) String() string {
	return m.Notation()
}

// Inverse returns the inverse of this move.
// R becomes R', R' becomes R, R2 stays R2.
func (m Move) Inverse() Move {
	inv := m
	switch m.Turn {
	case CW:
		inv.Turn = CCW
	case CCW:
		inv.Turn = CW
	}
	return inv
}

// IsHalf reports whether the move is a half turn.
func (m Move) IsHalf() bool {
	return m.Turn == Double
}

// QuarterTurns returns the clockwise quarter-turn count (1, 2 or 3).
func (m Move) QuarterTurns() int {
	switch m.Turn {
	case CCW:
		return 3
	case Double:
		return 2
	default:
		return 1
	}
}

// TimedMove is a move stamped with the cube's own clock.
type TimedMove struct {
	Move
	Timestamp uint32 // device milliseconds
}

// ParseMove parses a standard notation string into a Move.
// Examples: R, R', R2
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return Move{}, ErrInvalidNotation
	}

	face := Face(strings.ToUpper(s[:1]))
	if !face.Valid() {
		return Move{}, ErrInvalidNotation
	}

	turn := CW
	if len(s) > 1 {
		switch s[1:] {
		case "'", "`":
			turn = CCW
		case "2", "2'", "2`":
			turn = Double
		default:
			return Move{}, ErrInvalidNotation
		}
	}

	return Move{Face: face, Turn: turn}, nil
}

// ParseMoves parses a space-separated sequence of moves.
// Example: "R U R' U'"
// The first invalid token fails the whole sequence.
func ParseMoves(s string) ([]Move, error) {
	parts := strings.Fields(s)
	moves := make([]Move, 0, len(parts))

	for _, part := range parts {
		move, err := ParseMove(part)
		if err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}

	return moves, nil
}

// MustParseMoves is like ParseMoves but panics on invalid notation.
// It is intended for package-level algorithm tables.
func MustParseMoves(s string) []Move {
	moves, err := ParseMoves(s)
	if err != nil {
		panic("smartcube: bad algorithm " + s)
	}
	return moves
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}

	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}

	return strings.Join(parts, " ")
}

// InvertMoves returns the inverse sequence: each move inverted, in reverse
// order.
func InvertMoves(moves []Move) []Move {
	out := make([]Move, len(moves))
	for i, m := range moves {
		out[len(moves)-1-i] = m.Inverse()
	}
	return out
}

package scramble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SeamusWaldron/smartcube"
)

// ErrUnsupported is returned for slice and wide turns, which the cube
// cannot report as single face turns.
var ErrUnsupported = errors.New("scramble: unsupported turn")

// rotationSources gives, for one clockwise quarter of each whole-cube
// rotation, the face that ends up in each position.
var rotationSources = map[byte]map[smartcube.Face]smartcube.Face{
	'x': {
		smartcube.FaceU: smartcube.FaceF, smartcube.FaceF: smartcube.FaceD,
		smartcube.FaceD: smartcube.FaceB, smartcube.FaceB: smartcube.FaceU,
		smartcube.FaceR: smartcube.FaceR, smartcube.FaceL: smartcube.FaceL,
	},
	'y': {
		smartcube.FaceF: smartcube.FaceR, smartcube.FaceR: smartcube.FaceB,
		smartcube.FaceB: smartcube.FaceL, smartcube.FaceL: smartcube.FaceF,
		smartcube.FaceU: smartcube.FaceU, smartcube.FaceD: smartcube.FaceD,
	},
	'z': {
		smartcube.FaceU: smartcube.FaceL, smartcube.FaceL: smartcube.FaceD,
		smartcube.FaceD: smartcube.FaceR, smartcube.FaceR: smartcube.FaceU,
		smartcube.FaceF: smartcube.FaceF, smartcube.FaceB: smartcube.FaceB,
	},
}

// Token is one parsed turn or rotation of an algorithm.
type Token struct {
	Letter byte
	Wide   bool
	// Quarters is 1, 2 or 3 clockwise quarter turns.
	Quarters int
}

// IsRotation reports whether t is a whole-cube rotation.
func (t Token) IsRotation() bool {
	return t.Letter == 'x' || t.Letter == 'y' || t.Letter == 'z'
}

func (t Token) String() string {
	var b strings.Builder
	b.WriteByte(t.Letter)
	if t.Wide {
		b.WriteByte('w')
	}
	switch t.Quarters {
	case 2:
		b.WriteByte('2')
	case 3:
		b.WriteByte('\'')
	}
	return b.String()
}

const turnLetters = "URFDLBMSEurfdlbxyz"

// Tokenize splits algorithm text into tokens. Brackets and missing spaces
// ("U2L", "yU'") are tolerated; a modifier list like "2'" or "'2" is a half
// turn.
func Tokenize(alg string) ([]Token, error) {
	var out []Token
	for i := 0; i < len(alg); {
		c := alg[i]
		switch {
		case c == ' ' || c == '\t' || c == '(' || c == ')' || c == '[' || c == ']':
			i++
			continue
		case strings.IndexByte(turnLetters, c) < 0:
			return nil, fmt.Errorf("%w: %q at %d", smartcube.ErrInvalidNotation, c, i)
		}

		tok := Token{Letter: c, Quarters: 1}
		i++
		if i < len(alg) && alg[i] == 'w' {
			tok.Wide = true
			i++
		}
		half, prime := false, false
		for i < len(alg) && (alg[i] == '2' || alg[i] == '\'') {
			if alg[i] == '2' {
				half = true
			} else {
				prime = !prime
			}
			i++
		}
		switch {
		case half:
			tok.Quarters = 2
		case prime:
			tok.Quarters = 3
		}
		out = append(out, tok)
	}
	return out, nil
}

// Supported reports whether every turn of alg is a face turn or a
// whole-cube rotation.
func Supported(alg string) bool {
	_, err := Normalize(alg)
	return err == nil
}

// Normalize parses alg and folds its rotations away, returning the face
// turns as they would be made on a cube held in the starting orientation.
func Normalize(alg string) ([]smartcube.Move, error) {
	tokens, err := Tokenize(alg)
	if err != nil {
		return nil, err
	}

	frame := map[smartcube.Face]smartcube.Face{}
	for _, f := range smartcube.Faces {
		frame[f] = f
	}

	var moves []smartcube.Move
	for _, tok := range tokens {
		if tok.IsRotation() {
			src := rotationSources[tok.Letter]
			for q := 0; q < tok.Quarters; q++ {
				next := make(map[smartcube.Face]smartcube.Face, len(frame))
				for pos, from := range src {
					next[pos] = frame[from]
				}
				frame = next
			}
			continue
		}

		face := smartcube.Face(string(rune(tok.Letter)))
		if tok.Wide || !face.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, tok)
		}
		moves = append(moves, smartcube.Move{Face: frame[face], Turn: quartersToTurn(tok.Quarters)})
	}
	return moves, nil
}

func quartersToTurn(q int) smartcube.Turn {
	switch q {
	case 2:
		return smartcube.Double
	case 3:
		return smartcube.CCW
	default:
		return smartcube.CW
	}
}

// ScrambleFor builds the scramble that sets up the case alg solves: the
// inverse of the normalised, simplified algorithm.
func ScrambleFor(alg string) ([]smartcube.Move, error) {
	moves, err := Normalize(alg)
	if err != nil {
		return nil, err
	}
	return smartcube.InvertMoves(smartcube.Simplify(moves)), nil
}

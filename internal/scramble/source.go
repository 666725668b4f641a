// Package scramble generates training scrambles: random-move scrambles
// for full solves and case scrambles built from algorithm sets.
package scramble

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/SeamusWaldron/smartcube"
)

// DefaultLength is the length of random-move scrambles.
const DefaultLength = 25

// RandomSource produces random-move scrambles. No face is turned twice in
// a row and no axis three times in a row.
type RandomSource struct {
	Length int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource creates a source seeded from the clock.
func NewRandomSource(length int) *RandomSource {
	seed := uint64(time.Now().UnixNano())
	return NewSeededRandomSource(length, seed)
}

// NewSeededRandomSource creates a deterministic source.
func NewSeededRandomSource(length int, seed uint64) *RandomSource {
	if length <= 0 {
		length = DefaultLength
	}
	return &RandomSource{
		Length: length,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

var axisOf = map[smartcube.Face]int{
	smartcube.FaceU: 0, smartcube.FaceD: 0,
	smartcube.FaceR: 1, smartcube.FaceL: 1,
	smartcube.FaceF: 2, smartcube.FaceB: 2,
}

var turns = [3]smartcube.Turn{smartcube.CW, smartcube.CCW, smartcube.Double}

// Next returns a new scramble with Index -1.
func (s *RandomSource) Next(ctx context.Context) (smartcube.Scramble, error) {
	if err := ctx.Err(); err != nil {
		return smartcube.Scramble{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	moves := make([]smartcube.Move, 0, s.Length)
	for len(moves) < s.Length {
		face := smartcube.Faces[s.rng.IntN(len(smartcube.Faces))]
		n := len(moves)
		if n > 0 && moves[n-1].Face == face {
			continue
		}
		if n > 1 && axisOf[moves[n-1].Face] == axisOf[face] && axisOf[moves[n-2].Face] == axisOf[face] {
			continue
		}
		moves = append(moves, smartcube.Move{Face: face, Turn: turns[s.rng.IntN(len(turns))]})
	}
	return smartcube.Scramble{Moves: moves, Index: -1}, nil
}

// AlgSource produces case scrambles from an algorithm set. Each scramble is
// the inverse of the first usable algorithm of a random case, so solving
// it with that algorithm restores the cube.
type AlgSource struct {
	set    *AlgSet
	usable []int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAlgSource creates a source over set. Cases without a usable
// algorithm are never picked.
func NewAlgSource(set *AlgSet, seed uint64) (*AlgSource, error) {
	src := &AlgSource{
		set: set,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for i, c := range set.Cases {
		if _, ok := c.Usable(); ok {
			src.usable = append(src.usable, i)
		}
	}
	if len(src.usable) == 0 {
		return nil, fmt.Errorf("algorithm set %q has no usable cases", set.Name)
	}
	return src, nil
}

// Set returns the underlying algorithm set.
func (s *AlgSource) Set() *AlgSet {
	return s.set
}

// Next returns a scramble for a random case. Index is the case's position
// in the set.
func (s *AlgSource) Next(ctx context.Context) (smartcube.Scramble, error) {
	if err := ctx.Err(); err != nil {
		return smartcube.Scramble{}, err
	}
	s.mu.Lock()
	idx := s.usable[s.rng.IntN(len(s.usable))]
	s.mu.Unlock()
	return s.ForCase(idx)
}

// ForCase returns the scramble for the case at idx.
func (s *AlgSource) ForCase(idx int) (smartcube.Scramble, error) {
	c, ok := s.set.Case(idx)
	if !ok {
		return smartcube.Scramble{}, fmt.Errorf("%s: case %d out of range", s.set.Name, idx)
	}
	alg, ok := c.Usable()
	if !ok {
		return smartcube.Scramble{}, fmt.Errorf("%s: %w in any algorithm of %s", s.set.Name, ErrUnsupported, c.Name)
	}
	moves, err := ScrambleFor(alg)
	if err != nil {
		return smartcube.Scramble{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	return smartcube.Scramble{Moves: moves, Index: idx}, nil
}

// New returns the scramble source for a training mode name: "cfop" uses
// random moves of the given length, "f2l" and "oll" use the built-in
// algorithm sets and ignore length.
func New(mode string, length int, seed uint64) (smartcube.ScrambleSource, error) {
	switch mode {
	case "cfop":
		return NewSeededRandomSource(length, seed), nil
	case SetF2L, SetOLL:
		set, err := LoadAlgSet(mode)
		if err != nil {
			return nil, err
		}
		return NewAlgSource(set, seed)
	default:
		return nil, fmt.Errorf("unknown training mode %q", mode)
	}
}

// NewMode builds the training mode named mode with its scramble source.
func NewMode(mode string, length int, seed uint64) (smartcube.Mode, error) {
	src, err := New(mode, length, seed)
	if err != nil {
		return nil, err
	}
	switch mode {
	case SetF2L:
		return smartcube.NewF2LMode(src), nil
	case SetOLL:
		return smartcube.NewOLLMode(src), nil
	default:
		return smartcube.NewCFOPMode(src), nil
	}
}

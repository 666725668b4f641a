// Package simulator fabricates the encrypted notifications a QiYi cube
// sends, for offline training and tests.
package simulator

import (
	"fmt"
	"sync"
	"time"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

// DefaultTurnGap is the device time between simulated turns.
const DefaultTurnGap = 150 * time.Millisecond

// Cube is a simulated cube. It keeps the sticker state, a device clock and
// the recent turn history the firmware repeats in every message.
type Cube struct {
	key []byte

	mu      sync.Mutex
	cube    *smartcube.Cube
	clock   uint32
	battery byte
	history []protocol.HistorySlot // newest first
}

// New creates a solved simulated cube with its clock at start.
func New(key []byte, start uint32) *Cube {
	return &Cube{
		key:     append([]byte(nil), key...),
		cube:    smartcube.NewCube(),
		clock:   start,
		battery: 100,
	}
}

// SetBattery sets the reported battery level.
func (c *Cube) SetBattery(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.battery = byte(level)
}

// Facelets returns the simulated cube state.
func (c *Cube) Facelets() smartcube.Facelets {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cube.Facelets()
}

// Hello returns the frame the cube sends after the app's hello.
func (c *Cube) Hello() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked(protocol.OpHello, 0)
}

// Turn applies m after gap and returns one state-change frame per quarter
// turn. Half turns are reported as two quarter turns, as the firmware does.
func (c *Cube) Turn(m smartcube.Move, gap time.Duration) ([][]byte, error) {
	quarter := m
	n := 1
	if m.IsHalf() {
		quarter = smartcube.Move{Face: m.Face, Turn: smartcube.CW}
		n = 2
	}
	code, err := smartcube.EncodeMove(quarter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	frames := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		c.clock += uint32(gap / time.Millisecond)
		c.cube.ApplyMove(quarter)

		frame, err := c.frameLocked(protocol.OpStateChange, code)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)

		c.history = append([]protocol.HistorySlot{{Timestamp: c.clock, Code: code}}, c.history...)
		if len(c.history) >= protocol.HistoryDepth {
			c.history = c.history[:protocol.HistoryDepth-1]
		}
	}
	return frames, nil
}

// Play turns every move with DefaultTurnGap and returns all frames in
// order.
func (c *Cube) Play(moves []smartcube.Move) ([][]byte, error) {
	var frames [][]byte
	for _, m := range moves {
		f, err := c.Turn(m, DefaultTurnGap)
		if err != nil {
			return nil, fmt.Errorf("turn %s: %w", m, err)
		}
		frames = append(frames, f...)
	}
	return frames, nil
}

func (c *Cube) frameLocked(opcode, lastMove byte) ([]byte, error) {
	facelets, err := smartcube.EncodeFacelets(c.cube.Facelets())
	if err != nil {
		return nil, err
	}
	r := protocol.Report{
		Opcode:    opcode,
		Timestamp: c.clock,
		Facelets:  facelets,
		Battery:   c.battery,
		LastMove:  lastMove,
	}
	if opcode == protocol.OpStateChange {
		r.History = c.history
	}
	return r.Frame(c.key)
}

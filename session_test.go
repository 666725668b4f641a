package smartcube_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/simulator"
)

var testKey = []byte("0123456789abcdef")

// harness drives a session with frames from a simulated cube and records
// every callback.
type harness struct {
	t       *testing.T
	sim     *simulator.Cube
	session *smartcube.Session

	mu     sync.Mutex
	states []smartcube.SessionState
	events []smartcube.EventKind
	solves []smartcube.SolveRecord
}

func newHarness(t *testing.T, mode smartcube.Mode, opts ...smartcube.Option) *harness {
	h := &harness{t: t, sim: simulator.New(testKey, 0)}
	opts = append([]smartcube.Option{
		smartcube.WithKey(testKey),
		smartcube.WithLogger(zaptest.NewLogger(t)),
		smartcube.WithOnStateChange(func(s smartcube.SessionState) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.states = append(h.states, s)
		}),
		smartcube.WithOnEvent(func(e smartcube.Event) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, e.Kind)
		}),
		smartcube.WithOnSolve(func(r smartcube.SolveRecord) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.solves = append(h.solves, r)
		}),
	}, opts...)
	h.session = smartcube.NewSession(mode, opts...)
	return h
}

func (h *harness) turn(notation string) {
	h.t.Helper()
	frames, err := h.sim.Play(smartcube.MustParseMoves(notation))
	require.NoError(h.t, err)
	for _, f := range frames {
		require.NoError(h.t, h.session.HandleNotification(f))
	}
}

// turnLastFrameOnly turns the moves but delivers only the final frame, as
// if the earlier notifications were lost. The decoder recovers the rest
// from the frame's history.
func (h *harness) turnLastFrameOnly(notation string) {
	h.t.Helper()
	frames, err := h.sim.Play(smartcube.MustParseMoves(notation))
	require.NoError(h.t, err)
	require.NotEmpty(h.t, frames)
	require.NoError(h.t, h.session.HandleNotification(frames[len(frames)-1]))
}

func (h *harness) scramble() {
	h.t.Helper()
	require.NoError(h.t, h.session.RequestScramble(context.Background()))
}

func (h *harness) solveRecords() []smartcube.SolveRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]smartcube.SolveRecord(nil), h.solves...)
}

func cfop(scramble string) smartcube.Mode {
	return smartcube.NewCFOPMode(smartcube.FixedScramble(smartcube.MustParseMoves(scramble)))
}

func TestSessionIgnoresTurnsWhileIdle(t *testing.T) {
	h := newHarness(t, cfop("R U F"))
	h.turn("R U")

	assert.Equal(t, smartcube.StateIdle, h.session.State())
	assert.Equal(t, h.sim.Facelets(), h.session.Facelets())
	assert.Empty(t, h.states)
}

func TestSessionFullSolve(t *testing.T) {
	h := newHarness(t, cfop("R U F"))
	h.scramble()
	assert.Equal(t, smartcube.StateScrambling, h.session.State())
	assert.Equal(t, "R U F", h.session.Scramble().String())

	h.turn("R U'")
	assert.Equal(t, "U2 F", smartcube.FormatMoves(h.session.RemainingScramble()))

	h.turn("U2 F")
	assert.Equal(t, smartcube.StateWaiting, h.session.State())
	assert.Nil(t, h.session.RemainingScramble())

	h.turn("F'")
	assert.Equal(t, smartcube.StateSolving, h.session.State())
	assert.Equal(t, smartcube.PhaseScrambled, h.session.Phase())

	h.turn("U'")
	assert.Equal(t, smartcube.PhasePLL, h.session.Phase())
	assert.Len(t, h.session.Splits(), 3)

	h.turn("R'")
	assert.Equal(t, smartcube.StateLive, h.session.State())
	assert.True(t, h.session.Facelets().IsSolved())

	solves := h.solveRecords()
	require.Len(t, solves, 1)
	rec := solves[0]
	assert.Equal(t, "cfop", rec.Mode)
	assert.Equal(t, "R U F", rec.Scramble.String())
	assert.Equal(t, smartcube.FaceL, rec.CrossFace)
	require.Len(t, rec.Moves, 3)
	assert.Equal(t, "F' U' R'", smartcube.FormatMoves([]smartcube.Move{rec.Moves[0].Move, rec.Moves[1].Move, rec.Moves[2].Move}))

	var kinds []smartcube.EventKind
	for _, cp := range rec.Checkpoints {
		kinds = append(kinds, cp.Kind)
	}
	assert.Equal(t, []smartcube.EventKind{
		smartcube.EventCrossSolved,
		smartcube.EventF2LProgress,
		smartcube.EventOLL,
		smartcube.EventSolved,
	}, kinds)
	for i := 1; i < len(rec.Checkpoints); i++ {
		assert.GreaterOrEqual(t, rec.Checkpoints[i].Elapsed, rec.Checkpoints[i-1].Elapsed)
	}
	assert.Equal(t, rec.Duration, rec.End.Sub(rec.Start))

	assert.Equal(t, []smartcube.SessionState{
		smartcube.StateScrambling,
		smartcube.StateWaiting,
		smartcube.StateSolving,
		smartcube.StateLive,
	}, h.states)

	// Turns after the solve are ignored until the next scramble.
	h.turn("R")
	assert.Equal(t, smartcube.StateLive, h.session.State())
	assert.Len(t, h.solveRecords(), 1)
}

func TestSessionSolveStartsInsideScrambleFrame(t *testing.T) {
	h := newHarness(t, cfop("R U F"))
	h.scramble()
	h.turn("R U")

	h.turnLastFrameOnly("F F'")
	assert.Equal(t, smartcube.StateSolving, h.session.State())
	assert.Nil(t, h.session.RemainingScramble())

	h.turn("U' R'")
	assert.Equal(t, smartcube.StateLive, h.session.State())

	solves := h.solveRecords()
	require.Len(t, solves, 1)
	require.Len(t, solves[0].Moves, 3)
	assert.Equal(t, smartcube.FPrime, solves[0].Moves[0].Move)
	assert.Len(t, solves[0].Checkpoints, 4)
	assert.NotContains(t, h.states, smartcube.StateWaiting)
}

func TestSessionF2LModeFinishesOnF2L(t *testing.T) {
	mode := smartcube.NewF2LMode(smartcube.FixedScramble(smartcube.MustParseMoves("U R U R'")))
	h := newHarness(t, mode)
	h.scramble()
	h.turn("U R U R'")
	require.Equal(t, smartcube.StateWaiting, h.session.State())

	h.turn("R U' R'")
	assert.Equal(t, smartcube.StateLive, h.session.State())

	solves := h.solveRecords()
	require.Len(t, solves, 1)
	require.Len(t, solves[0].Checkpoints, 1)
	assert.Equal(t, smartcube.EventF2LComplete, solves[0].Checkpoints[0].Kind)
	assert.Equal(t, smartcube.FaceD, solves[0].CrossFace)
	assert.Contains(t, h.events, smartcube.EventOLL)
}

func TestSessionAutoScramble(t *testing.T) {
	h := newHarness(t, cfop("R U F"), smartcube.WithAutoScramble(true))
	h.scramble()
	h.turn("R U F")
	h.turn("F' U' R'")

	assert.Len(t, h.solveRecords(), 1)
	assert.Equal(t, smartcube.StateScrambling, h.session.State())
	assert.Equal(t, "R U F", smartcube.FormatMoves(h.session.RemainingScramble()))
}

func TestSessionStartTimerAutomatically(t *testing.T) {
	h := newHarness(t, cfop("R"),
		smartcube.WithStartTimerAutomatically(true),
		smartcube.WithAutoInspection(true))
	h.scramble()
	h.turn("R")
	assert.Equal(t, smartcube.StateSolving, h.session.State())

	h.turn("R'")
	assert.Equal(t, smartcube.StateLive, h.session.State())
}

func TestSessionInspectionExpires(t *testing.T) {
	h := newHarness(t, cfop("R"),
		smartcube.WithAutoInspection(true),
		smartcube.WithInspection(20*time.Millisecond))
	h.scramble()
	h.turn("R")
	assert.Equal(t, smartcube.StateInspecting, h.session.State())

	require.Eventually(t, func() bool {
		return h.session.State() == smartcube.StateSolving
	}, time.Second, 5*time.Millisecond)
}

func TestSessionTurnDuringInspectionStartsSolve(t *testing.T) {
	h := newHarness(t, cfop("R"), smartcube.WithAutoInspection(true))
	h.scramble()
	h.turn("R")
	require.Equal(t, smartcube.StateInspecting, h.session.State())
	assert.Positive(t, h.session.InspectionRemaining())

	h.turn("R'")
	assert.Equal(t, smartcube.StateLive, h.session.State())
	assert.Zero(t, h.session.InspectionRemaining())
}

type countingMetrics struct {
	mu       sync.Mutex
	received int
	dropped  map[string]int
	moves    int
	rewrites int
	solves   int
}

func (m *countingMetrics) NotificationReceived(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received++
}

func (m *countingMetrics) NotificationDropped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dropped == nil {
		m.dropped = make(map[string]int)
	}
	m.dropped[reason]++
}

func (m *countingMetrics) MovesDecoded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves += n
}

func (m *countingMetrics) ScrambleRewritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewrites++
}

func (m *countingMetrics) SolveCompleted(string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solves++
}

func TestSessionConcurrentNotificationsDecodeOnce(t *testing.T) {
	const senders = 8
	metrics := &countingMetrics{}
	h := newHarness(t, cfop("R U F"), smartcube.WithMetrics(metrics))

	frames, err := h.sim.Play(smartcube.MustParseMoves("R U F"))
	require.NoError(t, err)
	last := frames[len(frames)-1]

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.session.HandleNotification(last))
		}()
	}
	wg.Wait()

	// The first delivery walks the history; the rest repeat the newest turn.
	assert.Equal(t, 3+senders-1, metrics.moves)
	assert.Equal(t, senders, metrics.received)
	assert.Equal(t, h.sim.Facelets(), h.session.Facelets())
}

func TestSessionDropsBadFrames(t *testing.T) {
	metrics := &countingMetrics{}
	h := newHarness(t, cfop("R U F"), smartcube.WithMetrics(metrics))
	h.scramble()

	err := h.session.HandleNotification(make([]byte, 17))
	assert.ErrorIs(t, err, smartcube.ErrProtocol)
	assert.Equal(t, smartcube.StateScrambling, h.session.State())
	assert.Equal(t, map[string]int{"length": 1}, metrics.dropped)

	h.turn("R U' U2 F")
	h.turn("F' U' R'")
	assert.Equal(t, 1, metrics.rewrites)
	assert.Equal(t, 1, metrics.solves)
	assert.Equal(t, 8, metrics.moves)
	assert.Equal(t, 8, metrics.received)
}

func TestSessionErrors(t *testing.T) {
	s := smartcube.NewSession(cfop("R"))
	assert.ErrorIs(t, s.HandleNotification(make([]byte, 16)), smartcube.ErrNoKey)

	empty := smartcube.NewCFOPMode(smartcube.FixedScramble(nil))
	s = smartcube.NewSession(empty)
	err := s.RequestScramble(context.Background())
	assert.ErrorIs(t, err, smartcube.ErrNoScramble)
	assert.Equal(t, smartcube.StateIdle, s.State())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s = smartcube.NewSession(cfop("R"))
	assert.ErrorIs(t, s.RequestScramble(ctx), context.Canceled)
	assert.Equal(t, smartcube.StateIdle, s.State())
}

func TestSessionSetModeReturnsToIdle(t *testing.T) {
	h := newHarness(t, cfop("R U F"))
	h.scramble()
	h.turn("R")

	h.session.SetMode(smartcube.NewOLLMode(smartcube.FixedScramble(smartcube.MustParseMoves("F R U R' U' F'"))))
	assert.Equal(t, smartcube.StateIdle, h.session.State())
	assert.Equal(t, "oll", h.session.Mode().Name())
	assert.Nil(t, h.session.RemainingScramble())
}

package smartcube

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	trackerSolution = "D R U R' F R U R' U' F' R U R' U' R' F R2 U' R' U' R U R' F'"
	trackerScramble = "F R U' R' U R U R2 F' R U R U' R' F U R U' R' F' R U' R' D'"
)

type recorder struct {
	events []Event
}

func (r *recorder) observe(e Event) { r.events = append(r.events, e) }

func (r *recorder) take() []Event {
	out := r.events
	r.events = nil
	return out
}

func TestTrackerProgression(t *testing.T) {
	for _, pin := range []Face{"", FaceD} {
		t.Run("pin="+string(pin), func(t *testing.T) {
			rec := &recorder{}
			tracker := NewTracker(rec.observe)
			if pin != "" {
				tracker.PinCrossFace(pin)
			}

			c := NewCube()
			require.NoError(t, c.ApplyNotation(trackerScramble))
			require.NoError(t, tracker.Update(c.Facelets()))
			assert.Empty(t, rec.take())
			assert.Equal(t, PhaseScrambled, tracker.Phase())

			want := map[int][]Event{
				0: {
					{Kind: EventCrossSolved, Face: FaceD},
					{Kind: EventF2LProgress, Count: 3, Slots: 0b1101},
				},
				3: {
					{Kind: EventF2LProgress, Count: 4, Slots: 0x0F},
					{Kind: EventF2LComplete},
				},
				9:  {{Kind: EventOLL}},
				23: {{Kind: EventSolved}},
			}

			for i, m := range MustParseMoves(trackerSolution) {
				c.Apply(m)
				require.NoError(t, tracker.Update(c.Facelets()))
				if diff := cmp.Diff(want[i], rec.take()); diff != "" {
					t.Errorf("events after move %d (%s) mismatch (-want +got):\n%s", i, m, diff)
				}
			}
			assert.Equal(t, PhaseSolved, tracker.Phase())

			face, ok := tracker.CrossFace()
			assert.True(t, ok)
			assert.Equal(t, FaceD, face)
		})
	}
}

func TestTrackerPhasesAreMonotonic(t *testing.T) {
	rec := &recorder{}
	tracker := NewTracker(rec.observe)

	c := NewCube()
	require.NoError(t, c.ApplyNotation("R U R'"))
	require.NoError(t, tracker.Update(c.Facelets()))
	assert.Equal(t, PhaseF2LProgress, tracker.Phase())
	assert.Equal(t, uint8(0b1101), tracker.SlotMask())
	rec.take()

	// Breaking another slot does not lose the one already counted.
	require.NoError(t, c.ApplyNotation("L U L'"))
	require.NoError(t, tracker.Update(c.Facelets()))
	assert.Empty(t, rec.take())
	assert.Equal(t, uint8(0b1101), tracker.SlotMask())

	require.NoError(t, tracker.Update(SolvedFacelets))
	require.NoError(t, tracker.Update(SolvedFacelets))
	assert.Equal(t, []Event{{Kind: EventSolved}}, rec.take())
}

func TestTrackerPinnedFaceIgnoresOtherCrosses(t *testing.T) {
	rec := &recorder{}
	tracker := NewTracker(rec.observe)
	tracker.PinCrossFace(FaceD)

	// After U only the D cross survives; after D only the U cross does.
	c := NewCube()
	c.Apply(Move{Face: FaceD, Turn: CW})
	require.NoError(t, tracker.Update(c.Facelets()))
	assert.Empty(t, rec.take())
	assert.Equal(t, PhaseScrambled, tracker.Phase())

	c.Apply(Move{Face: FaceD, Turn: CCW}, Move{Face: FaceU, Turn: CW})
	require.NoError(t, tracker.Update(c.Facelets()))
	events := rec.take()
	require.NotEmpty(t, events)
	assert.Equal(t, Event{Kind: EventCrossSolved, Face: FaceD}, events[0])
}

func TestTrackerSolvedFromScrambled(t *testing.T) {
	rec := &recorder{}
	tracker := NewTracker(rec.observe)

	require.NoError(t, tracker.Update(SolvedFacelets))
	assert.Equal(t, []Event{{Kind: EventSolved}}, rec.take())
	assert.Equal(t, PhaseSolved, tracker.Phase())

	require.NoError(t, tracker.Update(SolvedFacelets))
	assert.Empty(t, rec.take())
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()
	c := NewCube()
	c.Apply(Move{Face: FaceU, Turn: CW})
	require.NoError(t, tracker.Update(c.Facelets()))
	assert.Equal(t, PhasePLL, tracker.Phase())

	tracker.Reset()
	assert.Equal(t, PhaseScrambled, tracker.Phase())
	assert.Zero(t, tracker.SlotMask())
	_, ok := tracker.CrossFace()
	assert.False(t, ok)

	tracker.PinCrossFace(FaceD)
	tracker.Reset()
	face, ok := tracker.CrossFace()
	assert.True(t, ok)
	assert.Equal(t, FaceD, face)
}

func TestTrackerRejectsBadSnapshot(t *testing.T) {
	tracker := NewTracker()
	err := tracker.Update("UUU")
	assert.ErrorIs(t, err, ErrInvalidFacelets)
	assert.Equal(t, PhaseScrambled, tracker.Phase())
}

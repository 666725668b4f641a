package smartcube

import "fmt"

// Tracker follows CFOP progress from a stream of facelet snapshots and
// notifies its observers on each transition. Progress is monotonic within
// one scramble: slots once counted solved stay counted, because snapshots
// taken mid-turn can transiently look unsolved.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	observers []Observer

	phase     Phase
	crossFace Face
	pinned    bool
	slotMask  uint8
}

// NewTracker creates a tracker in the scrambled state. Observers are called
// in order for every event.
func NewTracker(observers ...Observer) *Tracker {
	return &Tracker{
		observers: observers,
		phase:     PhaseScrambled,
	}
}

// Reset returns the tracker to the scrambled state. It must be called at
// the start of every scramble. A pinned cross face survives Reset.
func (t *Tracker) Reset() {
	t.phase = PhaseScrambled
	t.slotMask = 0
	if !t.pinned {
		t.crossFace = ""
	}
}

// PinCrossFace restricts cross detection to face. Training modes that
// practise from a finished cross pin D.
func (t *Tracker) PinCrossFace(face Face) {
	t.crossFace = face
	t.pinned = true
}

// Update feeds one snapshot. An error means the snapshot could not be
// normalised; the tracker's state is unchanged.
func (t *Tracker) Update(f Facelets) error {
	if len(f) != FaceletCount {
		return fmt.Errorf("%w: length %d", ErrInvalidFacelets, len(f))
	}

	if f.IsSolved() {
		if t.phase != PhaseSolved {
			t.phase = PhaseSolved
			t.emit(Event{Kind: EventSolved})
		}
		return nil
	}

	if t.phase == PhaseScrambled {
		t.detectCross(f)
	}

	if t.phase == PhaseCrossSolved || t.phase == PhaseF2LProgress {
		normalized, err := RotateToReference(f, t.crossFace)
		if err != nil {
			return err
		}
		t.updateSlots(F2LSlots(normalized))
	}

	if t.phase == PhaseOLL {
		normalized, err := RotateToReference(f, t.crossFace)
		if err != nil {
			return err
		}
		if IsOLLSolved(normalized) {
			t.phase = PhasePLL
			t.emit(Event{Kind: EventOLL})
		}
	}

	return nil
}

func (t *Tracker) detectCross(f Facelets) {
	if t.pinned {
		for _, cc := range crossChecks {
			if cc.face == t.crossFace && crossSolved(f, cc) {
				t.phase = PhaseCrossSolved
				t.emit(Event{Kind: EventCrossSolved, Face: t.crossFace})
			}
		}
		return
	}

	face, ok := CrossSolvedFace(f)
	if !ok {
		return
	}
	t.crossFace = face
	t.phase = PhaseCrossSolved
	t.emit(Event{Kind: EventCrossSolved, Face: face})
}

func (t *Tracker) updateSlots(status F2LStatus) {
	prev := SlotCount(t.slotMask)
	t.slotMask |= status.Mask()
	count := SlotCount(t.slotMask)
	if count == prev {
		return
	}

	t.phase = PhaseF2LProgress
	t.emit(Event{Kind: EventF2LProgress, Count: count, Slots: t.slotMask})

	if count == 4 {
		t.phase = PhaseOLL
		t.emit(Event{Kind: EventF2LComplete})
	}
}

func (t *Tracker) emit(e Event) {
	for _, obs := range t.observers {
		obs(e)
	}
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	return t.phase
}

// CrossFace returns the remembered cross face, if any.
func (t *Tracker) CrossFace() (Face, bool) {
	return t.crossFace, t.crossFace != ""
}

// SlotMask returns the cumulative F2L slot mask.
func (t *Tracker) SlotMask() uint8 {
	return t.slotMask
}

package smartcube

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

// SessionState is the training session's state.
type SessionState int

const (
	// StateIdle means no scramble has been requested yet.
	StateIdle SessionState = iota

	// StateScrambling means turns are checked against the scramble.
	StateScrambling

	// StateInspecting means the scramble is done and the inspection
	// countdown is running.
	StateInspecting

	// StateWaiting means the scramble is done and the first turn will
	// start the timer.
	StateWaiting

	// StateSolving means the timer is running.
	StateSolving

	// StateLive means the solve has finished. Turns are ignored until the
	// next scramble.
	StateLive
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScrambling:
		return "scrambling"
	case StateInspecting:
		return "inspecting"
	case StateWaiting:
		return "waiting"
	case StateSolving:
		return "solving"
	case StateLive:
		return "live"
	default:
		return "unknown"
	}
}

// Checkpoint is one split of a solve.
type Checkpoint struct {
	Kind    EventKind
	Elapsed time.Duration
}

// SolveRecord is a finished solve.
type SolveRecord struct {
	Mode        string
	Scramble    Scramble
	Moves       []TimedMove
	Checkpoints []Checkpoint
	CrossFace   Face
	Start       time.Time
	End         time.Time
	Duration    time.Duration
}

// Session drives one training session: scramble checking, inspection, the
// solve timer and phase splits. Feed it decrypted messages with
// HandleMessage or raw notifications with HandleNotification.
//
// Session methods are safe for concurrent use. Callbacks run after the
// session's lock is released, on the goroutine that caused them.
type Session struct {
	cfg *config
	log *zap.Logger

	mu       sync.Mutex
	mode     Mode
	decoder  *Decoder
	verifier *ScrambleVerifier
	tracker  *Tracker
	timer    *Timer

	state    SessionState
	scramble Scramble
	record   *SolveRecord
	facelets Facelets
	battery  int

	eventErr error
	queue    []func()
}

// NewSession creates an idle session for mode.
func NewSession(mode Mode, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Session{
		cfg:      cfg,
		log:      cfg.logger.With(zap.String("component", "session")),
		decoder:  NewDecoder(),
		verifier: NewScrambleVerifier(nil),
		timer:    NewTimer(mode.ExpectedCheckpoints()),
		facelets: SolvedFacelets,
		battery:  -1,
	}
	s.setModeLocked(mode)
	return s
}

// SetMode switches the training mode and returns the session to idle.
func (s *Session) SetMode(mode Mode) {
	s.mu.Lock()
	s.setModeLocked(mode)
	s.timer.Reset()
	s.verifier.Reset()
	s.record = nil
	s.setStateLocked(StateIdle)
	s.unlock()
}

func (s *Session) setModeLocked(mode Mode) {
	s.mode = mode
	s.tracker = NewTracker(s.onTrackerEvent)
	if face, ok := mode.CrossFace(); ok {
		s.tracker.PinCrossFace(face)
	}
	s.timer.SetExpected(mode.ExpectedCheckpoints())
}

// RequestScramble generates a scramble and starts checking turns against
// it. A request while already scrambling is ignored.
func (s *Session) RequestScramble(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateScrambling {
		s.mu.Unlock()
		return nil
	}
	prev := s.state
	s.setStateLocked(StateScrambling)
	mode := s.mode
	s.unlock()

	scr, err := mode.GenerateScramble(ctx)
	if err == nil && len(scr.Moves) == 0 {
		err = ErrNoScramble
	}

	s.mu.Lock()
	defer s.unlock()
	if err != nil {
		s.setStateLocked(prev)
		return fmt.Errorf("generate %s scramble: %w", mode.Name(), err)
	}

	s.scramble = scr
	s.record = &SolveRecord{Mode: mode.Name(), Scramble: scr}
	s.verifier.SetTarget(scr.Moves)
	s.tracker.Reset()
	s.timer.Reset()
	s.log.Info("scramble ready",
		zap.String("mode", mode.Name()),
		zap.String("scramble", scr.String()),
		zap.Int("index", scr.Index))
	return nil
}

// HandleNotification decrypts a raw notification and handles it. Protocol
// errors drop the notification without changing any state.
func (s *Session) HandleNotification(frame []byte) error {
	if len(s.cfg.key) == 0 {
		return ErrNoKey
	}
	msg, err := protocol.Decrypt(frame, s.cfg.key)
	if err != nil {
		s.drop(err)
		return err
	}
	return s.HandleMessage(msg)
}

// HandleMessage decodes a decrypted message and handles it. Decoding and
// applying happen under one lock, so concurrent notifications are applied
// whole and in watermark order.
func (s *Session) HandleMessage(msg *protocol.Message) error {
	s.cfg.metrics.NotificationReceived(protocol.OpcodeName(msg.Opcode))

	s.mu.Lock()
	report, err := s.decoder.Decode(msg)
	if err != nil {
		s.unlock()
		s.drop(err)
		return err
	}
	err = s.handleReportLocked(report)
	s.unlock()
	return err
}

func (s *Session) drop(err error) {
	reason := "other"
	switch {
	case errors.Is(err, protocol.ErrChecksum):
		reason = "checksum"
	case errors.Is(err, protocol.ErrBadMarker):
		reason = "marker"
	case errors.Is(err, protocol.ErrTooShort), errors.Is(err, protocol.ErrFrameSize):
		reason = "length"
	case errors.Is(err, ErrUnknownMove):
		reason = "move"
	}
	s.cfg.metrics.NotificationDropped(reason)
	s.log.Warn("notification dropped", zap.String("reason", reason), zap.Error(err))
}

// HandleReport applies a decoded report. It returns ErrCheckpointOverflow
// if the mode produced more splits than it declared.
func (s *Session) HandleReport(r *StateReport) error {
	s.mu.Lock()
	defer s.unlock()
	return s.handleReportLocked(r)
}

func (s *Session) handleReportLocked(r *StateReport) error {
	if r.Facelets != "" {
		s.facelets = r.Facelets
		s.battery = r.Battery
	}
	if len(r.Moves) == 0 {
		return nil
	}

	s.cfg.metrics.MovesDecoded(len(r.Moves))
	if fn := s.cfg.onMoves; fn != nil {
		moves := append([]TimedMove(nil), r.Moves...)
		s.queue = append(s.queue, func() { fn(moves) })
	}

	switch s.state {
	case StateIdle, StateLive:
		return nil
	case StateInspecting, StateWaiting:
		s.startSolveLocked()
	}

	switch s.state {
	case StateSolving:
		return s.solvingLocked(r)
	case StateScrambling:
		return s.scramblingLocked(r)
	}
	return nil
}

// scramblingLocked checks the report's turns against the scramble. Turns
// made after the scramble completes in the same report start the solve.
func (s *Session) scramblingLocked(r *StateReport) error {
	moves := make([]Move, len(r.Moves))
	for i, tm := range r.Moves {
		moves[i] = tm.Move
	}
	rewritten, consumed := s.verifier.ProcessMoves(moves)
	if rewritten {
		s.cfg.metrics.ScrambleRewritten()
		s.log.Debug("scramble corrected", zap.String("remaining", FormatMoves(s.verifier.Remaining())))
	}
	if !s.verifier.IsComplete() {
		return nil
	}

	s.verifier.Reset()
	tail := r.Moves[consumed:]
	switch {
	case s.cfg.startTimerAutomatically, len(tail) > 0:
		s.startSolveLocked()
	case s.cfg.autoInspection:
		s.setStateLocked(StateInspecting)
		s.timer.StartInspection(s.cfg.inspection, s.inspectionExpired)
	default:
		s.setStateLocked(StateWaiting)
	}
	if len(tail) == 0 {
		return nil
	}

	solving := *r
	solving.Moves = tail
	return s.solvingLocked(&solving)
}

func (s *Session) inspectionExpired() {
	s.mu.Lock()
	defer s.unlock()
	if s.state == StateInspecting {
		s.log.Info("inspection expired")
		s.startSolveLocked()
	}
}

func (s *Session) startSolveLocked() {
	s.timer.CancelInspection()
	s.timer.Start()
	if s.record != nil {
		s.record.Start = s.timer.StartedAt()
	}
	s.setStateLocked(StateSolving)
}

func (s *Session) solvingLocked(r *StateReport) error {
	if s.record != nil {
		s.record.Moves = append(s.record.Moves, r.Moves...)
	}
	s.eventErr = nil
	if err := s.tracker.Update(r.Facelets); err != nil {
		s.log.Warn("phase update failed", zap.Error(err))
	}
	err := s.eventErr
	s.eventErr = nil
	return err
}

// onTrackerEvent runs with s.mu held.
func (s *Session) onTrackerEvent(e Event) {
	if fn := s.cfg.onEvent; fn != nil {
		s.queue = append(s.queue, func() { fn(e) })
	}
	if s.state != StateSolving {
		return
	}

	checkpoint, finished := s.mode.HandleEvent(e)
	if checkpoint {
		split, ok, err := s.timer.Checkpoint()
		switch {
		case err != nil:
			s.eventErr = fmt.Errorf("%s: %w", e.Kind, err)
			s.log.Error("checkpoint rejected", zap.Stringer("event", e.Kind), zap.Error(err))
		case ok && s.record != nil:
			s.record.Checkpoints = append(s.record.Checkpoints, Checkpoint{Kind: e.Kind, Elapsed: split})
		}
	}
	if finished {
		s.finishSolveLocked()
	}
}

func (s *Session) finishSolveLocked() {
	elapsed := s.timer.Stop()
	s.setStateLocked(StateLive)

	rec := s.record
	s.record = nil
	if rec == nil {
		s.log.Error("solve finished without a scramble")
		return
	}
	rec.End = rec.Start.Add(elapsed)
	rec.Duration = elapsed
	if face, ok := s.tracker.CrossFace(); ok {
		rec.CrossFace = face
	}

	s.cfg.metrics.SolveCompleted(rec.Mode, elapsed)
	s.log.Info("solve finished",
		zap.String("mode", rec.Mode),
		zap.Duration("time", elapsed),
		zap.Int("moves", len(rec.Moves)),
		zap.Int("splits", len(rec.Checkpoints)))

	if fn := s.cfg.onSolve; fn != nil {
		s.queue = append(s.queue, func() { fn(*rec) })
	}
	if s.cfg.autoScramble {
		s.queue = append(s.queue, func() {
			if err := s.RequestScramble(context.Background()); err != nil {
				s.log.Error("auto scramble failed", zap.Error(err))
			}
		})
	}
}

func (s *Session) setStateLocked(state SessionState) {
	if s.state == state {
		return
	}
	s.log.Debug("state change", zap.Stringer("from", s.state), zap.Stringer("to", state))
	s.state = state
	if fn := s.cfg.onStateChange; fn != nil {
		s.queue = append(s.queue, func() { fn(state) })
	}
}

// unlock releases s.mu and runs the callbacks queued while it was held.
func (s *Session) unlock() {
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
}

// State returns the session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the active training mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Phase returns the tracked solving phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Phase()
}

// Scramble returns the scramble last generated.
func (s *Session) Scramble() Scramble {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scramble
}

// RemainingScramble returns the turns still to be made, including any
// corrections.
func (s *Session) RemainingScramble() []Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateScrambling {
		return nil
	}
	return s.verifier.Remaining()
}

// Facelets returns the last reported cube state.
func (s *Session) Facelets() Facelets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facelets
}

// Battery returns the last reported battery level, or -1 if unknown.
func (s *Session) Battery() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battery
}

// Elapsed returns the current solve time.
func (s *Session) Elapsed() time.Duration {
	return s.timer.Elapsed()
}

// InspectionRemaining returns the time left to inspect.
func (s *Session) InspectionRemaining() time.Duration {
	return s.timer.InspectionRemaining()
}

// Splits returns the checkpoints of the solve in progress.
func (s *Session) Splits() []time.Duration {
	return s.timer.Checkpoints()
}

// Close cancels a running inspection countdown.
func (s *Session) Close() {
	s.timer.CancelInspection()
}

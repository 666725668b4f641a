package recorder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/storage"
)

const saveTimeout = 5 * time.Second

// Saved describes a stored solve.
type Saved struct {
	ID     string
	Record smartcube.SolveRecord
	Err    error
}

// Recorder stores every finished solve. Use OnSolve as the session's solve
// callback.
type Recorder struct {
	repo       *storage.SolveRepository
	state      *StateFile
	log        *zap.Logger
	deviceName string
	notify     func(Saved)
}

// New creates a recorder. state may be nil.
func New(repo *storage.SolveRepository, state *StateFile, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		repo:  repo,
		state: state,
		log:   log.With(zap.String("component", "recorder")),
	}
}

// SetDeviceName sets the device name stored with each solve.
func (r *Recorder) SetDeviceName(name string) {
	r.deviceName = name
}

// Notify sets a callback run after each save attempt.
func (r *Recorder) Notify(fn func(Saved)) {
	r.notify = fn
}

// OnSolve stores rec.
func (r *Recorder) OnSolve(rec smartcube.SolveRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	id, err := r.repo.Save(ctx, rec, r.deviceName)
	if err != nil {
		r.log.Error("failed to save solve", zap.String("mode", rec.Mode), zap.Error(err))
	} else {
		r.log.Info("solve saved", zap.String("solve_id", id), zap.Duration("time", rec.Duration))
		if r.state != nil {
			if err := r.state.SetLastSolve(id); err != nil {
				r.log.Warn("failed to update state file", zap.Error(err))
			}
		}
	}

	if r.notify != nil {
		r.notify(Saved{ID: id, Record: rec, Err: err})
	}
}

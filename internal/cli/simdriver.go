package cli

import (
	"context"
	"time"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/simulator"
)

type simOp struct {
	moves []smartcube.Move
	undo  bool
}

// simDriver turns a simulated cube and feeds its frames to the session in
// order, on its own goroutine.
type simDriver struct {
	sim     *simulator.Cube
	session *smartcube.Session
	onErr   func(error)
	ops     chan simOp

	applied []smartcube.Move
	last    time.Time
}

func newSimDriver(key []byte, session *smartcube.Session, onErr func(error)) *simDriver {
	return &simDriver{
		sim:     simulator.New(key, 0),
		session: session,
		onErr:   onErr,
		ops:     make(chan simOp, 64),
	}
}

// submit queues op. It never blocks; a full queue drops the op.
func (d *simDriver) submit(op simOp) bool {
	select {
	case d.ops <- op:
		return true
	default:
		return false
	}
}

func (d *simDriver) run(ctx context.Context) error {
	hello, err := d.sim.Hello()
	if err != nil {
		return err
	}
	if err := d.session.HandleNotification(hello); err != nil {
		return err
	}
	d.last = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-d.ops:
			d.apply(op)
		}
	}
}

func (d *simDriver) apply(op simOp) {
	moves := op.moves
	if op.undo {
		moves = smartcube.InvertMoves(smartcube.Simplify(d.applied))
	}

	for _, m := range moves {
		now := time.Now()
		gap := now.Sub(d.last)
		if gap < time.Millisecond {
			gap = time.Millisecond
		}
		d.last = now

		frames, err := d.sim.Turn(m, gap)
		if err != nil {
			d.onErr(err)
			return
		}
		for _, f := range frames {
			if err := d.session.HandleNotification(f); err != nil {
				d.onErr(err)
			}
		}
		d.applied = append(d.applied, m)
	}
	if d.sim.Facelets().IsSolved() {
		d.applied = nil
	}
}

package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/metrics"
	"github.com/SeamusWaldron/smartcube/internal/recorder"
	"github.com/SeamusWaldron/smartcube/internal/scramble"
	"github.com/SeamusWaldron/smartcube/internal/storage"
)

// demoKey encrypts simulated sessions when no cube key is configured.
var demoKey = []byte("smartcube-demo!!")

var (
	trainMode     string
	trainSimulate bool
	metricsAddr   string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Start an interactive training session",
	Long: `Start an interactive training session.

The session shows a scramble, checks your turns against it and corrects it
when you turn the wrong way. When the scramble is done, inspection starts;
the first turn starts the timer. Splits are taken at every phase of the
chosen mode and the solve is stored when the cube is solved.

Modes:
  cfop  full solve with cross, F2L pair, OLL and PLL splits
  f2l   one F2L case, cross on D, ends when the first two layers are done
  oll   one OLL case, ends when the last layer is oriented

Keyboard shortcuts:
  space   - New scramble
  tab     - Next training mode
  q/Esc   - Quit

With --simulate, a virtual cube is turned from the keyboard:
  u r f d l b        - Clockwise turn
  U R F D L B        - Counter-clockwise turn
  s                  - Apply the rest of the scramble
  z                  - Undo every turn since the cube was last solved`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainMode, "mode", "m", "", "Training mode (cfop, f2l, oll); default from config")
	trainCmd.Flags().BoolVar(&trainSimulate, "simulate", false, "Train on a simulated cube")
	trainCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(trainCmd)
}

func newMode(name string) (smartcube.Mode, error) {
	return scramble.NewMode(name, cfg.Training.ScrambleLength, uint64(time.Now().UnixNano()))
}

func runTrain(cmd *cobra.Command, args []string) error {
	modeName := cfg.Training.Mode
	if trainMode != "" {
		modeName = trainMode
	}
	mode, err := newMode(modeName)
	if err != nil {
		return err
	}

	key, err := cubeKey()
	if err != nil {
		if !trainSimulate {
			return err
		}
		key = demoKey
	}
	if !trainSimulate && cfg.Device.MAC == "" {
		return fmt.Errorf("no cube MAC configured; run 'smartcube config init --mac <addr>' or set SMARTCUBE_MAC")
	}
	inspection, err := cfg.InspectionDuration()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	state, err := openStateFile()
	if err != nil {
		return err
	}
	rec := recorder.New(storage.NewSolveRepository(db), state, logger)

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	model := newTrainModel(gctx, state)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))

	// Session callbacks run on whichever goroutine fed the session, never
	// inside Update, so p.Send cannot deadlock.
	session := smartcube.NewSession(mode,
		smartcube.WithKey(key),
		smartcube.WithAutoScramble(cfg.Training.AutoScramble),
		smartcube.WithAutoInspection(cfg.Training.AutoInspection),
		smartcube.WithStartTimerAutomatically(cfg.Training.StartTimerAutomatically),
		smartcube.WithInspection(inspection),
		smartcube.WithLogger(logger),
		smartcube.WithMetrics(m),
		smartcube.WithOnSolve(rec.OnSolve),
		smartcube.WithOnStateChange(func(s smartcube.SessionState) { p.Send(stateMsg(s)) }),
		smartcube.WithOnEvent(func(e smartcube.Event) { p.Send(eventMsg(e)) }),
		smartcube.WithOnMoves(func(moves []smartcube.TimedMove) { p.Send(movesMsg(moves)) }),
	)
	defer session.Close()
	rec.Notify(func(s recorder.Saved) { p.Send(savedMsg(s)) })
	model.session = session
	model.recorder = rec

	if trainSimulate {
		driver := newSimDriver(key, session, func(err error) { p.Send(errMsg{err}) })
		model.sim = driver
		model.deviceName = "simulator"
		g.Go(func() error { return driver.run(gctx) })
	} else {
		model.mac = cfg.Device.MAC
		model.key = key
	}

	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", metricsAddr))
			return metrics.Serve(gctx, metricsAddr, registry)
		})
	}

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if err != nil && gctx.Err() != nil {
			// Killed because another goroutine failed; report that error.
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if model.conn != nil {
		_ = model.conn.Close()
	}
	return nil
}

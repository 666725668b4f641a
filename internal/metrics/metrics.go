// Package metrics exposes session counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartcube"

// Metrics implements smartcube.MetricsRecorder.
type Metrics struct {
	notifications *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	moves         prometheus.Counter
	rewrites      prometheus.Counter
	solves        *prometheus.HistogramVec
}

// New creates the collectors and registers them with registerer.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Decrypted cube notifications by opcode.",
		}, []string{"opcode"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped as malformed, by reason.",
		}, []string{"reason"}),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Face turns decoded.",
		}),
		rewrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scramble_corrections_total",
			Help:      "Times a scramble was rewritten after a wrong turn.",
		}),
		solves: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Finished solve times by training mode.",
			Buckets:   []float64{2, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		}, []string{"mode"}),
	}

	for _, c := range []prometheus.Collector{m.notifications, m.dropped, m.moves, m.rewrites, m.solves} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) NotificationReceived(opcode string) {
	m.notifications.WithLabelValues(opcode).Inc()
}

func (m *Metrics) NotificationDropped(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) MovesDecoded(n int) {
	m.moves.Add(float64(n))
}

func (m *Metrics) ScrambleRewritten() {
	m.rewrites.Inc()
}

func (m *Metrics) SolveCompleted(mode string, d time.Duration) {
	m.solves.WithLabelValues(mode).Observe(d.Seconds())
}

// Serve serves gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SeamusWaldron/smartcube"
)

var _ smartcube.MetricsRecorder = (*Metrics)(nil)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.NotificationReceived("state_change")
	m.NotificationReceived("state_change")
	m.NotificationDropped("checksum")
	m.MovesDecoded(3)
	m.ScrambleRewritten()
	m.SolveCompleted("cfop", 12*time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(m.notifications.WithLabelValues("state_change")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dropped.WithLabelValues("checksum")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.moves), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rewrites), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.solves))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

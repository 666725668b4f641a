package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SeamusWaldron/smartcube/internal/storage"
)

func TestSummarize(t *testing.T) {
	d := &storage.SolveDetail{
		Solve: storage.Solve{SolveID: "s1", Duration: 4 * time.Second},
		Moves: []storage.MoveRecord{
			{Index: 0, CubeTsMs: 10_000, Notation: "R"},
			{Index: 1, CubeTsMs: 10_500, Notation: "U"},
			{Index: 2, CubeTsMs: 11_000, Notation: "R'"},
			{Index: 3, CubeTsMs: 13_000, Notation: "U'"},
		},
		Splits: []storage.Split{
			{Seq: 0, Event: "CROSS_SOLVED", Elapsed: 1 * time.Second},
			{Seq: 1, Event: "SOLVED", Elapsed: 4 * time.Second},
		},
	}

	s := Summarize(d)
	assert.Equal(t, "s1", s.SolveID)
	assert.Equal(t, 4, s.TotalMoves)
	assert.InDelta(t, 1.0, s.TPSOverall, 1e-9)
	assert.Equal(t, int64(2000), s.LongestPauseMs)
	assert.Equal(t, 1, s.PauseCount)
	assert.InDelta(t, 1000.0, s.AvgMoveDurationMs, 1e-9)

	assert.Equal(t, []PhaseStats{
		{Event: "CROSS_SOLVED", StartMs: 0, EndMs: 1000, DurationMs: 1000, MoveCount: 3, TPS: 3},
		{Event: "SOLVED", StartMs: 1000, EndMs: 4000, DurationMs: 3000, MoveCount: 1, TPS: 1.0 / 3},
	}, s.PhaseStats)
}

func TestSummarizeClockWrap(t *testing.T) {
	d := &storage.SolveDetail{
		Solve: storage.Solve{Duration: time.Second},
		Moves: []storage.MoveRecord{
			{CubeTsMs: 0xFFFFFF00},
			{CubeTsMs: 0x00000064},
		},
	}
	s := Summarize(d)
	assert.Equal(t, int64(0x164), s.LongestPauseMs)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&storage.SolveDetail{})
	assert.Zero(t, s.TotalMoves)
	assert.Zero(t, s.TPSOverall)
	assert.Empty(t, s.PhaseStats)
}

func TestTrimmedAverage(t *testing.T) {
	secs := func(v ...float64) []time.Duration {
		out := make([]time.Duration, len(v))
		for i, s := range v {
			out[i] = time.Duration(s * float64(time.Second))
		}
		return out
	}

	avg, ok := TrimmedAverage(secs(10, 12, 8, 30, 11), 5)
	assert.True(t, ok)
	assert.Equal(t, 11*time.Second, avg)

	_, ok = TrimmedAverage(secs(10, 12, 8), 5)
	assert.False(t, ok)

	_, ok = TrimmedAverage(secs(10, 12), 2)
	assert.False(t, ok)
}

func TestComputeAverages(t *testing.T) {
	var solves []storage.Solve
	for _, s := range []int{20, 15, 18, 25, 17, 16} {
		solves = append(solves, storage.Solve{Duration: time.Duration(s) * time.Second})
	}

	a := ComputeAverages(solves)
	assert.Equal(t, 6, a.Count)
	assert.Equal(t, 15*time.Second, a.Best)
	assert.Equal(t, 25*time.Second, a.Worst)
	assert.Equal(t, (111*time.Second)/6, a.Mean)
	// 20 15 18 25 17 -> 17 18 20
	assert.Equal(t, (55*time.Second)/3, a.Ao5)
	assert.Zero(t, a.Ao12)

	assert.Equal(t, Averages{}, ComputeAverages(nil))
}

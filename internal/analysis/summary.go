// Package analysis computes statistics for stored solves.
package analysis

import (
	"github.com/SeamusWaldron/smartcube/internal/storage"
)

// PauseThresholdMs is the gap between turns counted as a pause.
const PauseThresholdMs = 1500

// SolveSummary contains statistics for a single solve.
type SolveSummary struct {
	SolveID           string       `json:"solve_id"`
	DurationMs        int64        `json:"duration_ms"`
	TotalMoves        int          `json:"total_moves"`
	TPSOverall        float64      `json:"tps_overall"`
	PhaseStats        []PhaseStats `json:"phase_stats,omitempty"`
	LongestPauseMs    int64        `json:"longest_pause_ms"`
	PauseCount        int          `json:"pause_count"`
	AvgMoveDurationMs float64      `json:"avg_move_duration_ms"`
}

// PhaseStats contains statistics for the stretch of a solve that ended at
// one split.
type PhaseStats struct {
	Event      string  `json:"event"`
	StartMs    int64   `json:"start_ms"`
	EndMs      int64   `json:"end_ms"`
	DurationMs int64   `json:"duration_ms"`
	MoveCount  int     `json:"move_count"`
	TPS        float64 `json:"tps"`
}

// Summarize computes the statistics of d. Turn times come from the cube
// clock and are placed relative to the first turn, which started the
// timer.
func Summarize(d *storage.SolveDetail) *SolveSummary {
	offsets := moveOffsets(d.Moves)
	s := &SolveSummary{
		SolveID:           d.SolveID,
		DurationMs:        d.Duration.Milliseconds(),
		TotalMoves:        len(d.Moves),
		TPSOverall:        CalculateTPS(len(d.Moves), d.Duration.Milliseconds()),
		LongestPauseMs:    FindLongestPause(offsets),
		PauseCount:        CountPausesOver(offsets, PauseThresholdMs),
		AvgMoveDurationMs: CalculateAvgMoveDuration(offsets),
	}

	var start int64
	next := 0
	for _, split := range d.Splits {
		end := split.Elapsed.Milliseconds()
		count := 0
		for next < len(offsets) && offsets[next] <= end {
			count++
			next++
		}
		s.PhaseStats = append(s.PhaseStats, PhaseStats{
			Event:      split.Event,
			StartMs:    start,
			EndMs:      end,
			DurationMs: end - start,
			MoveCount:  count,
			TPS:        CalculateTPS(count, end-start),
		})
		start = end
	}
	return s
}

// moveOffsets returns each turn's time in ms since the first turn. The
// cube clock is 32 bits, so differences are taken modulo 2^32.
func moveOffsets(moves []storage.MoveRecord) []int64 {
	offsets := make([]int64, len(moves))
	for i, m := range moves {
		offsets[i] = int64(m.CubeTsMs - moves[0].CubeTsMs)
	}
	return offsets
}

// CalculateTPS calculates turns per second.
func CalculateTPS(moves int, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	return float64(moves) / (float64(durationMs) / 1000.0)
}

// CalculateAvgMoveDuration calculates the average time between turns.
func CalculateAvgMoveDuration(offsets []int64) float64 {
	if len(offsets) < 2 {
		return 0
	}
	return float64(offsets[len(offsets)-1]-offsets[0]) / float64(len(offsets)-1)
}

// FindLongestPause finds the longest gap between turns.
func FindLongestPause(offsets []int64) int64 {
	var longest int64
	for i := 1; i < len(offsets); i++ {
		if gap := offsets[i] - offsets[i-1]; gap > longest {
			longest = gap
		}
	}
	return longest
}

// CountPausesOver counts gaps longer than thresholdMs.
func CountPausesOver(offsets []int64, thresholdMs int64) int {
	count := 0
	for i := 1; i < len(offsets); i++ {
		if offsets[i]-offsets[i-1] > thresholdMs {
			count++
		}
	}
	return count
}

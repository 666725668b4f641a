package analysis

import (
	"slices"
	"time"

	"github.com/SeamusWaldron/smartcube/internal/storage"
)

// Averages summarises a run of solves of one mode.
type Averages struct {
	Count int           `json:"count"`
	Best  time.Duration `json:"best"`
	Worst time.Duration `json:"worst"`
	Mean  time.Duration `json:"mean"`
	Ao5   time.Duration `json:"ao5,omitempty"`
	Ao12  time.Duration `json:"ao12,omitempty"`
}

// ComputeAverages computes averages over solves, newest first as returned
// by SolveRepository.List. Ao5 and Ao12 cover the most recent solves and
// are zero when there are too few.
func ComputeAverages(solves []storage.Solve) Averages {
	a := Averages{Count: len(solves)}
	if len(solves) == 0 {
		return a
	}

	times := make([]time.Duration, len(solves))
	var total time.Duration
	for i, s := range solves {
		times[i] = s.Duration
		total += s.Duration
	}
	a.Best = slices.Min(times)
	a.Worst = slices.Max(times)
	a.Mean = total / time.Duration(len(times))

	if avg, ok := TrimmedAverage(times, 5); ok {
		a.Ao5 = avg
	}
	if avg, ok := TrimmedAverage(times, 12); ok {
		a.Ao12 = avg
	}
	return a
}

// TrimmedAverage averages the first n times after dropping the best and
// the worst one. It reports false when fewer than n times are given or n
// is below 3.
func TrimmedAverage(times []time.Duration, n int) (time.Duration, bool) {
	if n < 3 || len(times) < n {
		return 0, false
	}
	window := slices.Clone(times[:n])
	slices.Sort(window)

	var total time.Duration
	for _, t := range window[1 : n-1] {
		total += t
	}
	return total / time.Duration(n-2), true
}

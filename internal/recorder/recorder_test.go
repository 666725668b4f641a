package recorder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/storage"
)

func TestStateFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.json")

	sf, err := NewStateFile(path)
	require.NoError(t, err)
	assert.Equal(t, AppState{}, sf.State())

	require.NoError(t, sf.SetLastDevice("CC:A3:00:00:25:13", "QY-QYSC-S-2513"))
	require.NoError(t, sf.SetLastSolve("abc"))

	reloaded, err := NewStateFile(path)
	require.NoError(t, err)
	assert.Equal(t, AppState{
		LastDeviceAddress: "CC:A3:00:00:25:13",
		LastDeviceName:    "QY-QYSC-S-2513",
		LastSolveID:       "abc",
	}, reloaded.State())
}

func TestStateFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := NewStateFile(path)
	assert.Error(t, err)
}

func TestRecorderSavesSolve(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "solves.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewSolveRepository(db)
	sf, err := NewStateFile(filepath.Join(dir, "state.json"))
	require.NoError(t, err)

	rec := New(repo, sf, nil)
	rec.SetDeviceName("QY-test")

	var saved []Saved
	rec.Notify(func(s Saved) { saved = append(saved, s) })

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec.OnSolve(smartcube.SolveRecord{
		Mode:     "cfop",
		Scramble: smartcube.Scramble{Moves: smartcube.MustParseMoves("R U"), Index: -1},
		Moves:    []smartcube.TimedMove{{Move: smartcube.UPrime, Timestamp: 10}, {Move: smartcube.RPrime, Timestamp: 20}},
		Start:    start,
		End:      start.Add(4 * time.Second),
		Duration: 4 * time.Second,
	})

	require.Len(t, saved, 1)
	require.NoError(t, saved[0].Err)
	assert.Equal(t, saved[0].ID, sf.State().LastSolveID)

	got, err := repo.Get(context.Background(), saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "QY-test", got.DeviceName)
	assert.Equal(t, 2, got.MoveCount)
	assert.Equal(t, 4*time.Second, got.Duration)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SeamusWaldron/smartcube"
)

// timeLayout is fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotFound is returned by Get for an unknown solve ID.
var ErrNotFound = errors.New("storage: solve not found")

// Solve is a stored solve summary.
type Solve struct {
	SolveID    string
	Mode       string
	Scramble   string
	CaseIndex  int
	CrossFace  string
	StartedAt  time.Time
	EndedAt    time.Time
	Duration   time.Duration
	MoveCount  int
	DeviceName string
}

// MoveRecord is one stored turn of a solve.
type MoveRecord struct {
	Index    int
	CubeTsMs uint32
	Notation string
}

// Split is one stored checkpoint of a solve.
type Split struct {
	Seq     int
	Event   string
	Elapsed time.Duration
}

// SolveDetail is a solve with its turns and splits.
type SolveDetail struct {
	Solve
	Moves  []MoveRecord
	Splits []Split
}

// SolveRepository stores finished solves.
type SolveRepository struct {
	db  *DB
	now func() time.Time
}

// NewSolveRepository creates a new solve repository.
func NewSolveRepository(db *DB) *SolveRepository {
	return &SolveRepository{db: db, now: time.Now}
}

// Save stores rec with its turns and splits in one transaction and returns
// the new solve ID.
func (r *SolveRepository) Save(ctx context.Context, rec smartcube.SolveRecord, deviceName string) (string, error) {
	id := uuid.New().String()

	start := rec.Start
	if start.IsZero() {
		start = r.now().Add(-rec.Duration)
	}
	end := rec.End
	if end.IsZero() {
		end = start.Add(rec.Duration)
	}

	var device *string
	if deviceName != "" {
		device = &deviceName
	}
	var cross *string
	if rec.CrossFace != "" {
		face := string(rec.CrossFace)
		cross = &face
	}

	err := r.db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO solves (solve_id, mode, scramble_text, case_index, cross_face, started_at, ended_at, duration_ms, move_count, device_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, rec.Mode, rec.Scramble.String(), rec.Scramble.Index, cross,
			start.UTC().Format(timeLayout), end.UTC().Format(timeLayout),
			rec.Duration.Milliseconds(), len(rec.Moves), device)
		if err != nil {
			return fmt.Errorf("failed to create solve: %w", err)
		}

		for i, m := range rec.Moves {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO moves (solve_id, move_index, cube_ts_ms, face, turn, notation)
				VALUES (?, ?, ?, ?, ?, ?)
			`, id, i, int64(m.Timestamp), string(m.Face), int(m.Turn), m.Notation())
			if err != nil {
				return fmt.Errorf("failed to create move %d: %w", i, err)
			}
		}

		for i, cp := range rec.Checkpoints {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO checkpoints (solve_id, seq, event, elapsed_ms)
				VALUES (?, ?, ?, ?)
			`, id, i, cp.Kind.String(), cp.Elapsed.Milliseconds())
			if err != nil {
				return fmt.Errorf("failed to create checkpoint %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

const solveColumns = `solve_id, mode, scramble_text, case_index, cross_face, started_at, ended_at, duration_ms, move_count, device_name`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSolve(row rowScanner) (Solve, error) {
	var (
		s          Solve
		cross      sql.NullString
		device     sql.NullString
		startedAt  string
		endedAt    string
		durationMs int64
	)
	err := row.Scan(&s.SolveID, &s.Mode, &s.Scramble, &s.CaseIndex, &cross,
		&startedAt, &endedAt, &durationMs, &s.MoveCount, &device)
	if err != nil {
		return Solve{}, err
	}
	s.CrossFace = cross.String
	s.DeviceName = device.String
	s.Duration = time.Duration(durationMs) * time.Millisecond
	if s.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Solve{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	if s.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return Solve{}, fmt.Errorf("failed to parse end time: %w", err)
	}
	return s, nil
}

// List returns up to limit recent solves, newest first. An empty mode
// lists every mode.
func (r *SolveRepository) List(ctx context.Context, mode string, limit int) ([]Solve, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+solveColumns+`
		FROM solves
		WHERE ? = '' OR mode = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, mode, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list solves: %w", err)
	}
	defer rows.Close()

	var solves []Solve
	for rows.Next() {
		s, err := scanSolve(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan solve: %w", err)
		}
		solves = append(solves, s)
	}
	return solves, rows.Err()
}

// Get returns a solve with its turns and splits.
func (r *SolveRepository) Get(ctx context.Context, solveID string) (*SolveDetail, error) {
	s, err := scanSolve(r.db.QueryRowContext(ctx, `SELECT `+solveColumns+` FROM solves WHERE solve_id = ?`, solveID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, solveID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solve: %w", err)
	}

	detail := &SolveDetail{Solve: s}
	if detail.Moves, err = r.moves(ctx, solveID); err != nil {
		return nil, err
	}
	if detail.Splits, err = r.Splits(ctx, solveID); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *SolveRepository) moves(ctx context.Context, solveID string) ([]MoveRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT move_index, cube_ts_ms, notation
		FROM moves
		WHERE solve_id = ?
		ORDER BY move_index
	`, solveID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		var ts int64
		if err := rows.Scan(&m.Index, &ts, &m.Notation); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		m.CubeTsMs = uint32(ts)
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// Splits returns the checkpoints of a solve in order.
func (r *SolveRepository) Splits(ctx context.Context, solveID string) ([]Split, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, event, elapsed_ms
		FROM checkpoints
		WHERE solve_id = ?
		ORDER BY seq
	`, solveID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []Split
	for rows.Next() {
		var s Split
		var ms int64
		if err := rows.Scan(&s.Seq, &s.Event, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		s.Elapsed = time.Duration(ms) * time.Millisecond
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

// Best returns the fastest solve of mode.
func (r *SolveRepository) Best(ctx context.Context, mode string) (*Solve, error) {
	s, err := scanSolve(r.db.QueryRowContext(ctx, `
		SELECT `+solveColumns+`
		FROM solves
		WHERE mode = ?
		ORDER BY duration_ms ASC
		LIMIT 1
	`, mode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s solves", ErrNotFound, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get best solve: %w", err)
	}
	return &s, nil
}

// Delete deletes a solve with its turns and splits.
func (r *SolveRepository) Delete(ctx context.Context, solveID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM solves WHERE solve_id = ?", solveID)
	if err != nil {
		return fmt.Errorf("failed to delete solve: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, solveID)
	}
	return nil
}

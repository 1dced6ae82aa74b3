package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"habitwatch/internal/modules/stats/domain"
	"habitwatch/internal/modules/stats/dto"
	statsout "habitwatch/internal/modules/stats/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (statsout.HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS habit_sessions (
  run_id TEXT NOT NULL,
  class TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  duration_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  total_detections INTEGER NOT NULL,
  total_habit_ms INTEGER NOT NULL,
  session_count INTEGER NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) SaveSession(ctx context.Context, runID string, session domain.Session) error {
	const stmt = `
INSERT INTO habit_sessions (run_id, class, started_at, ended_at, duration_ms)
VALUES (?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		runID,
		session.Class,
		session.Start.Format(time.RFC3339Nano),
		session.End.Format(time.RFC3339Nano),
		session.Duration().Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save habit session: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) SaveRunSummary(ctx context.Context, runID string, snap dto.Snapshot, startedAt, endedAt time.Time) error {
	const stmt = `
INSERT INTO runs (run_id, started_at, ended_at, total_detections, total_habit_ms, session_count)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  ended_at=excluded.ended_at,
  total_detections=excluded.total_detections,
  total_habit_ms=excluded.total_habit_ms,
  session_count=excluded.session_count;
`
	_, err := s.db.ExecContext(ctx, stmt,
		runID,
		startedAt.Format(time.RFC3339Nano),
		endedAt.Format(time.RFC3339Nano),
		snap.TotalDetections,
		snap.TotalHabitTime.Milliseconds(),
		snap.SessionCount,
	)
	if err != nil {
		return fmt.Errorf("save run summary: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) SessionCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habit_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count habit sessions: %w", err)
	}
	return n, nil
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fastrack/internal/modules/fasting/domain"

	_ "modernc.org/sqlite"
)

// SQLiteHistoryProjector mirrors history into a queryable table. It is a
// derived index; the state blob stays authoritative.
type SQLiteHistoryProjector struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteHistoryProjector opens dbPath. Calendar days are taken in loc,
// or the local zone when loc is nil.
func NewSQLiteHistoryProjector(dbPath string, loc *time.Location) (*SQLiteHistoryProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	projector := &SQLiteHistoryProjector{db: db, loc: loc}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteHistoryProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS fasts (
  id INTEGER PRIMARY KEY,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  day TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  goal_hours REAL NOT NULL,
  met_goal INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fasts_day ON fasts(day);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create fasts table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fasts`); err != nil {
		return fmt.Errorf("reset fasts: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) UpsertRecord(ctx context.Context, record domain.Record) error {
	const stmt = `
INSERT INTO fasts (id, started_at, ended_at, day, duration_ms, goal_hours, met_goal)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  day=excluded.day,
  duration_ms=excluded.duration_ms,
  goal_hours=excluded.goal_hours,
  met_goal=excluded.met_goal;
`
	metGoal := 0
	if record.MetGoal {
		metGoal = 1
	}
	_, err := s.db.ExecContext(ctx, stmt,
		record.ID,
		record.Start.Format(time.RFC3339Nano),
		record.End.Format(time.RFC3339Nano),
		record.End.In(s.loc).Format(domain.DayLayout),
		record.Duration.Milliseconds(),
		record.Goal,
		metGoal,
	)
	if err != nil {
		return fmt.Errorf("upsert fast: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) DeleteRecord(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fasts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete fast: %w", err)
	}
	return nil
}

// DailyTotals groups fasts by the day they ended, newest day first. A zero
// since returns every day.
func (s *SQLiteHistoryProjector) DailyTotals(ctx context.Context, since time.Time) ([]domain.DailyTotal, error) {
	from := ""
	if !since.IsZero() {
		from = since.In(s.loc).Format(domain.DayLayout)
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT day, COUNT(*), COALESCE(SUM(met_goal), 0), COALESCE(SUM(duration_ms), 0)
FROM fasts
WHERE day >= ?
GROUP BY day
ORDER BY day DESC`, from)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyTotal{}
	for rows.Next() {
		var (
			total   domain.DailyTotal
			totalMS int64
		)
		if err := rows.Scan(&total.Day, &total.Fasts, &total.GoalsMet, &totalMS); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		total.Total = time.Duration(totalMS) * time.Millisecond
		out = append(out, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily totals: %w", err)
	}
	return out, nil
}

func (s *SQLiteHistoryProjector) Close() error {
	return s.db.Close()
}

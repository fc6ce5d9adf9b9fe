package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	place      TEXT NOT NULL,
	summary    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS street_progress (
	street  TEXT PRIMARY KEY,
	done    INTEGER NOT NULL DEFAULT 0,
	done_by TEXT,
	done_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_plans_place ON plans(place);
CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SavePlan(ctx context.Context, place string, summary model.PlanSummary) (*model.PlanRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal plan summary")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, place, summary, created_at) VALUES (?, ?, ?, ?)`,
		id, place, string(summaryJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert plan")
	}

	return &model.PlanRecord{
		ID:        id,
		Place:     place,
		Summary:   summary,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*model.PlanRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, place, summary, created_at FROM plans WHERE id = ?`, id)

	rec, err := scanPlan(row)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, eris.Errorf("plan not found: %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) LatestPlan(ctx context.Context, place string) (*model.PlanRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, place, summary, created_at FROM plans
		 WHERE place = ? ORDER BY created_at DESC, id LIMIT 1`, place)
	return scanPlan(row)
}

func (s *SQLiteStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.PlanRecord, error) {
	query := `SELECT id, place, summary, created_at FROM plans WHERE 1=1`
	var args []any

	if filter.Place != "" {
		query += ` AND place = ?`
		args = append(args, filter.Place)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plans")
	}
	defer rows.Close()

	var records []model.PlanRecord
	for rows.Next() {
		rec, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list plans iterate")
}

func (s *SQLiteStore) MarkStreetDone(ctx context.Context, street, by string) error {
	if street == "" {
		return eris.New("sqlite: street name is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO street_progress (street, done, done_by, done_at) VALUES (?, 1, ?, ?)
		 ON CONFLICT(street) DO UPDATE SET done = 1, done_by = excluded.done_by, done_at = excluded.done_at`,
		street, by, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: mark street done %q", street)
}

func (s *SQLiteStore) MarkStreetOpen(ctx context.Context, street string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE street_progress SET done = 0, done_by = NULL, done_at = NULL WHERE street = ?`,
		street,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark street open %q", street)
	}
	return checkRowsAffected(res, "street", street)
}

func (s *SQLiteStore) ListProgress(ctx context.Context) ([]model.ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT street, done, done_by, done_at FROM street_progress ORDER BY street`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list progress")
	}
	defer rows.Close()

	var entries []model.ProgressEntry
	for rows.Next() {
		var e model.ProgressEntry
		var done int
		var doneBy sql.NullString
		var doneAt sql.NullTime
		if err := rows.Scan(&e.Street, &done, &doneBy, &doneAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan progress row")
		}
		e.Done = done != 0
		if doneBy.Valid {
			e.DoneBy = doneBy.String
		}
		if doneAt.Valid {
			t := doneAt.Time.UTC()
			e.DoneAt = &t
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list progress iterate")
}

func (s *SQLiteStore) ResetProgress(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM street_progress`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: reset progress")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanPlan reads one plan row. A missing row returns nil, nil so callers
// can distinguish "no plan yet" from real failures.
func scanPlan(row scannable) (*model.PlanRecord, error) {
	var rec model.PlanRecord
	var summaryJSON string

	err := row.Scan(&rec.ID, &rec.Place, &summaryJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan plan")
	}

	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal plan summary")
	}
	return &rec, nil
}

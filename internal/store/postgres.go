package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/db"
	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_plan":      `INSERT INTO plans (id, place, summary, created_at) VALUES ($1, $2, $3, $4)`,
	"get_plan":         `SELECT id, place, summary, created_at FROM plans WHERE id = $1`,
	"latest_plan":      `SELECT id, place, summary, created_at FROM plans WHERE place = $1 ORDER BY created_at DESC, id LIMIT 1`,
	"mark_street_done": `INSERT INTO street_progress (street, done, done_by, done_at) VALUES ($1, true, $2, $3) ON CONFLICT (street) DO UPDATE SET done = true, done_by = $2, done_at = $3`,
	"mark_street_open": `UPDATE street_progress SET done = false, done_by = NULL, done_at = NULL WHERE street = $1`,
	"list_progress":    `SELECT street, done, done_by, done_at FROM street_progress ORDER BY street`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place      TEXT NOT NULL,
	summary    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS street_progress (
	street  TEXT PRIMARY KEY,
	done    BOOLEAN NOT NULL DEFAULT false,
	done_by TEXT,
	done_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_plans_place ON plans(place);
CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SavePlan(ctx context.Context, place string, summary model.PlanSummary) (*model.PlanRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal plan summary")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO plans (id, place, summary, created_at) VALUES ($1, $2, $3, $4)`,
		id, place, summaryJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert plan")
	}

	return &model.PlanRecord{
		ID:        id,
		Place:     place,
		Summary:   summary,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*model.PlanRecord, error) {
	var rec model.PlanRecord
	var summaryJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, place, summary, created_at FROM plans WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Place, &summaryJSON, &rec.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plan %s", id)
	}

	if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal plan summary")
	}
	return &rec, nil
}

func (s *PostgresStore) LatestPlan(ctx context.Context, place string) (*model.PlanRecord, error) {
	var rec model.PlanRecord
	var summaryJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, place, summary, created_at FROM plans
		 WHERE place = $1 ORDER BY created_at DESC, id LIMIT 1`,
		place,
	).Scan(&rec.ID, &rec.Place, &summaryJSON, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: latest plan for %s", place)
	}

	if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal plan summary")
	}
	return &rec, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.PlanRecord, error) {
	query := `SELECT id, place, summary, created_at FROM plans WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Place != "" {
		query += fmt.Sprintf(` AND place = $%d`, argIdx)
		args = append(args, filter.Place)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plans")
	}
	defer rows.Close()

	var records []model.PlanRecord
	for rows.Next() {
		var rec model.PlanRecord
		var summaryJSON []byte
		if err := rows.Scan(&rec.ID, &rec.Place, &summaryJSON, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan")
		}
		if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal plan summary")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list plans iterate")
}

func (s *PostgresStore) MarkStreetDone(ctx context.Context, street, by string) error {
	if street == "" {
		return eris.New("postgres: street name is required")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO street_progress (street, done, done_by, done_at) VALUES ($1, true, $2, $3)
		 ON CONFLICT (street) DO UPDATE SET done = true, done_by = $2, done_at = $3`,
		street, by, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: mark street done %q", street)
}

func (s *PostgresStore) MarkStreetOpen(ctx context.Context, street string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE street_progress SET done = false, done_by = NULL, done_at = NULL WHERE street = $1`,
		street,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark street open %q", street)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("street not found: %s", street)
	}
	return nil
}

func (s *PostgresStore) ListProgress(ctx context.Context) ([]model.ProgressEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT street, done, done_by, done_at FROM street_progress ORDER BY street`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list progress")
	}
	defer rows.Close()

	var entries []model.ProgressEntry
	for rows.Next() {
		var e model.ProgressEntry
		var doneBy *string
		var doneAt *time.Time
		if err := rows.Scan(&e.Street, &e.Done, &doneBy, &doneAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan progress row")
		}
		if doneBy != nil {
			e.DoneBy = *doneBy
		}
		if doneAt != nil {
			t := doneAt.UTC()
			e.DoneAt = &t
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list progress iterate")
}

func (s *PostgresStore) ResetProgress(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM street_progress`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: reset progress")
	}
	return int(tag.RowsAffected()), nil
}

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

	"github.com/sells-group/buyergroup-cli/internal/db"
	"github.com/sells-group/buyergroup-cli/internal/model"
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
	"insert_run":        `INSERT INTO runs (id, company, deal_size, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_run":           `SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs WHERE id = $1`,
	"get_group":         `SELECT id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at FROM buyer_groups WHERE id = $1`,
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

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company    JSONB NOT NULL,
	deal_size  DOUBLE PRECISION NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	group_id   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_candidates (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	candidate_id TEXT NOT NULL,
	payload      JSONB NOT NULL,
	PRIMARY KEY (run_id, candidate_id)
);

CREATE TABLE IF NOT EXISTS buyer_groups (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id          TEXT NOT NULL REFERENCES runs(id),
	company         JSONB NOT NULL,
	tier            TEXT NOT NULL,
	deal_size       DOUBLE PRECISION NOT NULL DEFAULT 0,
	members         JSONB NOT NULL,
	valid           BOOLEAN NOT NULL DEFAULT false,
	score           INTEGER NOT NULL DEFAULT 0,
	action          TEXT,
	action_message  TEXT,
	action_priority TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_company_domain ON runs((company->>'domain'));
CREATE INDEX IF NOT EXISTS idx_buyer_groups_run_id ON buyer_groups(run_id);
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

func (s *PostgresStore) CreateRun(ctx context.Context, company model.Company, dealSize float64) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	companyJSON, err := json.Marshal(company)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal company")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, company, deal_size, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, companyJSON, dealSize, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Company:   company,
		DealSize:  dealSize,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var companyJSON []byte
	var errMsg, groupID *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &companyJSON, &r.DealSize, &r.Status, &errMsg, &groupID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(companyJSON, &r.Company); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal company")
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	if groupID != nil {
		r.GroupID = *groupID
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND company->>'domain' = $%d`, argIdx)
		args = append(args, filter.Domain)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var companyJSON []byte
		var errMsg, groupID *string

		if err := rows.Scan(&r.ID, &companyJSON, &r.DealSize, &r.Status, &errMsg, &groupID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(companyJSON, &r.Company); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal company")
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		if groupID != nil {
			r.GroupID = *groupID
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveCandidates bulk-upserts the discovered candidate pool for a run.
// Re-running discovery replaces each candidate's payload in place.
func (s *PostgresStore) SaveCandidates(ctx context.Context, runID string, candidates []model.CandidateEmployee) error {
	if len(candidates) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(candidates))
	for _, c := range candidates {
		payload, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal candidate")
		}
		rows = append(rows, []any{runID, c.ID, payload})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "run_candidates",
		Columns:      []string{"run_id", "candidate_id", "payload"},
		ConflictKeys: []string{"run_id", "candidate_id"},
	}, rows)
	return eris.Wrapf(err, "postgres: save candidates for run %s", runID)
}

func (s *PostgresStore) SaveGroup(ctx context.Context, group *model.BuyerGroup) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	companyJSON, err := json.Marshal(group.Company)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}
	membersJSON, err := json.Marshal(group.Members)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal members")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO buyer_groups
		 (id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		group.ID, group.RunID, companyJSON, group.Tier, group.DealSize,
		membersJSON, group.Valid, group.Score,
		group.Action, group.ActionMessage, group.ActionPriority, group.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert group")
	}

	_, err = tx.Exec(ctx,
		`UPDATE runs SET group_id = $1, updated_at = $2 WHERE id = $3`,
		group.ID, time.Now().UTC(), group.RunID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: link group to run %s", group.RunID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit group")
}

func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*model.BuyerGroup, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at
		 FROM buyer_groups WHERE id = $1`,
		groupID,
	)
	g, err := scanPGGroup(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get group %s", groupID)
	}
	return g, nil
}

func (s *PostgresStore) GetGroupByRun(ctx context.Context, runID string) (*model.BuyerGroup, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at
		 FROM buyer_groups WHERE run_id = $1 ORDER BY created_at DESC LIMIT 1`,
		runID,
	)
	g, err := scanPGGroup(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get group for run %s", runID)
	}
	return g, nil
}

func scanPGGroup(row pgx.Row) (*model.BuyerGroup, error) {
	var g model.BuyerGroup
	var companyJSON, membersJSON []byte
	var action, actionMessage, actionPriority *string

	err := row.Scan(&g.ID, &g.RunID, &companyJSON, &g.Tier, &g.DealSize, &membersJSON,
		&g.Valid, &g.Score, &action, &actionMessage, &actionPriority, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.New("group not found")
		}
		return nil, eris.Wrap(err, "scan group")
	}

	if err := json.Unmarshal(companyJSON, &g.Company); err != nil {
		return nil, eris.Wrap(err, "unmarshal company")
	}
	if err := json.Unmarshal(membersJSON, &g.Members); err != nil {
		return nil, eris.Wrap(err, "unmarshal members")
	}
	if action != nil {
		g.Action = *action
	}
	if actionMessage != nil {
		g.ActionMessage = *actionMessage
	}
	if actionPriority != nil {
		g.ActionPriority = *actionPriority
	}
	return &g, nil
}

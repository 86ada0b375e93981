package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/buyergroup-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	company    TEXT NOT NULL,
	deal_size  REAL NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	group_id   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_candidates (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	candidate_id TEXT NOT NULL,
	payload      TEXT NOT NULL,
	PRIMARY KEY (run_id, candidate_id)
);

CREATE TABLE IF NOT EXISTS buyer_groups (
	id              TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL REFERENCES runs(id),
	company         TEXT NOT NULL,
	tier            TEXT NOT NULL,
	deal_size       REAL NOT NULL DEFAULT 0,
	members         TEXT NOT NULL,
	valid           INTEGER NOT NULL DEFAULT 0,
	score           INTEGER NOT NULL DEFAULT 0,
	action          TEXT,
	action_message  TEXT,
	action_priority TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company);
CREATE INDEX IF NOT EXISTS idx_buyer_groups_run_id ON buyer_groups(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, company model.Company, dealSize float64) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	companyJSON, err := json.Marshal(company)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal company")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, company, deal_size, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(companyJSON), dealSize, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Domain != "" {
		query += ` AND json_extract(company, '$.domain') = ?`
		args = append(args, filter.Domain)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveCandidates(ctx context.Context, runID string, candidates []model.CandidateEmployee) error {
	if len(candidates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for _, c := range candidates {
		payload, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal candidate")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_candidates (run_id, candidate_id, payload) VALUES (?, ?, ?)
			 ON CONFLICT (run_id, candidate_id) DO UPDATE SET payload = excluded.payload`,
			runID, c.ID, string(payload),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save candidate %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit candidates")
}

func (s *SQLiteStore) SaveGroup(ctx context.Context, group *model.BuyerGroup) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	companyJSON, err := json.Marshal(group.Company)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company")
	}
	membersJSON, err := json.Marshal(group.Members)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal members")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO buyer_groups
		 (id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.RunID, string(companyJSON), group.Tier, group.DealSize,
		string(membersJSON), group.Valid, group.Score,
		group.Action, group.ActionMessage, group.ActionPriority, group.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert group")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET group_id = ?, updated_at = ? WHERE id = ?`,
		group.ID, time.Now().UTC(), group.RunID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: link group to run %s", group.RunID)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit group")
}

func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*model.BuyerGroup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at
		 FROM buyer_groups WHERE id = ?`,
		groupID,
	)
	return scanGroup(row)
}

func (s *SQLiteStore) GetGroupByRun(ctx context.Context, runID string) (*model.BuyerGroup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, company, tier, deal_size, members, valid, score, action, action_message, action_priority, created_at
		 FROM buyer_groups WHERE run_id = ? ORDER BY created_at DESC LIMIT 1`,
		runID,
	)
	return scanGroup(row)
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

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var companyJSON string
	var errMsg, groupID sql.NullString

	err := row.Scan(&r.ID, &companyJSON, &r.DealSize, &r.Status, &errMsg, &groupID, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(companyJSON), &r.Company); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	r.Error = errMsg.String
	r.GroupID = groupID.String
	return &r, nil
}

func scanGroup(row scannable) (*model.BuyerGroup, error) {
	var g model.BuyerGroup
	var companyJSON, membersJSON string
	var action, actionMessage, actionPriority sql.NullString

	err := row.Scan(&g.ID, &g.RunID, &companyJSON, &g.Tier, &g.DealSize, &membersJSON,
		&g.Valid, &g.Score, &action, &actionMessage, &actionPriority, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("group not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan group")
	}

	if err := json.Unmarshal([]byte(companyJSON), &g.Company); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	if err := json.Unmarshal([]byte(membersJSON), &g.Members); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal members")
	}
	g.Action = action.String
	g.ActionMessage = actionMessage.String
	g.ActionPriority = actionPriority.String
	return &g, nil
}

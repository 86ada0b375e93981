package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 150_000.0, "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), testCompany(), 150_000)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	companyJSON, err := json.Marshal(testCompany())
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, company, deal_size, status, error, group_id, created_at, updated_at FROM runs`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "company", "deal_size", "status", "error", "group_id", "created_at", "updated_at"},
		).AddRow("run-1", companyJSON, 150_000.0, model.RunStatus("complete"), (*string)(nil), ptr("group-1"), now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "acme.com", run.Company.Domain)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "group-1", run.GroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("sizing", pgxmock.AnyArg(), "nonexistent").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusSizing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, error = \$2`).
		WithArgs("failed", "verify timeout", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailRun(context.Background(), "run-1", "verify timeout"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCandidates_BulkUpsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_run_candidates"}, []string{"run_id", "candidate_id", "payload"}).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "run_candidates" .+ ON CONFLICT`).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	cands := []model.CandidateEmployee{
		{ID: "c1", FullName: "Jane Smith"},
		{ID: "c2", FullName: "Bob Lee"},
	}
	require.NoError(t, s.SaveCandidates(context.Background(), "run-1", cands))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCandidates_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	require.NoError(t, s.SaveCandidates(context.Background(), "run-1", nil))
}

func TestPostgresStore_SaveGroup(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO buyer_groups`).
		WithArgs(pgxmock.AnyArg(), "run-1", pgxmock.AnyArg(), "M1", 0.0,
			pgxmock.AnyArg(), false, 0, "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE runs SET group_id`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	group := &model.BuyerGroup{RunID: "run-1", Company: testCompany(), Tier: "M1"}
	require.NoError(t, s.SaveGroup(context.Background(), group))
	assert.NotEmpty(t, group.ID)
	assert.False(t, group.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetGroup_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM buyer_groups WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetGroup(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string { return &s }

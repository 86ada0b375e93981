package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
	"github.com/sells-group/buyergroup-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testCompany() model.Company {
	return model.Company{
		Domain:        "acme.com",
		Name:          "Acme Corp",
		Revenue:       50_000_000,
		EmployeeCount: 200,
	}
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testCompany(), 150_000)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme.com", got.Company.Domain)
	assert.Equal(t, 150_000.0, got.DealSize)
	assert.Equal(t, model.RunStatusQueued, got.Status)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testCompany(), 0)
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusSizing))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSizing, got.Status)

	err = st.UpdateRunStatus(ctx, "nonexistent", model.RunStatusComplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testCompany(), 0)
	require.NoError(t, err)

	require.NoError(t, st.FailRun(ctx, run.ID, "directory timeout"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "directory timeout", got.Error)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, testCompany(), 0)
	require.NoError(t, err)
	other := testCompany()
	other.Domain = "globex.com"
	_, err = st.CreateRun(ctx, other, 0)
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, r1.ID, runs[0].ID)

	runs, err = st.ListRuns(ctx, RunFilter{Domain: "globex.com"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "globex.com", runs[0].Company.Domain)

	runs, err = st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// --- Candidates ---

func TestSQLite_SaveCandidates_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testCompany(), 0)
	require.NoError(t, err)

	cands := []model.CandidateEmployee{
		{ID: "c1", FullName: "Jane Smith", Title: "CFO", OverallScore: 90},
		{ID: "c2", FullName: "Bob Lee", Title: "VP Sales", OverallScore: 80},
	}
	require.NoError(t, st.SaveCandidates(ctx, run.ID, cands))

	// Re-saving the same candidate updates the payload in place.
	cands[0].OverallScore = 95
	require.NoError(t, st.SaveCandidates(ctx, run.ID, cands[:1]))

	var count int
	err = st.db.QueryRow(`SELECT COUNT(*) FROM run_candidates WHERE run_id = ?`, run.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// --- Buyer groups ---

func TestSQLite_SaveAndGetGroup(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testCompany(), 150_000)
	require.NoError(t, err)

	group := &model.BuyerGroup{
		RunID:    run.ID,
		Company:  testCompany(),
		Tier:     "M1",
		DealSize: 150_000,
		Members: []model.Member{
			{
				Candidate: model.CandidateEmployee{ID: "c1", FullName: "Jane Smith", Title: "CFO"},
				Role:      buyergroup.RoleDecision,
				Rank:      1,
			},
		},
		Valid:  true,
		Score:  100,
		Action: "accept",
	}
	require.NoError(t, st.SaveGroup(ctx, group))
	require.NotEmpty(t, group.ID)

	got, err := st.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "M1", got.Tier)
	require.Len(t, got.Members, 1)
	assert.Equal(t, buyergroup.RoleDecision, got.Members[0].Role)
	assert.True(t, got.Valid)

	// SaveGroup links the group back to its run.
	gotRun, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, gotRun.GroupID)

	byRun, err := st.GetGroupByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, byRun.ID)
}

func TestSQLite_GetGroup_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetGroup(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group not found")
}

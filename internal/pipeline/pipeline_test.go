package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
	"github.com/sells-group/buyergroup-cli/internal/model"
	"github.com/sells-group/buyergroup-cli/internal/policy"
	"github.com/sells-group/buyergroup-cli/internal/store"
	"github.com/sells-group/buyergroup-cli/pkg/directory"
	"github.com/sells-group/buyergroup-cli/pkg/research"
	"github.com/sells-group/buyergroup-cli/pkg/verify"
)

// fakeStore is an in-memory store.Store recording status transitions.
type fakeStore struct {
	mu         sync.Mutex
	runs       map[string]*model.Run
	statuses   []model.RunStatus
	candidates map[string][]model.CandidateEmployee
	group      *model.BuyerGroup
	failMsg    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:       map[string]*model.Run{},
		candidates: map[string][]model.CandidateEmployee{},
	}
}

func (f *fakeStore) CreateRun(_ context.Context, company model.Company, dealSize float64) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run := &model.Run{ID: "run-1", Company: company, DealSize: dealSize, Status: model.RunStatusQueued}
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.runs[runID].Status = status
	return nil
}

func (f *fakeStore) FailRun(_ context.Context, runID string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMsg = errMsg
	f.runs[runID].Status = model.RunStatusFailed
	return nil
}

func (f *fakeStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[runID], nil
}

func (f *fakeStore) ListRuns(_ context.Context, _ store.RunFilter) ([]model.Run, error) {
	return nil, nil
}

func (f *fakeStore) SaveCandidates(_ context.Context, runID string, candidates []model.CandidateEmployee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates[runID] = candidates
	return nil
}

func (f *fakeStore) SaveGroup(_ context.Context, group *model.BuyerGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	group.ID = "group-1"
	f.group = group
	return nil
}

func (f *fakeStore) GetGroup(_ context.Context, _ string) (*model.BuyerGroup, error) {
	return f.group, nil
}

func (f *fakeStore) GetGroupByRun(_ context.Context, _ string) (*model.BuyerGroup, error) {
	return f.group, nil
}

func (f *fakeStore) Migrate(_ context.Context) error { return nil }
func (f *fakeStore) Close() error                    { return nil }

// fakeDirectory serves canned company and employee data.
type fakeDirectory struct {
	profile   *directory.CompanyProfile
	employees []directory.Employee
	searchErr error
}

func (f *fakeDirectory) GetCompany(_ context.Context, _ string) (*directory.CompanyProfile, error) {
	if f.profile == nil {
		return nil, eris.Wrap(directory.ErrNotFound, "directory: /companies")
	}
	return f.profile, nil
}

func (f *fakeDirectory) SearchEmployees(_ context.Context, _ directory.SearchRequest) (*directory.SearchResponse, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &directory.SearchResponse{Employees: f.employees, Total: len(f.employees)}, nil
}

// fakeVerifier marks every email valid and every phone unknown.
type fakeVerifier struct {
	mu     sync.Mutex
	emails []string
}

func (f *fakeVerifier) VerifyEmail(_ context.Context, email string) (*verify.EmailResult, error) {
	f.mu.Lock()
	f.emails = append(f.emails, email)
	f.mu.Unlock()
	return &verify.EmailResult{Email: email, Status: "valid", Confidence: 0.95}, nil
}

func (f *fakeVerifier) VerifyPhone(_ context.Context, phone string) (*verify.PhoneResult, error) {
	return &verify.PhoneResult{Phone: phone, Status: "unknown"}, nil
}

// fakeEnricher returns a fixed estimate.
type fakeEnricher struct {
	called bool
}

func (f *fakeEnricher) EnrichCompany(_ context.Context, _, _ string) (*research.Enrichment, error) {
	f.called = true
	return &research.Enrichment{Revenue: 5_000_000, EmployeeCount: 40, Confidence: 0.6}, nil
}

func strongPool(n int) []directory.Employee {
	titles := []string{"CEO", "VP of Engineering", "Director of Finance", "Engineering Manager",
		"Head of Procurement", "Product Manager", "Director of Sales", "VP Operations"}
	out := make([]directory.Employee, n)
	for i := range out {
		out[i] = directory.Employee{
			ID:        string(rune('a' + i)),
			FullName:  "PERSON " + string(rune('A'+i)),
			Title:     titles[i%len(titles)],
			Email:     "p" + string(rune('a'+i)) + "@acme.com",
			Score:     85,
			Relevance: 0.8,
		}
	}
	return out
}

func TestAssembler_Run_FullPipeline(t *testing.T) {
	st := newFakeStore()
	dir := &fakeDirectory{
		profile:   &directory.CompanyProfile{Domain: "acme.com", Name: "Acme Corp", Revenue: 50_000_000, EmployeeCount: 200},
		employees: strongPool(8),
	}
	ver := &fakeVerifier{}

	a := NewAssembler(st, dir, ver, nil, policy.Default(), Config{VerifyConcurrency: 2})

	group, err := a.Run(context.Background(), model.Company{Domain: "acme.com"}, 150_000)
	require.NoError(t, err)

	// $50M revenue classifies the top small-business band.
	assert.Equal(t, "S6", group.Tier)
	assert.NotEmpty(t, group.Members)
	assert.True(t, group.Valid)
	assert.Equal(t, "accept", group.Action)

	// Status transitions happen in pipeline order.
	assert.Equal(t, []model.RunStatus{
		model.RunStatusDiscovering,
		model.RunStatusSizing,
		model.RunStatusAssembling,
		model.RunStatusVerifying,
		model.RunStatusValidating,
		model.RunStatusComplete,
	}, st.statuses)

	// Candidates were persisted and members verified.
	assert.Len(t, st.candidates["run-1"], 8)
	assert.NotEmpty(t, ver.emails)
	for _, m := range group.Members {
		assert.Equal(t, model.VerifyValid, m.Candidate.EmailStatus)
	}

	// Group persisted and linked.
	require.NotNil(t, st.group)
	assert.Equal(t, "run-1", st.group.RunID)
}

func TestAssembler_Run_EnrichesWhenDirectoryHasNoFigures(t *testing.T) {
	st := newFakeStore()
	dir := &fakeDirectory{employees: strongPool(4)}
	enricher := &fakeEnricher{}

	a := NewAssembler(st, dir, nil, enricher, policy.Default(), Config{})

	group, err := a.Run(context.Background(), model.Company{Domain: "acme.com", Name: "Acme"}, 30_000)
	require.NoError(t, err)
	assert.True(t, enricher.called)
	// $5M revenue from the enricher lands in the small-business band.
	assert.Equal(t, 5_000_000.0, group.Company.Revenue)

	// No verifier configured, so the verifying phase is skipped.
	assert.NotContains(t, st.statuses, model.RunStatusVerifying)
}

func TestAssembler_Run_SearchFailureFailsRun(t *testing.T) {
	st := newFakeStore()
	dir := &fakeDirectory{searchErr: eris.New("directory: unexpected status 500")}

	a := NewAssembler(st, dir, nil, nil, policy.Default(), Config{})

	_, err := a.Run(context.Background(), model.Company{Domain: "acme.com"}, 0)
	require.Error(t, err)
	assert.Contains(t, st.failMsg, "candidate search")
	assert.Equal(t, model.RunStatusFailed, st.runs["run-1"].Status)
}

func TestAssembler_Run_EmptyPoolStillValidates(t *testing.T) {
	st := newFakeStore()
	dir := &fakeDirectory{
		profile: &directory.CompanyProfile{Domain: "acme.com", Revenue: 50_000_000, EmployeeCount: 200},
	}

	a := NewAssembler(st, dir, nil, nil, policy.Default(), Config{})

	group, err := a.Run(context.Background(), model.Company{Domain: "acme.com"}, 150_000)
	require.NoError(t, err)
	assert.Empty(t, group.Members)
	// With zero candidates the constraint collapses to an empty band, so
	// the empty group passes validation under data scarcity.
	assert.True(t, group.Valid)
	assert.Equal(t, "accept", group.Action)
}

func TestAssembler_Run_CapsGroupAtConstraintMax(t *testing.T) {
	st := newFakeStore()
	dir := &fakeDirectory{
		profile:   &directory.CompanyProfile{Domain: "acme.com", Revenue: 50_000_000, EmployeeCount: 200},
		employees: strongPool(20),
	}

	a := NewAssembler(st, dir, nil, nil, policy.Default(), Config{})

	group, err := a.Run(context.Background(), model.Company{Domain: "acme.com"}, 150_000)
	require.NoError(t, err)

	size := buyergroup.GroupSizeFor(buyergroup.TierS6)
	assert.LessOrEqual(t, group.Size(), size.Max)
}

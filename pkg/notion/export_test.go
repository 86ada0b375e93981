package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
	"github.com/sells-group/buyergroup-cli/internal/model"
)

// fakeNotionClient records calls and returns canned query results.
type fakeNotionClient struct {
	queryResults []*notionapi.DatabaseQueryResponse
	queryCalls   int
	created      *notionapi.PageCreateRequest
	updatedID    string
	updated      *notionapi.PageUpdateRequest
}

func (f *fakeNotionClient) QueryDatabase(_ context.Context, _ string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp := f.queryResults[f.queryCalls]
	f.queryCalls++
	return resp, nil
}

func (f *fakeNotionClient) CreatePage(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	f.created = req
	return &notionapi.Page{ID: "new-page"}, nil
}

func (f *fakeNotionClient) UpdatePage(_ context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	f.updatedID = pageID
	f.updated = req
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func testGroup() *model.BuyerGroup {
	return &model.BuyerGroup{
		ID:       "g1",
		RunID:    "run-1",
		Company:  model.Company{Domain: "acme.com", Name: "Acme Corp"},
		Tier:     "M1",
		DealSize: 150_000,
		Members: []model.Member{
			{
				Candidate: model.CandidateEmployee{FullName: "Jane Smith", Title: "CFO"},
				Role:      buyergroup.RoleDecision,
				Rank:      1,
			},
		},
		Valid: true,
		Score: 100,
	}
}

func TestExportGroup_CreatesNewPage(t *testing.T) {
	fake := &fakeNotionClient{
		queryResults: []*notionapi.DatabaseQueryResponse{{}}, // no existing page
	}

	pageID, err := ExportGroup(context.Background(), fake, "db-1", testGroup())
	require.NoError(t, err)
	assert.Equal(t, "new-page", pageID)

	require.NotNil(t, fake.created)
	title, ok := fake.created.Properties["Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", title.Title[0].Text.Content)

	status, ok := fake.created.Properties["Status"].(notionapi.StatusProperty)
	require.True(t, ok)
	assert.Equal(t, "Valid", status.Status.Name)

	// One bullet per member.
	assert.Len(t, fake.created.Children, 1)
}

func TestExportGroup_UpdatesExistingPage(t *testing.T) {
	fake := &fakeNotionClient{
		queryResults: []*notionapi.DatabaseQueryResponse{
			{Results: []notionapi.Page{{ID: "existing-page"}}},
		},
	}

	pageID, err := ExportGroup(context.Background(), fake, "db-1", testGroup())
	require.NoError(t, err)
	assert.Equal(t, "existing-page", pageID)
	assert.Equal(t, "existing-page", fake.updatedID)
	assert.Nil(t, fake.created)
}

func TestQueryAll_Paginates(t *testing.T) {
	fake := &fakeNotionClient{
		queryResults: []*notionapi.DatabaseQueryResponse{
			{Results: []notionapi.Page{{ID: "p1"}}, HasMore: true, NextCursor: "cur-1"},
			{Results: []notionapi.Page{{ID: "p2"}}},
		},
	}

	pages, err := QueryAll(context.Background(), fake, "db-1", nil)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, 2, fake.queryCalls)
}

func TestStatusName(t *testing.T) {
	g := testGroup()
	assert.Equal(t, "Valid", statusName(g))
	g.Valid = false
	assert.Equal(t, "Needs Review", statusName(g))
}

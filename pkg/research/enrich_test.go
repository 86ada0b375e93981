package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns canned responses for enrichment tests.
type fakeClient struct {
	resp *MessageResponse
	err  error
	last MessageRequest
}

func (f *fakeClient) CreateMessage(_ context.Context, req MessageRequest) (*MessageResponse, error) {
	f.last = req
	return f.resp, f.err
}

func textResponse(text string) *MessageResponse {
	return &MessageResponse{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func TestEnrichCompany(t *testing.T) {
	fake := &fakeClient{resp: textResponse(`{"revenue": 50000000, "employee_count": 200, "confidence": 0.8}`)}
	e := NewEnricher(fake, "claude-sonnet-4-5-20250929", 1024)

	enrichment, err := e.EnrichCompany(context.Background(), "Acme Corp", "acme.com")
	require.NoError(t, err)
	assert.Equal(t, 50_000_000.0, enrichment.Revenue)
	assert.Equal(t, 200, enrichment.EmployeeCount)
	assert.Equal(t, 0.8, enrichment.Confidence)

	// The rubric prompt is sent as a cached system block.
	require.Len(t, fake.last.System, 1)
	require.NotNil(t, fake.last.System[0].CacheControl)
	assert.Contains(t, fake.last.Messages[0].Content, "acme.com")
}

func TestEnrichCompany_FencedResponse(t *testing.T) {
	fake := &fakeClient{resp: textResponse("```json\n{\"revenue\": 1000000, \"employee_count\": 10, \"confidence\": 0.5}\n```")}
	e := NewEnricher(fake, "claude-sonnet-4-5-20250929", 0)

	enrichment, err := e.EnrichCompany(context.Background(), "Tiny Co", "tiny.co")
	require.NoError(t, err)
	assert.Equal(t, 1_000_000.0, enrichment.Revenue)
}

func TestEnrichCompany_EmptyResponse(t *testing.T) {
	fake := &fakeClient{resp: &MessageResponse{}}
	e := NewEnricher(fake, "claude-sonnet-4-5-20250929", 1024)

	_, err := e.EnrichCompany(context.Background(), "Acme Corp", "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{"revenue": 1}`, `{"revenue": 1}`},
		{"```json\n{\"revenue\": 1}\n```", `{"revenue": 1}`},
		{"Here is the estimate:\n{\"revenue\": 42}\nDone.", `{"revenue": 42}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, cleanJSON(tt.input))
	}
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.0, u.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)
	assert.Equal(t, 0.0, u.EstimateCost("unknown-model"))
}

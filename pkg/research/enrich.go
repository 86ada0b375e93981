package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const enrichSystemPrompt = `You are a B2B research assistant. Given a company name and domain,
estimate its annual revenue in USD and its employee count from public
knowledge. Respond with a single JSON object:

{"revenue": <number or 0 if unknown>, "employee_count": <integer or 0 if unknown>, "confidence": <0-1>}

Return 0 for any figure you cannot estimate. Do not include any other text.`

// Enrichment holds Claude's estimate of missing company figures.
type Enrichment struct {
	Revenue       float64 `json:"revenue"`
	EmployeeCount int     `json:"employee_count"`
	Confidence    float64 `json:"confidence"`
}

// Enricher fills in missing company intelligence using an LLM.
type Enricher struct {
	client    Client
	model     string
	maxTokens int64
}

// NewEnricher creates an Enricher using the given client and model.
func NewEnricher(client Client, model string, maxTokens int64) *Enricher {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Enricher{client: client, model: model, maxTokens: maxTokens}
}

// EnrichCompany estimates revenue and headcount for a company. The system
// prompt is cached across calls within a batch of runs.
func (e *Enricher) EnrichCompany(ctx context.Context, name, domain string) (*Enrichment, error) {
	temp := 0.0
	resp, err := e.client.CreateMessage(ctx, MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System: []SystemBlock{
			{Text: enrichSystemPrompt, CacheControl: &CacheControl{TTL: "5m"}},
		},
		Messages: []Message{
			{Role: "user", Content: fmt.Sprintf("Company: %s\nDomain: %s", name, domain)},
		},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "research: enrich %s", domain)
	}

	resp.Usage.LogCost(e.model, "enrich")

	text := firstText(resp)
	if text == "" {
		return nil, eris.Errorf("research: empty response for %s", domain)
	}

	var enrichment Enrichment
	if err := json.Unmarshal([]byte(cleanJSON(text)), &enrichment); err != nil {
		return nil, eris.Wrapf(err, "research: parse enrichment for %s", domain)
	}

	zap.L().Debug("company enriched",
		zap.String("domain", domain),
		zap.Float64("revenue", enrichment.Revenue),
		zap.Int("employee_count", enrichment.EmployeeCount),
		zap.Float64("confidence", enrichment.Confidence),
	)
	return &enrichment, nil
}

// firstText returns the first text content block of a response.
func firstText(resp *MessageResponse) string {
	for _, b := range resp.Content {
		if b.Type == "text" && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Extract the outermost object when the model adds prose around it.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

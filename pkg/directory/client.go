// Package directory provides access to the employee-directory vendor API
// used to discover candidate employees at a target company.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/buyergroup-cli/internal/retry"
)

const (
	defaultBaseURL    = "https://api.peopledirectory.io/v1"
	defaultMaxResults = 100
)

// Client performs lookups against the directory API.
type Client interface {
	SearchEmployees(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	GetCompany(ctx context.Context, domain string) (*CompanyProfile, error)
}

// SearchRequest is the query for GET /employees/search.
type SearchRequest struct {
	Domain     string `json:"domain"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Employee is one person record returned by the directory.
type Employee struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Title       string  `json:"title"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	LinkedInURL string  `json:"linkedin_url,omitempty"`
	Score       float64 `json:"score"`     // 0-100 data quality score
	Relevance   float64 `json:"relevance"` // 0-1 buying relevance
}

// SearchResponse is the response from GET /employees/search.
type SearchResponse struct {
	Employees []Employee `json:"employees"`
	Total     int        `json:"total"`
}

// CompanyProfile is the response from GET /companies/{domain}.
type CompanyProfile struct {
	Domain        string  `json:"domain"`
	Name          string  `json:"name"`
	Industry      string  `json:"industry,omitempty"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	Revenue       float64 `json:"revenue"`
	EmployeeCount int     `json:"employee_count"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second request limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithRetry overrides the default retry behavior for transient failures.
func WithRetry(cfg retry.Config) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
}

// NewClient creates a directory API client. Requests are throttled to
// 5 req/s by default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
		retry:   retry.DefaultConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) SearchEmployees(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Domain == "" {
		return nil, eris.New("directory: domain is required")
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	q := url.Values{}
	q.Set("domain", req.Domain)
	q.Set("max_results", strconv.Itoa(maxResults))

	var result SearchResponse
	if err := c.get(ctx, "/employees/search?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) GetCompany(ctx context.Context, domain string) (*CompanyProfile, error) {
	if domain == "" {
		return nil, eris.New("directory: domain is required")
	}

	var result CompanyProfile
	if err := c.get(ctx, "/companies/"+url.PathEscape(domain), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	return retry.Do(ctx, c.retry, "directory GET "+path, func(ctx context.Context) error {
		return c.getOnce(ctx, path, out)
	})
}

func (c *httpClient) getOnce(ctx context.Context, path string, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "directory: rate limit")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "directory: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "directory: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "directory: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return eris.Wrap(ErrNotFound, fmt.Sprintf("directory: %s", path))
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("directory: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if retry.TransientStatus(resp.StatusCode) {
			return retry.Mark(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "directory: unmarshal response")
	}
	return nil
}

// ErrNotFound indicates the requested entity does not exist in the directory.
var ErrNotFound = eris.New("not found")

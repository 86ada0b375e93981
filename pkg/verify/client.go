// Package verify provides access to the contact-verification vendor API
// for email and phone validation.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/buyergroup-cli/internal/retry"
)

const defaultBaseURL = "https://api.contactcheck.io/v1"

// Client verifies contact details.
type Client interface {
	VerifyEmail(ctx context.Context, email string) (*EmailResult, error)
	VerifyPhone(ctx context.Context, phone string) (*PhoneResult, error)
}

// EmailResult is the response from POST /email/verify.
type EmailResult struct {
	Email      string  `json:"email"`
	Status     string  `json:"status"` // "valid", "risky", "invalid", "unknown"
	Confidence float64 `json:"confidence"`
	Disposable bool    `json:"disposable"`
	CatchAll   bool    `json:"catch_all"`
}

// PhoneResult is the response from POST /phone/verify.
type PhoneResult struct {
	Phone    string `json:"phone"`
	Status   string `json:"status"` // "valid", "invalid", "unknown"
	LineType string `json:"line_type,omitempty"`
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

// NewClient creates a verification API client. Requests are throttled to
// 10 req/s by default.
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
		limiter: rate.NewLimiter(10, 10),
		retry:   retry.DefaultConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) VerifyEmail(ctx context.Context, email string) (*EmailResult, error) {
	if email == "" {
		return nil, eris.New("verify: email is required")
	}

	var result EmailResult
	if err := c.post(ctx, "/email/verify", map[string]string{"email": email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) VerifyPhone(ctx context.Context, phone string) (*PhoneResult, error) {
	if phone == "" {
		return nil, eris.New("verify: phone is required")
	}

	var result PhoneResult
	if err := c.post(ctx, "/phone/verify", map[string]string{"phone": phone}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload any, out any) error {
	return retry.Do(ctx, c.retry, "verify POST "+path, func(ctx context.Context) error {
		return c.postOnce(ctx, path, payload, out)
	})
}

func (c *httpClient) postOnce(ctx context.Context, path string, payload any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "verify: rate limit")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "verify: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "verify: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "verify: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "verify: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("verify: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if retry.TransientStatus(resp.StatusCode) {
			return retry.Mark(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "verify: unmarshal response")
	}
	return nil
}

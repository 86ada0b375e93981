package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyergroup-cli/internal/retry"
)

func fastRetry(attempts int) Option {
	return WithRetry(retry.Config{MaxAttempts: attempts, InitialBackoff: time.Millisecond, Multiplier: 1})
}

func TestSearchEmployees(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/employees/search", r.URL.Path)
		assert.Equal(t, "acme.com", r.URL.Query().Get("domain"))
		assert.Equal(t, "25", r.URL.Query().Get("max_results"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"employees": [
				{"id": "e1", "full_name": "Jane Smith", "title": "CFO", "score": 88, "relevance": 0.9}
			],
			"total": 1
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0))

	resp, err := c.SearchEmployees(context.Background(), SearchRequest{Domain: "acme.com", MaxResults: 25})
	require.NoError(t, err)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "Jane Smith", resp.Employees[0].FullName)
	assert.Equal(t, 88.0, resp.Employees[0].Score)
	assert.Equal(t, 1, resp.Total)
}

func TestSearchEmployees_MissingDomain(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.SearchEmployees(context.Background(), SearchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain is required")
}

func TestGetCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/acme.com", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"domain": "acme.com", "name": "Acme Corp", "revenue": 50000000, "employee_count": 200}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	profile, err := c.GetCompany(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.Name)
	assert.Equal(t, 200, profile.EmployeeCount)
}

func TestGetCompany_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := c.GetCompany(context.Background(), "unknown.com")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestGetCompany_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastRetry(1))

	_, err := c.GetCompany(context.Background(), "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestGetCompany_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"domain": "acme.com", "name": "Acme Corp"}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastRetry(3))

	profile, err := c.GetCompany(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetCompany_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastRetry(3))

	_, err := c.GetCompany(context.Background(), "unknown.com")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/dom/personal-services-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_GlobalScope(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.RateLimitMax = 10
	ts := testutil.NewTestServerWithConfig(t, cfg)

	for i := 1; i <= 10; i++ {
		resp := ts.Do(t, http.MethodGet, "/health", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(10-i), resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	}

	resp := ts.Do(t, http.MethodGet, "/health", nil)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	testutil.AssertErrorResponse(t, resp, http.StatusTooManyRequests, "Too many requests, please try again later")

	// protected routes are throttled before authentication
	resp = ts.Do(t, http.MethodGet, "/auth/me", nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusTooManyRequests)
}

func TestRateLimit_LoginScope(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.RateLimitMax = 100
	cfg.LoginRateLimitMax = 3
	ts := testutil.NewTestServerWithConfig(t, cfg)

	body := map[string]string{"username": "ghost", "password": "nope"}
	for i := 1; i <= 3; i++ {
		resp := ts.Do(t, http.MethodPost, "/auth/login", body)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i)
		assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp := ts.Do(t, http.MethodPost, "/auth/login", body)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	testutil.AssertErrorResponse(t, resp, http.StatusTooManyRequests, "Too many requests, please try again later")

	// the login ceiling does not leak into other routes
	resp = ts.Do(t, http.MethodGet, "/health", nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, strconv.Itoa(100-5), resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimit_LoginAlsoCountsGlobally(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.RateLimitMax = 2
	cfg.LoginRateLimitMax = 50
	ts := testutil.NewTestServerWithConfig(t, cfg)

	body := map[string]string{"username": "ghost", "password": "nope"}
	for i := 0; i < 2; i++ {
		resp := ts.Do(t, http.MethodPost, "/auth/login", body)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := ts.Do(t, http.MethodPost, "/auth/login", body)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusTooManyRequests)
}

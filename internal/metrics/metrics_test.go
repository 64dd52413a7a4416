package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.LoginAttempts.WithLabelValues(LoginSuccess).Inc()
	m.LoginAttempts.WithLabelValues(LoginInvalid).Add(2)
	m.RateLimitRejections.WithLabelValues("login").Inc()
	m.SessionsPruned.Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejections.WithLabelValues("login")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsPruned))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SessionsPruned.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "personal_api_sessions_pruned_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

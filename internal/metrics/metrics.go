// Package metrics exposes the API's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "personal_api"

// Login outcomes
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	RateLimitRejections *prometheus.CounterVec
	LoginAttempts       *prometheus.CounterVec
	SessionsPruned      prometheus.Counter
}

// New registers the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RateLimitRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		SessionsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_pruned_total",
			Help:      "Expired sessions removed from the store.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RateLimitRejections,
		m.LoginAttempts,
		m.SessionsPruned,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

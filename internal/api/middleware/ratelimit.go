package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/personal-services-api/internal/metrics"
	"github.com/dom/personal-services-api/internal/ratelimit"
	"github.com/rs/zerolog/log"
)

const TooManyRequestsMessage = "Too many requests, please try again later"

// RateLimit counts each request against limiter, keyed by client address.
// Allowed and rejected responses both carry the X-RateLimit-* headers.
// When the counter store fails the request is let through.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), ClientIP(r))
			if err != nil {
				log.Error().Err(err).
					Str("component", "middleware.RateLimit").
					Str("scope", limiter.Scope()).
					Msg("rate limit store unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				m.RateLimitRejections.WithLabelValues(limiter.Scope()).Inc()
				h.Set("Retry-After", retryAfterSeconds(res.RetryAfter))
				WriteError(w, http.StatusTooManyRequests, TooManyRequestsMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr. Proxy headers are honoured
// only when chi's RealIP middleware has already rewritten RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	SessionKey contextKey = "session"
)

// SessionResolver looks up the session a request carries.
type SessionResolver interface {
	ResolveRequest(r *http.Request) (*domain.Session, error)
}

// Auth admits only requests with a live session and hands that session to
// the next handler through the request context. It never writes session
// state.
func Auth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.ResolveRequest(r)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					log.Debug().Str("component", "middleware.Auth").Str("path", r.URL.Path).Msg("no valid session")
					WriteError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				log.Error().Err(err).Str("component", "middleware.Auth").Msg("session lookup failed")
				WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok && session != nil
}

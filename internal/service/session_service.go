package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const sessionIDBytes = 32

type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// SessionService manages server-side sessions. The client only ever holds
// the session ID wrapped in an HMAC-signed, timestamped cookie value.
type SessionService struct {
	repo       repository.SessionRepository
	codec      *securecookie.SecureCookie
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

func NewSessionService(repo repository.SessionRepository, cfg SessionConfig) *SessionService {
	codec := securecookie.New([]byte(cfg.Secret), nil)
	codec.MaxAge(int(cfg.MaxAge.Seconds()))

	return &SessionService{
		repo:       repo,
		codec:      codec,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Create persists a session for the identity and returns its signed token.
// The row is written with all identity fields in one insert.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, username string) (string, *domain.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now()
	session := &domain.Session{
		ID:        id,
		UserID:    userID,
		Username:  username,
		ExpiresAt: now.Add(s.maxAge),
		CreatedAt: now,
	}

	token, err := s.codec.Encode(s.cookieName, id)
	if err != nil {
		return "", nil, fmt.Errorf("sign session id: %w", err)
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	return token, session, nil
}

// Resolve returns the live session a token refers to. Tampered, expired and
// unknown tokens all yield domain.ErrSessionNotFound.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	id, ok := s.decode(token)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	now := s.now()
	session, err := s.repo.GetActive(ctx, id, now)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Expired(now) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ResolveRequest resolves the session named by the request's cookie.
func (s *SessionService) ResolveRequest(r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.Resolve(r.Context(), cookie.Value)
}

// Destroy deletes the session behind token. Tokens that do not decode are
// ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	id, ok := s.decode(token)
	if !ok {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PruneExpired removes rows whose lifetime has ended.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

func (s *SessionService) CookieName() string {
	return s.cookieName
}

// Cookie carries token to the client.
func (s *SessionService) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie instructs the client to drop the session cookie.
func (s *SessionService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *SessionService) decode(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	var id string
	if err := s.codec.Decode(s.cookieName, token, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/personal-services-api/internal/api/middleware"
	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/metrics"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	metrics        *metrics.Metrics
}

func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		metrics:        m,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username string `json:"username"`
}

type WhoAmIResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	identity, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.metrics.LoginAttempts.WithLabelValues(metrics.LoginInvalid).Inc()
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		log.Error().Err(err).Str("component", "handlers.Login").Msg("credential check failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// a session the client already holds is replaced, never reused
	if cookie, err := r.Cookie(h.sessionService.CookieName()); err == nil {
		if err := h.sessionService.Destroy(r.Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Str("component", "handlers.Login").Msg("failed to drop previous session")
		}
	}

	token, _, err := h.sessionService.Create(r.Context(), identity.UserID, identity.Username)
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		log.Error().Err(err).Str("component", "handlers.Login").Str("user_id", identity.UserID.String()).Msg("session creation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.metrics.LoginAttempts.WithLabelValues(metrics.LoginSuccess).Inc()
	http.SetCookie(w, h.sessionService.Cookie(token))
	middleware.WriteJSON(w, http.StatusOK, LoginResponse{Username: identity.Username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromContext(r.Context()); !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cookie, err := r.Cookie(h.sessionService.CookieName())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.sessionService.Destroy(r.Context(), cookie.Value); err != nil {
		log.Error().Err(err).Str("component", "handlers.Logout").Msg("session destroy failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, h.sessionService.ClearCookie())
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, WhoAmIResponse{
		UserID:   session.UserID.String(),
		Username: session.Username,
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/personal-services-api/internal/api/middleware"
	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/rs/zerolog/log"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	settings, err := h.settingsService.Get(r.Context(), session.UserID)
	if err != nil {
		log.Error().Err(err).Str("component", "handlers.GetSettings").Str("user_id", session.UserID.String()).Msg("failed to load settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settingsService.Patch(r.Context(), session.UserID, updates)
	if err != nil {
		var settingErr *domain.SettingError
		switch {
		case errors.Is(err, domain.ErrNoSettings):
			middleware.WriteError(w, http.StatusBadRequest, "No settings provided")
		case errors.As(err, &settingErr):
			middleware.WriteError(w, http.StatusBadRequest, settingErr.Error())
		default:
			log.Error().Err(err).Str("component", "handlers.PatchSettings").Str("user_id", session.UserID.String()).Msg("failed to save settings")
			middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, settings)
}

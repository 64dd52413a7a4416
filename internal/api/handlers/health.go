package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dom/personal-services-api/internal/api/middleware"
	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Str("component", "handlers.Health").Msg("database ping failed")
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

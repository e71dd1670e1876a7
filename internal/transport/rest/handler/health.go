package handler

import (
	"context"
	"net/http"
	"time"

	"legalflow/internal/llm"
)

const pingTimeout = 5 * time.Second

// Pinger checks that the completion service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and completion-service health
type HealthHandler struct {
	ai Pinger
}

// NewHealthHandler creates a health handler. A nil pinger means AI analysis is disabled.
func NewHealthHandler(ai Pinger) *HealthHandler {
	return &HealthHandler{ai: ai}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "ai": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := h.ai.Ping(ctx); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "degraded", "ai": llm.Diagnostic(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "ai": "ok"})
}

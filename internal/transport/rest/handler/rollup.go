package handler

import (
	"net/http"

	"legalflow/internal/service"
	"legalflow/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// RollupHandler handles the final analysis endpoint
type RollupHandler struct {
	rollupSvc *service.RollupService
}

// NewRollupHandler creates a new rollup handler
func NewRollupHandler(rollupSvc *service.RollupService) *RollupHandler {
	return &RollupHandler{rollupSvc: rollupSvc}
}

// FinalAnalysis handles GET /v1/domains/{domain}/analysis
func (h *RollupHandler) FinalAnalysis(w http.ResponseWriter, r *http.Request) {
	out, err := h.rollupSvc.FinalAnalysis(r.Context(), middleware.GetEmail(r.Context()), mux.Vars(r)["domain"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

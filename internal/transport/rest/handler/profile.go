package handler

import (
	"encoding/json"
	"net/http"

	"legalflow/internal/model"
	"legalflow/internal/service"
	"legalflow/internal/transport/rest/middleware"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileSvc *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileSvc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Get handles GET /v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileSvc.Get(r.Context(), middleware.GetEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Save handles PUT /v1/profile
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profileSvc.Save(r.Context(), middleware.GetEmail(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"legalflow/internal/extract"
	"legalflow/internal/model"
	"legalflow/internal/service"
	"legalflow/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// AuditHandler handles domain, answer, chat and upload endpoints
type AuditHandler struct {
	auditSvc       *service.AuditService
	maxUploadBytes int64
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditSvc *service.AuditService, maxUploadBytes int64) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc, maxUploadBytes: maxUploadBytes}
}

// Domains handles GET /v1/domains
func (h *AuditHandler) Domains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"domains": h.auditSvc.Domains()})
}

// Domain handles GET /v1/domains/{domain}
func (h *AuditHandler) Domain(w http.ResponseWriter, r *http.Request) {
	view, err := h.auditSvc.Domain(r.Context(), mux.Vars(r)["domain"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Scores handles GET /v1/scores
func (h *AuditHandler) Scores(w http.ResponseWriter, r *http.Request) {
	scores, total, err := h.auditSvc.Scores(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores, "total": total})
}

// Answer handles PUT /v1/domains/{domain}/questions/{question}/answer
func (h *AuditHandler) Answer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req model.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.auditSvc.Answer(r.Context(), middleware.GetEmail(r.Context()), vars["domain"], vars["question"], req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Conversation handles GET /v1/domains/{domain}/messages
func (h *AuditHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	domainID := mux.Vars(r)["domain"]
	turns, err := h.auditSvc.Conversation(r.Context(), domainID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if turns == nil {
		turns = []model.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"turns": turns,
		"state": h.auditSvc.State(domainID),
	})
}

// SendMessage handles POST /v1/domains/{domain}/messages
func (h *AuditHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.auditSvc.SendMessage(r.Context(), middleware.GetEmail(r.Context()), mux.Vars(r)["domain"], req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, messageStatus(resp), resp)
}

// Upload handles POST /v1/domains/{domain}/uploads (multipart field "file")
func (h *AuditHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[REST] ERROR: reading upload %s: %v", header.Filename, err)
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	resp, err := h.auditSvc.Upload(r.Context(), middleware.GetEmail(r.Context()), mux.Vars(r)["domain"], extract.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, messageStatus(resp), resp)
}

// Risks handles GET /v1/domains/{domain}/risks
func (h *AuditHandler) Risks(w http.ResponseWriter, r *http.Request) {
	risks, err := h.auditSvc.Risks(r.Context(), mux.Vars(r)["domain"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"risks": risks})
}

// A failed analysis still produced a diagnostic turn, so the body is returned with 502.
func messageStatus(resp *model.MessageResponse) int {
	if resp.Error != "" {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lucasxpaire/soulsalutte/internal/middleware"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

type FrontendErrorIngestRequest struct {
	RequestID  *string                `json:"request_id"`
	Severity   string                 `json:"severity"` // WARN|ERROR
	Kind       string                 `json:"kind"`
	Message    string                 `json:"message"`
	Stack      *string                `json:"stack,omitempty"`
	HTTPMethod *string                `json:"http_method,omitempty"`
	Path       *string                `json:"path,omitempty"`
	Status     *int                   `json:"status,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// IngestFrontendError grava erros reportados pelo front-end. Best-effort:
// responde ok mesmo se a gravação falhar, para não realimentar o reporte.
func (h *Handler) IngestFrontendError(w http.ResponseWriter, r *http.Request) {
	var req FrontendErrorIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	sev := strings.ToUpper(strings.TrimSpace(req.Severity))
	if sev != "WARN" && sev != "ERROR" {
		http.Error(w, `{"error":"severity inválida"}`, http.StatusBadRequest)
		return
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = "FRONTEND_ERROR"
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		msg = "frontend error"
	}

	rid := r.Header.Get("X-Request-ID")
	if req.RequestID != nil && strings.TrimSpace(*req.RequestID) != "" {
		rid = strings.TrimSpace(*req.RequestID)
	}
	if rid == "" {
		rid = middleware.RequestIDFromContext(r.Context())
	}
	var ridPtr *string
	if strings.TrimSpace(rid) != "" {
		ridPtr = &rid
	}

	var path *string
	if req.Path != nil && strings.TrimSpace(*req.Path) != "" {
		p := strings.TrimSpace(*req.Path)
		path = &p
	}
	var method *string
	if req.HTTPMethod != nil && strings.TrimSpace(*req.HTTPMethod) != "" {
		m := strings.ToUpper(strings.TrimSpace(*req.HTTPMethod))
		method = &m
	}

	// Metadata sem PII: aceitamos apenas o que o front-end mandar.
	meta := map[string]interface{}{}
	for k, v := range req.Metadata {
		meta[k] = v
	}
	if req.Status != nil {
		meta["status"] = *req.Status
	}

	ev := repo.ErrorEvent{
		RequestID:  ridPtr,
		Source:     "FRONTEND",
		Severity:   sev,
		HTTPMethod: method,
		Path:       path,
		Kind:       &kind,
		Message:    &msg,
		Stack:      req.Stack,
		Metadata:   meta,
	}
	_ = repo.CreateErrorEvent(r.Context(), h.Pool, ev)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
}

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func TestEmailAvaliacaoPDFIDInvalido(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/avaliacoes/abc/pdf/email", nil)
	req = mux.SetURLVars(req, map[string]string{"avaliacaoId": "abc"})
	rr := httptest.NewRecorder()
	h.EmailAvaliacaoPDF(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("esperado 400, veio %d", rr.Code)
	}
}

func TestEmailAvaliacaoPDFSemEnvioConfigurado(t *testing.T) {
	// Sem SMTP injetado o endpoint responde 503 antes de tocar no banco.
	h := &Handler{}
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/avaliacoes/"+id+"/pdf/email", nil)
	req = mux.SetURLVars(req, map[string]string{"avaliacaoId": id})
	rr := httptest.NewRecorder()
	h.EmailAvaliacaoPDF(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("esperado 503, veio %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "não configurado") {
		t.Errorf("corpo inesperado: %s", rr.Body.String())
	}
}

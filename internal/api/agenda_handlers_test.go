package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lucasxpaire/soulsalutte/internal/cache"
)

func TestGetOcupadosDataInvalida(t *testing.T) {
	h := &Handler{}
	for _, q := range []string{"", "?data=12/02/2025", "?data=2025-2-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/agenda/ocupados"+q, nil)
		rr := httptest.NewRecorder()
		h.GetOcupados(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("query %q: esperado 400, veio %d", q, rr.Code)
		}
	}
}

func TestGetOcupadosCacheHit(t *testing.T) {
	// Cache quente responde sem tocar no banco (Pool nil propositalmente).
	c := cache.New(time.Minute)
	c.Set("ocupados:2025-02-12", []byte(`[{"start":{"dateTime":"2025-02-12T09:00"},"end":{"dateTime":"2025-02-12T10:00"}}]`))
	h := &Handler{Cache: c}

	req := httptest.NewRequest(http.MethodGet, "/api/agenda/ocupados?data=2025-02-12", nil)
	rr := httptest.NewRecorder()
	h.GetOcupados(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("esperado 200, veio %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"2025-02-12T09:00"`) {
		t.Fatalf("corpo inesperado: %s", rr.Body.String())
	}
}

func TestGetHorariosValidacao(t *testing.T) {
	h := &Handler{}
	cases := []string{
		"?duracao=60",                      // sem data
		"?data=2025-02-12&duracao=45",      // duração fora da lista
		"?data=2025-02-12&duracao=abc",     // duração não numérica
		"?data=12-02-2025&duracao=60",      // data no formato errado
	}
	for _, q := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/agenda/horarios"+q, nil)
		rr := httptest.NewRecorder()
		h.GetHorarios(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("query %q: esperado 400, veio %d", q, rr.Code)
		}
	}
}

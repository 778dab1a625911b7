package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lucasxpaire/soulsalutte/internal/api"
	"github.com/lucasxpaire/soulsalutte/internal/booking"
)

func TestLoginGuardaToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req api.LoginRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode login: %v", err)
			}
			if req.Email != "mariana@soulsalutte.local" {
				t.Errorf("email = %q", req.Email)
			}
			_ = json.NewEncoder(w).Encode(api.LoginResponse{Token: "tok-123"})
		case "/api/clientes":
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode([]api.ClienteResponse{})
		default:
			t.Errorf("path inesperado: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	resp, err := c.Login(context.Background(), "mariana@soulsalutte.local", "senha")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "tok-123" {
		t.Fatalf("token = %q", resp.Token)
	}
	if _, err := c.ListClientes(context.Background(), ""); err != nil {
		t.Fatalf("ListClientes: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, esperado Bearer tok-123", gotAuth)
	}
}

func TestErroDaAPIViraAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"credenciais inválidas"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	_, err := c.Login(context.Background(), "x@y.z", "errada")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("esperado *APIError, veio %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Message != "credenciais inválidas" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestPeriodosOcupadosParseiaFreebusy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/agenda/ocupados" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("data"); got != "2025-02-12" {
			t.Errorf("data = %q", got)
		}
		_, _ = w.Write([]byte(`[
			{"start":{"dateTime":"2025-02-12T09:00"},"end":{"dateTime":"2025-02-12T10:00"}},
			{"start":{"dateTime":"2025-02-12T14:00"},"end":{"dateTime":"2025-02-12T15:30"}}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	dia := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)
	periodos, err := c.PeriodosOcupados(context.Background(), dia)
	if err != nil {
		t.Fatalf("PeriodosOcupados: %v", err)
	}
	if len(periodos) != 2 {
		t.Fatalf("len = %d", len(periodos))
	}
	if got := periodos[0].Inicio; !got.Equal(time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("inicio[0] = %v", got)
	}
	if got := periodos[1].Fim; !got.Equal(time.Date(2025, 2, 12, 15, 30, 0, 0, time.UTC)) {
		t.Errorf("fim[1] = %v", got)
	}
}

func TestSalvarPostaSessao(t *testing.T) {
	clienteID := uuid.New()
	var got api.SessaoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessoes/cliente/"+clienteID.String() {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.SessaoResponse{ID: uuid.NewString()})
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	err := c.Salvar(context.Background(), booking.Agendamento{
		ClienteID:   clienteID,
		Nome:        "Sessão de Fisioterapia",
		Inicio:      "2025-02-12T14:00",
		Fim:         "2025-02-12T15:00",
		Notas:       "avaliar joelho",
		Notificacao: true,
	})
	if err != nil {
		t.Fatalf("Salvar: %v", err)
	}
	if got.Inicio != "2025-02-12T14:00" || got.Fim != "2025-02-12T15:00" {
		t.Errorf("periodo = %q..%q", got.Inicio, got.Fim)
	}
	if got.Notificacao == nil || !*got.Notificacao {
		t.Errorf("notificacao deveria vir true")
	}
}

func TestHorarios(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("duracao"); got != "90" {
			t.Errorf("duracao = %q", got)
		}
		_, _ = w.Write([]byte(`{"data":"2025-02-12","duracao":90,"horarios":[{"hora":"08:00","ocupado":false},{"hora":"08:30","ocupado":true}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	out, err := c.Horarios(context.Background(), time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC), 90)
	if err != nil {
		t.Fatalf("Horarios: %v", err)
	}
	if out.Duracao != 90 || len(out.Horarios) != 2 {
		t.Fatalf("resposta inesperada: %+v", out)
	}
	if out.Horarios[1].Hora != "08:30" || !out.Horarios[1].Ocupado {
		t.Errorf("horarios[1] = %+v", out.Horarios[1])
	}
}

func TestEventosProjetaSessoes(t *testing.T) {
	sessaoID, clienteID := uuid.New(), uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "2025-02-10" {
			t.Errorf("from = %q", got)
		}
		if got := r.URL.Query().Get("to"); got != "2025-02-16" {
			t.Errorf("to = %q", got)
		}
		_ = json.NewEncoder(w).Encode([]api.SessaoResponse{{
			ID:        sessaoID.String(),
			ClienteID: clienteID.String(),
			Nome:      "Sessão de Fisioterapia",
			Inicio:    "2025-02-12T14:00",
			Fim:       "2025-02-12T15:00",
			Status:    "AGENDADA",
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	from := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 16, 0, 0, 0, 0, time.UTC)
	eventos, err := c.Eventos(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Eventos: %v", err)
	}
	if len(eventos) != 1 {
		t.Fatalf("len = %d", len(eventos))
	}
	e := eventos[0]
	if e.ID != sessaoID || e.ClienteID != clienteID {
		t.Errorf("ids não batem: %+v", e)
	}
	if !e.Inicio.Equal(time.Date(2025, 2, 12, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("inicio = %v", e.Inicio)
	}
	if e.Status != "AGENDADA" {
		t.Errorf("status = %q", e.Status)
	}
}

func TestDeleteSessaoSemCorpo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, time.UTC)
	if err := c.DeleteSessao(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("DeleteSessao: %v", err)
	}
}

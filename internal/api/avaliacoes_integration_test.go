//go:build integration

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/lucasxpaire/soulsalutte/internal/cache"
	"github.com/lucasxpaire/soulsalutte/internal/config"
	"github.com/lucasxpaire/soulsalutte/internal/middleware"
	"github.com/lucasxpaire/soulsalutte/internal/seed"
	"github.com/lucasxpaire/soulsalutte/internal/testutil"
)

func newAvaliacoesRouter(h *Handler, jwtSecret []byte) http.Handler {
	r := mux.NewRouter()
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(jwtSecret))
	protected.HandleFunc("/clientes", h.CreateCliente).Methods(http.MethodPost)
	protected.HandleFunc("/avaliacoes/cliente/{clienteId}", h.CreateAvaliacao).Methods(http.MethodPost)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}/pdf/email", h.EmailAvaliacaoPDF).Methods(http.MethodPost)
	return middleware.RequestID(r)
}

func TestIntegration_EmailAvaliacaoPDF_EnviaAnexo(t *testing.T) {
	ctx := context.Background()
	pool, _ := testutil.OpenDB(ctx)
	if pool == nil {
		t.Skip("DATABASE_URL not set")
		return
	}
	defer pool.Close()
	_ = testutil.MustMigrate(ctx, pool)
	_ = seed.Run(ctx, pool, "Mariana", "", "")

	cfg := config.Load()
	jwtSecret := []byte("test-jwt-secret-min-32-chars-xxxxxxxxxxxx")
	cfg.JWTSecret = jwtSecret
	h := &Handler{Pool: pool, Cfg: cfg, Cache: cache.New(30 * time.Second)}

	type envio struct {
		to, nome, arquivo string
		pdf               []byte
	}
	enviado := make(chan envio, 1)
	h.SetSendAvaliacaoPDF(func(to, clienteNome, arquivo string, pdf []byte) error {
		enviado <- envio{to, clienteNome, arquivo, pdf}
		return nil
	})

	srv := newAvaliacoesRouter(h, jwtSecret)
	authz := authHeader(t, jwtSecret)

	var cliente ClienteResponse
	rr := postJSON(t, srv, "/api/clientes", authz, ClienteRequest{Nome: "Clara Nunes", Email: "clara@example.com"}, &cliente)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create cliente: %d", rr.Code)
	}
	var avaliacao AvaliacaoResponse
	rr = postJSON(t, srv, "/api/avaliacoes/cliente/"+cliente.ID, authz, AvaliacaoRequest{
		QueixaPrincipal: "dor lombar",
		AvaliacaoDorEVA: 6,
	}, &avaliacao)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create avaliacao: %d body=%s", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/avaliacoes/"+avaliacao.ID+"/pdf/email", nil)
	req.Header.Set("Authorization", authz)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("email pdf: %d body=%s", rec.Code, rec.Body.String())
	}

	select {
	case e := <-enviado:
		if e.to != "clara@example.com" {
			t.Errorf("destinatário = %q", e.to)
		}
		if e.arquivo != "avaliacao-"+avaliacao.ID+".pdf" {
			t.Errorf("arquivo = %q", e.arquivo)
		}
		// O anexo tem que ser um PDF de verdade.
		if !bytes.HasPrefix(e.pdf, []byte("%PDF")) {
			t.Errorf("anexo não parece PDF (primeiros bytes: %q)", e.pdf[:min(8, len(e.pdf))])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("envio do PDF não aconteceu")
	}
}

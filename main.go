package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasxpaire/soulsalutte/internal/api"
	"github.com/lucasxpaire/soulsalutte/internal/auth"
	"github.com/lucasxpaire/soulsalutte/internal/cache"
	"github.com/lucasxpaire/soulsalutte/internal/config"
	"github.com/lucasxpaire/soulsalutte/internal/email"
	"github.com/lucasxpaire/soulsalutte/internal/gcal"
	"github.com/lucasxpaire/soulsalutte/internal/middleware"
	"github.com/lucasxpaire/soulsalutte/internal/migrate"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
	"github.com/lucasxpaire/soulsalutte/internal/seed"
)

func main() {
	cfg := config.Load()
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("[config] fuso %q inválido, usando America/Sao_Paulo: %v", cfg.Timezone, err)
		loc, _ = time.LoadLocation("America/Sao_Paulo")
	}

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("config postgres: %v", err)
		}
		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("conexão postgres: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping postgres: %v", err)
		}
		if err := migrate.Run(context.Background(), pool, "migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		if err := seed.Run(context.Background(), pool, cfg.AdminNome, cfg.AdminEmail, cfg.AdminSenha); err != nil {
			log.Printf("seed (ignored if already applied): %v", err)
		}
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no database"}`))
			return
		}
		if err := pool.Ping(context.Background()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	h := &api.Handler{Pool: pool, Cfg: cfg, Cache: cache.New(30 * time.Second), Loc: loc}
	h.SetHashPassword(auth.HashPassword)

	mailCfg := &email.Config{
		Host:     cfg.SMTPHost,
		Port:     email.PortFromString(cfg.SMTPPort),
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromEmail,
	}
	mailCfg.LogConfigSummary()
	h.SetSendConfirmacaoEmail(func(to, clienteNome string, s *repo.Sessao) error {
		dataHora := s.Inicio.In(loc).Format("02/01/2006 às 15:04")
		return mailCfg.SendSessaoConfirmacao(to, clienteNome, s.Nome, dataHora)
	})
	h.SetSendAvaliacaoPDF(func(to, clienteNome, arquivo string, pdf []byte) error {
		corpo := "Olá, " + clienteNome + ",\n\nSegue em anexo a sua avaliação fisioterapêutica.\n\nSoul Salutte"
		return mailCfg.SendWithAttachment(to, "Avaliação fisioterapêutica - Soul Salutte", corpo, arquivo, pdf)
	})

	if cal := gcal.NewClient(gcal.Config{
		AccessToken: cfg.GoogleCalendarToken,
		CalendarID:  cfg.GoogleCalendarID,
		Timezone:    cfg.Timezone,
	}); cal != nil {
		h.SetCalendario(cal)
		log.Printf("[gcal] espelhamento de agenda ativo (calendar=%s)", cfg.GoogleCalendarID)
	} else {
		log.Printf("[gcal] espelhamento de agenda desativado: GOOGLE_CALENDAR_TOKEN vazio")
	}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	// Ingestão de erros do frontend (sem PII). Auth é opcional: se houver JWT, enriquece o contexto.
	apiRouter.Handle("/errors/frontend", middleware.OptionalAuthMiddleware(cfg.JWTSecret)(http.HandlerFunc(h.IngestFrontendError))).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.JWTSecret))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	protected.HandleFunc("/me/password", h.ChangeMyPassword).Methods(http.MethodPut)
	protected.HandleFunc("/clientes", h.ListClientes).Methods(http.MethodGet)
	protected.HandleFunc("/clientes", h.CreateCliente).Methods(http.MethodPost)
	protected.HandleFunc("/clientes/{clienteId}", h.GetCliente).Methods(http.MethodGet)
	protected.HandleFunc("/clientes/{clienteId}", h.UpdateCliente).Methods(http.MethodPut)
	protected.HandleFunc("/clientes/{clienteId}", h.DeleteCliente).Methods(http.MethodDelete)
	protected.HandleFunc("/sessoes", h.ListSessoes).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/cliente/{clienteId}", h.CreateSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{sessaoId}", h.GetSessao).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/{sessaoId}", h.UpdateSessao).Methods(http.MethodPut)
	protected.HandleFunc("/sessoes/{sessaoId}", h.DeleteSessao).Methods(http.MethodDelete)
	protected.HandleFunc("/agenda/ocupados", h.GetOcupados).Methods(http.MethodGet)
	protected.HandleFunc("/agenda/horarios", h.GetHorarios).Methods(http.MethodGet)
	protected.HandleFunc("/avaliacoes/cliente/{clienteId}", h.ListAvaliacoesByCliente).Methods(http.MethodGet)
	protected.HandleFunc("/avaliacoes/cliente/{clienteId}", h.CreateAvaliacao).Methods(http.MethodPost)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}", h.GetAvaliacao).Methods(http.MethodGet)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}", h.UpdateAvaliacao).Methods(http.MethodPut)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}", h.DeleteAvaliacao).Methods(http.MethodDelete)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}/evolucao", h.AppendEvolucao).Methods(http.MethodPost)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}/pdf", h.GetAvaliacaoPDF).Methods(http.MethodGet)
	protected.HandleFunc("/avaliacoes/{avaliacaoId}/pdf/email", h.EmailAvaliacaoPDF).Methods(http.MethodPost)

	chain := middleware.Recover(middleware.RequestID(middleware.Timeout(cfg.RequestTimeoutSec)(middleware.CORS(cfg.CORSOrigins)(middleware.Gzip(r)))))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("backend listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("backend stopped")
}

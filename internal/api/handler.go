package api

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasxpaire/soulsalutte/internal/cache"
	"github.com/lucasxpaire/soulsalutte/internal/config"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

// CalendarioEspelho espelha sessões em uma agenda externa (Google Calendar).
// Best-effort: falhas são logadas e não bloqueiam a operação da API.
type CalendarioEspelho interface {
	CriarEvento(ctx context.Context, s *repo.Sessao, clienteNome string) (eventID string, err error)
	AtualizarEvento(ctx context.Context, eventID string, s *repo.Sessao, clienteNome string) error
	RemoverEvento(ctx context.Context, eventID string) error
}

type Handler struct {
	Pool  *pgxpool.Pool
	Cfg   *config.Config
	Cache *cache.TTL
	// Fuso da clínica; timestamps da API são relógio de parede nesse fuso.
	Loc *time.Location

	agora                func() time.Time
	hashPassword         func(string) (string, error)
	sendConfirmacaoEmail func(to, clienteNome string, s *repo.Sessao) error
	sendAvaliacaoPDF     func(to, clienteNome, arquivo string, pdf []byte) error
	calendario           CalendarioEspelho
}

func (h *Handler) SetHashPassword(fn func(string) (string, error)) { h.hashPassword = fn }

func (h *Handler) SetSendConfirmacaoEmail(fn func(to, clienteNome string, s *repo.Sessao) error) {
	h.sendConfirmacaoEmail = fn
}

// SetSendAvaliacaoPDF injeta o envio de e-mail com a avaliação em PDF anexa.
func (h *Handler) SetSendAvaliacaoPDF(fn func(to, clienteNome, arquivo string, pdf []byte) error) {
	h.sendAvaliacaoPDF = fn
}

func (h *Handler) SetCalendario(c CalendarioEspelho) { h.calendario = c }

// SetAgora fixa o relógio do handler (testes). Default: time.Now no fuso da clínica.
func (h *Handler) SetAgora(fn func() time.Time) { h.agora = fn }

func (h *Handler) now() time.Time {
	if h.agora != nil {
		return h.agora()
	}
	if h.Loc != nil {
		return time.Now().In(h.Loc)
	}
	return time.Now()
}

func (h *Handler) loc() *time.Location {
	if h.Loc != nil {
		return h.Loc
	}
	return time.Local
}

package api

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

type calendarioFake struct {
	atualizado chan string
}

func (c *calendarioFake) CriarEvento(ctx context.Context, s *repo.Sessao, clienteNome string) (string, error) {
	return "", nil
}

func (c *calendarioFake) AtualizarEvento(ctx context.Context, eventID string, s *repo.Sessao, clienteNome string) error {
	c.atualizado <- eventID
	return nil
}

func (c *calendarioFake) RemoverEvento(ctx context.Context, eventID string) error { return nil }

func TestAtualizarSessaoReenviaConfirmacao(t *testing.T) {
	enviado := make(chan string, 1)
	cal := &calendarioFake{atualizado: make(chan string, 1)}
	h := &Handler{}
	h.SetSendConfirmacaoEmail(func(to, clienteNome string, s *repo.Sessao) error {
		enviado <- to
		return nil
	})
	h.SetCalendario(cal)

	eventID := "ev-123"
	s := &repo.Sessao{
		ID:            uuid.New(),
		Status:        repo.StatusAgendada,
		Notificacao:   true,
		GoogleEventID: &eventID,
	}
	h.afterSessaoUpdated(s, &repo.Cliente{Nome: "Maria Silva", Email: "maria@example.com"})

	select {
	case to := <-enviado:
		if to != "maria@example.com" {
			t.Errorf("e-mail enviado para %q", to)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reagendamento não disparou e-mail de confirmação")
	}
	select {
	case ev := <-cal.atualizado:
		if ev != "ev-123" {
			t.Errorf("evento atualizado = %q", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reagendamento não atualizou o evento do calendário")
	}
}

func TestAtualizarSessaoNaoReenviaQuandoNaoDeve(t *testing.T) {
	cases := []struct {
		nome    string
		sessao  repo.Sessao
		cliente repo.Cliente
	}{
		{
			nome:    "cancelada",
			sessao:  repo.Sessao{Status: repo.StatusCancelada, Notificacao: true},
			cliente: repo.Cliente{Nome: "Maria", Email: "maria@example.com"},
		},
		{
			nome:    "notificação desligada",
			sessao:  repo.Sessao{Status: repo.StatusAgendada, Notificacao: false},
			cliente: repo.Cliente{Nome: "Maria", Email: "maria@example.com"},
		},
		{
			nome:    "cliente sem e-mail",
			sessao:  repo.Sessao{Status: repo.StatusAgendada, Notificacao: true},
			cliente: repo.Cliente{Nome: "Maria"},
		},
	}
	for _, c := range cases {
		t.Run(c.nome, func(t *testing.T) {
			enviado := make(chan string, 1)
			h := &Handler{}
			h.SetSendConfirmacaoEmail(func(to, clienteNome string, s *repo.Sessao) error {
				enviado <- to
				return nil
			})
			s := c.sessao
			s.ID = uuid.New()
			h.afterSessaoUpdated(&s, &c.cliente)
			select {
			case to := <-enviado:
				t.Fatalf("e-mail inesperado para %q", to)
			case <-time.After(100 * time.Millisecond):
			}
		})
	}
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasxpaire/soulsalutte/internal/agenda"
)

// Status de sessão. Sessões canceladas continuam no banco e some da agenda
// de disponibilidade; remoção de verdade é o DELETE.
const (
	StatusAgendada  = "AGENDADA"
	StatusConcluida = "CONCLUIDA"
	StatusCancelada = "CANCELADA"
)

// StatusValido diz se s é um status de sessão aceito.
func StatusValido(s string) bool {
	return s == StatusAgendada || s == StatusConcluida || s == StatusCancelada
}

// Sessao é um atendimento agendado. Inicio e Fim são relógio de parede local
// (TIMESTAMP sem fuso); invariante inicio < fim é checada na borda da API e
// no banco (constraint).
type Sessao struct {
	ID            uuid.UUID
	ClienteID     uuid.UUID
	Nome          string
	Inicio        time.Time
	Fim           time.Time
	Status        string
	Notas         string
	Notificacao   bool
	GoogleEventID *string
}

const sessaoCols = `id, cliente_id, nome, inicio, fim, status, notas, notificacao, google_event_id`

func scanSessoes(rows pgx.Rows) ([]Sessao, error) {
	defer rows.Close()
	var list []Sessao
	for rows.Next() {
		var s Sessao
		if err := rows.Scan(&s.ID, &s.ClienteID, &s.Nome, &s.Inicio, &s.Fim, &s.Status, &s.Notas, &s.Notificacao, &s.GoogleEventID); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func ListSessoes(ctx context.Context, pool *pgxpool.Pool) ([]Sessao, error) {
	rows, err := pool.Query(ctx, `SELECT `+sessaoCols+` FROM sessoes ORDER BY inicio`)
	if err != nil {
		return nil, err
	}
	return scanSessoes(rows)
}

func ListSessoesByCliente(ctx context.Context, pool *pgxpool.Pool, clienteID uuid.UUID) ([]Sessao, error) {
	rows, err := pool.Query(ctx, `SELECT `+sessaoCols+` FROM sessoes WHERE cliente_id = $1 ORDER BY inicio`, clienteID)
	if err != nil {
		return nil, err
	}
	return scanSessoes(rows)
}

// ListSessoesByPeriodo retorna sessões com início dentro de [from, to] —
// base das visões de semana e mês do calendário.
func ListSessoesByPeriodo(ctx context.Context, pool *pgxpool.Pool, from, to time.Time) ([]Sessao, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+sessaoCols+` FROM sessoes
		WHERE inicio >= $1 AND inicio <= $2
		ORDER BY inicio
	`, from, to)
	if err != nil {
		return nil, err
	}
	return scanSessoes(rows)
}

func SessaoByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Sessao, error) {
	var s Sessao
	err := pool.QueryRow(ctx, `SELECT `+sessaoCols+` FROM sessoes WHERE id = $1`, id).
		Scan(&s.ID, &s.ClienteID, &s.Nome, &s.Inicio, &s.Fim, &s.Status, &s.Notas, &s.Notificacao, &s.GoogleEventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func CreateSessao(ctx context.Context, pool *pgxpool.Pool, s *Sessao) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO sessoes (cliente_id, nome, inicio, fim, status, notas, notificacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
	`, s.ClienteID, s.Nome, s.Inicio, s.Fim, s.Status, s.Notas, s.Notificacao).Scan(&id)
	return id, err
}

func UpdateSessao(ctx context.Context, pool *pgxpool.Pool, s *Sessao) error {
	tag, err := pool.Exec(ctx, `
		UPDATE sessoes SET cliente_id = $1, nome = $2, inicio = $3, fim = $4, status = $5,
			notas = $6, notificacao = $7, updated_at = now()
		WHERE id = $8
	`, s.ClienteID, s.Nome, s.Inicio, s.Fim, s.Status, s.Notas, s.Notificacao, s.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteSessao(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM sessoes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSessaoGoogleEventID grava o id do evento espelhado no Google Calendar.
func SetSessaoGoogleEventID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, eventID *string) error {
	_, err := pool.Exec(ctx, `UPDATE sessoes SET google_event_id = $1, updated_at = now() WHERE id = $2`, eventID, id)
	return err
}

// PeriodosOcupados retorna os intervalos [inicio, fim) das sessões não
// canceladas do dia — a entrada da grade de disponibilidade.
func PeriodosOcupados(ctx context.Context, pool *pgxpool.Pool, data time.Time) ([]agenda.PeriodoOcupado, error) {
	rows, err := pool.Query(ctx, `
		SELECT inicio, fim FROM sessoes
		WHERE inicio::date = $1::date AND status <> $2
		ORDER BY inicio
	`, data, StatusCancelada)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []agenda.PeriodoOcupado
	for rows.Next() {
		var p agenda.PeriodoOcupado
		if err := rows.Scan(&p.Inicio, &p.Fim); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SessaoLembreteRow tem os dados para um lembrete (sessão + contato do cliente).
type SessaoLembreteRow struct {
	SessaoID    uuid.UUID
	ClienteID   uuid.UUID
	ClienteNome string
	Email       string
	Telefone    string
	Inicio      time.Time
}

// ListSessoesParaLembrete retorna as sessões agendadas do dia com notificação
// ligada e contato não vazio, para o job de lembretes.
func ListSessoesParaLembrete(ctx context.Context, pool *pgxpool.Pool, data time.Time) ([]SessaoLembreteRow, error) {
	rows, err := pool.Query(ctx, `
		SELECT s.id, c.id, c.nome, TRIM(c.email), TRIM(c.telefone), s.inicio
		FROM sessoes s
		JOIN clientes c ON c.id = s.cliente_id
		WHERE s.inicio::date = $1::date
		  AND s.status = $2
		  AND s.notificacao
		  AND (TRIM(c.email) <> '' OR TRIM(c.telefone) <> '')
		ORDER BY s.inicio, c.nome
	`, data, StatusAgendada)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []SessaoLembreteRow
	for rows.Next() {
		var r SessaoLembreteRow
		if err := rows.Scan(&r.SessaoID, &r.ClienteID, &r.ClienteNome, &r.Email, &r.Telefone, &r.Inicio); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

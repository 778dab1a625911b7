// Package client é o client REST da API da clínica. Implementa as interfaces
// que o formulário de agendamento espera (booking.OcupadosFonte e
// booking.Salvador), então pode ser plugado direto no Form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lucasxpaire/soulsalutte/internal/agenda"
	"github.com/lucasxpaire/soulsalutte/internal/api"
	"github.com/lucasxpaire/soulsalutte/internal/booking"
)

// APIError é um erro retornado pela API ({"error":"..."} com status != 2xx).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client fala com a API. O token vem do Login (ou de SetToken) e é enviado
// como Bearer em todas as chamadas seguintes.
type Client struct {
	baseURL string
	token   string
	loc     *time.Location
	client  *http.Client
}

// New cria um client para baseURL (ex.: "http://localhost:8080"). loc é o
// fuso da clínica para interpretar os timestamps de parede; nil usa time.Local.
func New(baseURL string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL: baseURL,
		loc:     loc,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken define o token manualmente (ex.: token persistido de uma sessão
// anterior ainda válida).
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = string(raw)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login autentica e guarda o token para as próximas chamadas.
func (c *Client) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", api.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// ListClientes lista clientes; nome filtra por substring quando não vazio.
func (c *Client) ListClientes(ctx context.Context, nome string) ([]api.ClienteResponse, error) {
	path := "/api/clientes"
	if nome != "" {
		path += "?nome=" + url.QueryEscape(nome)
	}
	var out []api.ClienteResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCliente(ctx context.Context, id string) (*api.ClienteResponse, error) {
	var out api.ClienteResponse
	if err := c.do(ctx, http.MethodGet, "/api/clientes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCliente(ctx context.Context, req api.ClienteRequest) (*api.ClienteResponse, error) {
	var out api.ClienteResponse
	if err := c.do(ctx, http.MethodPost, "/api/clientes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCliente(ctx context.Context, id string, req api.ClienteRequest) (*api.ClienteResponse, error) {
	var out api.ClienteResponse
	if err := c.do(ctx, http.MethodPut, "/api/clientes/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCliente(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/clientes/"+url.PathEscape(id), nil, nil)
}

// SessoesFiltro restringe ListSessoes: por cliente ou por intervalo fechado
// de datas. Zero value lista tudo.
type SessoesFiltro struct {
	ClienteID string
	From      time.Time
	To        time.Time
}

func (c *Client) ListSessoes(ctx context.Context, filtro SessoesFiltro) ([]api.SessaoResponse, error) {
	q := url.Values{}
	if filtro.ClienteID != "" {
		q.Set("clienteId", filtro.ClienteID)
	}
	if !filtro.From.IsZero() {
		q.Set("from", filtro.From.Format(agenda.LayoutData))
	}
	if !filtro.To.IsZero() {
		q.Set("to", filtro.To.Format(agenda.LayoutData))
	}
	path := "/api/sessoes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []api.SessaoResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSessao(ctx context.Context, id string) (*api.SessaoResponse, error) {
	var out api.SessaoResponse
	if err := c.do(ctx, http.MethodGet, "/api/sessoes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSessao(ctx context.Context, clienteID string, req api.SessaoRequest) (*api.SessaoResponse, error) {
	var out api.SessaoResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessoes/cliente/"+url.PathEscape(clienteID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSessao(ctx context.Context, id string, req api.SessaoRequest) (*api.SessaoResponse, error) {
	var out api.SessaoResponse
	if err := c.do(ctx, http.MethodPut, "/api/sessoes/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSessao(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessoes/"+url.PathEscape(id), nil, nil)
}

// PeriodosOcupados busca os períodos ocupados do dia. Satisfaz
// booking.OcupadosFonte.
func (c *Client) PeriodosOcupados(ctx context.Context, data time.Time) ([]agenda.PeriodoOcupado, error) {
	path := "/api/agenda/ocupados?data=" + data.Format(agenda.LayoutData)
	var raw []api.OcupadoResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]agenda.PeriodoOcupado, 0, len(raw))
	for _, o := range raw {
		inicio, err := time.ParseInLocation(agenda.LayoutDataHora, o.Start.DateTime, c.loc)
		if err != nil {
			return nil, fmt.Errorf("ocupados: start %q: %w", o.Start.DateTime, err)
		}
		fim, err := time.ParseInLocation(agenda.LayoutDataHora, o.End.DateTime, c.loc)
		if err != nil {
			return nil, fmt.Errorf("ocupados: end %q: %w", o.End.DateTime, err)
		}
		out = append(out, agenda.PeriodoOcupado{Inicio: inicio, Fim: fim})
	}
	return out, nil
}

// HorariosResponse é a grade de um dia para uma duração.
type HorariosResponse struct {
	Data     string           `json:"data"`
	Duracao  int              `json:"duracao"`
	Horarios []agenda.Horario `json:"horarios"`
}

func (c *Client) Horarios(ctx context.Context, data time.Time, duracaoMin int) (*HorariosResponse, error) {
	path := "/api/agenda/horarios?data=" + data.Format(agenda.LayoutData) + "&duracao=" + strconv.Itoa(duracaoMin)
	var out HorariosResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Salvar cria a sessão composta pelo formulário de agendamento. Satisfaz
// booking.Salvador.
func (c *Client) Salvar(ctx context.Context, a booking.Agendamento) error {
	notificacao := a.Notificacao
	_, err := c.CreateSessao(ctx, a.ClienteID.String(), api.SessaoRequest{
		Nome:        a.Nome,
		Inicio:      a.Inicio,
		Fim:         a.Fim,
		Notas:       a.Notas,
		Notificacao: &notificacao,
	})
	return err
}

// Eventos projeta as sessões do intervalo como eventos de calendário, prontos
// para agenda.AgruparPorDia / agenda.EventosDoDia.
func (c *Client) Eventos(ctx context.Context, from, to time.Time) ([]agenda.Evento, error) {
	sessoes, err := c.ListSessoes(ctx, SessoesFiltro{From: from, To: to})
	if err != nil {
		return nil, err
	}
	out := make([]agenda.Evento, 0, len(sessoes))
	for _, s := range sessoes {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, fmt.Errorf("eventos: id %q: %w", s.ID, err)
		}
		clienteID, err := uuid.Parse(s.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("eventos: clienteId %q: %w", s.ClienteID, err)
		}
		inicio, err := time.ParseInLocation(agenda.LayoutDataHora, s.Inicio, c.loc)
		if err != nil {
			return nil, fmt.Errorf("eventos: inicio %q: %w", s.Inicio, err)
		}
		fim, err := time.ParseInLocation(agenda.LayoutDataHora, s.Fim, c.loc)
		if err != nil {
			return nil, fmt.Errorf("eventos: fim %q: %w", s.Fim, err)
		}
		out = append(out, agenda.Evento{
			ID:        id,
			Titulo:    s.Nome,
			Inicio:    inicio,
			Fim:       fim,
			Status:    s.Status,
			ClienteID: clienteID,
		})
	}
	return out, nil
}

func (c *Client) ListAvaliacoes(ctx context.Context, clienteID string) ([]api.AvaliacaoResponse, error) {
	var out []api.AvaliacaoResponse
	if err := c.do(ctx, http.MethodGet, "/api/avaliacoes/cliente/"+url.PathEscape(clienteID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAvaliacao(ctx context.Context, clienteID string, req api.AvaliacaoRequest) (*api.AvaliacaoResponse, error) {
	var out api.AvaliacaoResponse
	if err := c.do(ctx, http.MethodPost, "/api/avaliacoes/cliente/"+url.PathEscape(clienteID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAvaliacao(ctx context.Context, id string) (*api.AvaliacaoResponse, error) {
	var out api.AvaliacaoResponse
	if err := c.do(ctx, http.MethodGet, "/api/avaliacoes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAvaliacao(ctx context.Context, id string, req api.AvaliacaoRequest) (*api.AvaliacaoResponse, error) {
	var out api.AvaliacaoResponse
	if err := c.do(ctx, http.MethodPut, "/api/avaliacoes/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAvaliacao(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/avaliacoes/"+url.PathEscape(id), nil, nil)
}

// AppendEvolucao acrescenta uma nota de evolução e devolve a avaliação
// atualizada.
func (c *Client) AppendEvolucao(ctx context.Context, id, nota string) (*api.AvaliacaoResponse, error) {
	var out api.AvaliacaoResponse
	body := map[string]string{"nota": nota}
	if err := c.do(ctx, http.MethodPost, "/api/avaliacoes/"+url.PathEscape(id)+"/evolucao", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

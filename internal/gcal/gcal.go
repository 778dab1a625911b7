package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

const baseURL = "https://www.googleapis.com/calendar/v3"

// Config holds the static access token and target calendar for mirroring
// sessions into Google Calendar. No OAuth flow: the token is provisioned
// out of band and rotated via env.
type Config struct {
	AccessToken string
	CalendarID  string // "primary" ou o ID específico do calendário
	Timezone    string
}

// Client espelha sessões no Google Calendar. Best-effort: quem chama decide
// o que fazer com erros; nada aqui bloqueia o fluxo principal.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient returns a calendar client, or nil if AccessToken is empty
// (mirroring disabled).
func NewClient(cfg Config) *Client {
	if cfg.AccessToken == "" {
		return nil
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Sao_Paulo"
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type event struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

func (c *Client) sessaoToEvent(s *repo.Sessao, clienteNome string) event {
	if clienteNome == "" {
		clienteNome = "N/A"
	}
	notas := s.Notas
	if notas == "" {
		notas = "Nenhuma nota"
	}
	return event{
		Summary:     s.Nome,
		Description: fmt.Sprintf("Cliente: %s\nStatus: %s\nNotas: %s", clienteNome, s.Status, notas),
		Start:       eventTime{DateTime: s.Inicio.Format(time.RFC3339), TimeZone: c.cfg.Timezone},
		End:         eventTime{DateTime: s.Fim.Format(time.RFC3339), TimeZone: c.cfg.Timezone},
	}
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("gcal: %s %s: %s: %s", method, url, resp.Status, string(slurp))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CriarEvento cria o evento da sessão e retorna o id no calendário.
func (c *Client) CriarEvento(ctx context.Context, s *repo.Sessao, clienteNome string) (string, error) {
	url := fmt.Sprintf("%s/calendars/%s/events", baseURL, c.cfg.CalendarID)
	var created event
	if err := c.do(ctx, http.MethodPost, url, c.sessaoToEvent(s, clienteNome), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// AtualizarEvento substitui o evento espelhado (reagendamento, status, notas).
func (c *Client) AtualizarEvento(ctx context.Context, eventID string, s *repo.Sessao, clienteNome string) error {
	url := fmt.Sprintf("%s/calendars/%s/events/%s", baseURL, c.cfg.CalendarID, eventID)
	return c.do(ctx, http.MethodPut, url, c.sessaoToEvent(s, clienteNome), nil)
}

// RemoverEvento apaga o evento espelhado. 404/410 não é erro: o evento já
// pode ter sido removido direto no calendário.
func (c *Client) RemoverEvento(ctx context.Context, eventID string) error {
	url := fmt.Sprintf("%s/calendars/%s/events/%s", baseURL, c.cfg.CalendarID, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("gcal: DELETE %s: %s: %s", url, resp.Status, string(slurp))
	}
	return nil
}

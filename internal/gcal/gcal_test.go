package gcal

import (
	"strings"
	"testing"
	"time"

	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

func TestNewClient_NilSemToken(t *testing.T) {
	if c := NewClient(Config{}); c != nil {
		t.Error("sem token o espelhamento fica desativado (client nil)")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{AccessToken: "tok"})
	if c == nil {
		t.Fatal("client não deve ser nil com token")
	}
	if c.cfg.CalendarID != "primary" {
		t.Errorf("CalendarID default: got %q, want primary", c.cfg.CalendarID)
	}
	if c.cfg.Timezone != "America/Sao_Paulo" {
		t.Errorf("Timezone default: got %q", c.cfg.Timezone)
	}
}

func TestSessaoToEvent(t *testing.T) {
	c := NewClient(Config{AccessToken: "tok"})
	s := &repo.Sessao{
		Nome:   "Sessão de Fisioterapia",
		Inicio: time.Date(2024, 8, 12, 14, 0, 0, 0, time.Local),
		Fim:    time.Date(2024, 8, 12, 15, 0, 0, 0, time.Local),
		Status: repo.StatusAgendada,
	}
	ev := c.sessaoToEvent(s, "Maria")
	if ev.Summary != "Sessão de Fisioterapia" {
		t.Errorf("summary: %q", ev.Summary)
	}
	if !strings.Contains(ev.Description, "Cliente: Maria") || !strings.Contains(ev.Description, "Nenhuma nota") {
		t.Errorf("description: %q", ev.Description)
	}
	if ev.Start.TimeZone != "America/Sao_Paulo" || ev.End.TimeZone != "America/Sao_Paulo" {
		t.Errorf("timezone: %q/%q", ev.Start.TimeZone, ev.End.TimeZone)
	}
	if !strings.HasPrefix(ev.Start.DateTime, "2024-08-12T14:00:00") {
		t.Errorf("start: %q", ev.Start.DateTime)
	}
}

package agenda

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Evento é a projeção de uma sessão para o calendário (semana ou mês).
type Evento struct {
	ID        uuid.UUID `json:"id"`
	Titulo    string    `json:"titulo"`
	Inicio    time.Time `json:"inicio"`
	Fim       time.Time `json:"fim"`
	Status    string    `json:"status"`
	ClienteID uuid.UUID `json:"clienteId"`
}

// AgruparPorDia agrupa eventos por dia de calendário local (YYYY-MM-DD),
// comparando a data, não o instante. Dentro de cada dia, ordena por início.
func AgruparPorDia(eventos []Evento) map[string][]Evento {
	porDia := make(map[string][]Evento)
	for _, e := range eventos {
		k := e.Inicio.Format("2006-01-02")
		porDia[k] = append(porDia[k], e)
	}
	for k := range porDia {
		dia := porDia[k]
		sort.Slice(dia, func(i, j int) bool { return dia[i].Inicio.Before(dia[j].Inicio) })
		porDia[k] = dia
	}
	return porDia
}

// EventosDoDia filtra os eventos cujo início cai no dia de calendário de data.
func EventosDoDia(eventos []Evento, data time.Time) []Evento {
	var out []Evento
	for _, e := range eventos {
		if MesmoDia(e.Inicio, data) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Inicio.Before(out[j].Inicio) })
	return out
}

// Semana retorna os 7 dias da semana de ref, começando no domingo.
func Semana(ref time.Time) []time.Time {
	dia := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	domingo := dia.AddDate(0, 0, -int(dia.Weekday()))
	dias := make([]time.Time, 7)
	for i := range dias {
		dias[i] = domingo.AddDate(0, 0, i)
	}
	return dias
}

// GradeMes retorna os dias da grade mensal de ref: do domingo da semana do
// dia 1 ao sábado da semana do último dia, sempre múltiplo de 7.
func GradeMes(ref time.Time) []time.Time {
	primeiro := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	ultimo := primeiro.AddDate(0, 1, -1)
	inicio := primeiro.AddDate(0, 0, -int(primeiro.Weekday()))
	fim := ultimo.AddDate(0, 0, 6-int(ultimo.Weekday()))
	var dias []time.Time
	for d := inicio; !d.After(fim); d = d.AddDate(0, 0, 1) {
		dias = append(dias, d)
	}
	return dias
}

// Reagendar calcula o novo início/fim de um evento arrastado para destino:
// os dois instantes são transladados pelo mesmo delta, preservando a duração
// original. Não valida conflito com a grade de horários: a profissional pode
// encaixar ou sobrepor atendimentos de propósito.
func Reagendar(ev Evento, destino time.Time) (novoInicio, novoFim time.Time) {
	delta := destino.Sub(ev.Inicio)
	return ev.Inicio.Add(delta), ev.Fim.Add(delta)
}

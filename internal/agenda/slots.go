package agenda

import (
	"time"
)

// Janela de atendimento da clínica e passo da grade de horários.
// Constantes do domínio, não configuráveis pelo usuário.
const (
	JanelaInicioHora = 8
	JanelaFimHora    = 18
	PassoMinutos     = 30
)

// DuracoesPermitidas são as durações de sessão aceitas, em minutos.
var DuracoesPermitidas = []int{60, 90, 120}

// Layouts de data/hora do contrato da API. Timestamps trafegam como relógio
// de parede local da clínica, sem offset de fuso.
const (
	LayoutData     = "2006-01-02"
	LayoutDataHora = "2006-01-02T15:04"
)

// PeriodoOcupado é um intervalo meio-aberto [Inicio, Fim) já comprometido
// na agenda (sessão existente ou compromisso externo). Somente leitura.
type PeriodoOcupado struct {
	Inicio time.Time
	Fim    time.Time
}

// Horario é um slot candidato da grade: hora de início (HH:mm) e se está
// ocupado. Valor derivado, recalculado a cada mudança de data/duração.
type Horario struct {
	Hora    string `json:"hora"`
	Ocupado bool   `json:"ocupado"`
}

// DuracaoPermitida diz se a duração (em minutos) é uma das aceitas.
func DuracaoPermitida(min int) bool {
	for _, d := range DuracoesPermitidas {
		if d == min {
			return true
		}
	}
	return false
}

// GerarHorarios monta a grade de horários do dia: um slot a cada
// PassoMinutos com início dentro da janela de atendimento, marcado como
// ocupado quando conflita com algum período ocupado ou, no dia corrente,
// quando o início já passou de agora.
//
// O fim da janela limita apenas o INÍCIO do slot: um slot que começa às
// 17:30 com duração de 90 minutos termina depois das 18:00 e ainda assim
// é oferecido. Comportamento intencional, coberto por teste.
//
// Função pura: mesma (data, duração, ocupados, agora) ⇒ mesma grade.
// Não faz I/O; buscar os períodos ocupados é responsabilidade de quem chama.
func GerarHorarios(data time.Time, duracaoMin int, ocupados []PeriodoOcupado, agora time.Time) []Horario {
	dia := time.Date(data.Year(), data.Month(), data.Day(), 0, 0, 0, 0, data.Location())
	inicioJanela := dia.Add(JanelaInicioHora * time.Hour)
	fimJanela := dia.Add(JanelaFimHora * time.Hour)
	duracao := time.Duration(duracaoMin) * time.Minute
	hoje := MesmoDia(data, agora)

	var grade []Horario
	for slotInicio := inicioJanela; slotInicio.Before(fimJanela); slotInicio = slotInicio.Add(PassoMinutos * time.Minute) {
		slotFim := slotInicio.Add(duracao)
		ocupado := hoje && slotInicio.Before(agora)
		if !ocupado {
			for _, p := range ocupados {
				// Interseção de intervalos meio-abertos: [s0,s1) x [b0,b1).
				// Toque de borda (s1 == b0 ou s0 == b1) não conflita.
				if slotInicio.Before(p.Fim) && p.Inicio.Before(slotFim) {
					ocupado = true
					break
				}
			}
		}
		grade = append(grade, Horario{Hora: slotInicio.Format("15:04"), Ocupado: ocupado})
	}
	return grade
}

// HorarioNaGrade procura hora (HH:mm) na grade; retorna o slot e se existe.
func HorarioNaGrade(grade []Horario, hora string) (Horario, bool) {
	for _, h := range grade {
		if h.Hora == hora {
			return h, true
		}
	}
	return Horario{}, false
}

// MesmoDia compara data de calendário local, não o instante.
func MesmoDia(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

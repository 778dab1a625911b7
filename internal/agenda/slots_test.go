package agenda

import (
	"testing"
	"time"
)

func dia(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func hora(base time.Time, hh, mm int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hh, mm, 0, 0, base.Location())
}

// agora em outro dia: nenhum slot é cortado pela regra de "já passou".
var outroDia = dia(2024, 8, 1)

func TestGerarHorarios_GradeCompleta(t *testing.T) {
	data := dia(2024, 8, 12)
	grade := GerarHorarios(data, 60, nil, outroDia)
	// 08:00 até 17:30, passo 30 = 20 slots
	if len(grade) != 20 {
		t.Fatalf("grade: got %d slots, want 20", len(grade))
	}
	if grade[0].Hora != "08:00" {
		t.Errorf("primeiro slot: got %q, want 08:00", grade[0].Hora)
	}
	if grade[len(grade)-1].Hora != "17:30" {
		t.Errorf("último slot: got %q, want 17:30", grade[len(grade)-1].Hora)
	}
	// Sem ocupados e fora do dia corrente, todos livres.
	for _, h := range grade {
		if h.Ocupado {
			t.Errorf("slot %s ocupado com agenda vazia", h.Hora)
		}
	}
}

func TestGerarHorarios_UltimoSlotNaoCortadoPeloFimDaJanela(t *testing.T) {
	// O fim da janela limita só o início: 17:30 + 120min passa das 18:00
	// e mesmo assim o slot existe.
	data := dia(2024, 8, 12)
	grade := GerarHorarios(data, 120, nil, outroDia)
	h, ok := HorarioNaGrade(grade, "17:30")
	if !ok {
		t.Fatal("slot 17:30 ausente com duração 120")
	}
	if h.Ocupado {
		t.Error("slot 17:30 deveria estar livre")
	}
}

func TestGerarHorarios_SobreposicaoMeioAberta(t *testing.T) {
	data := dia(2024, 8, 12)
	ocupados := []PeriodoOcupado{{Inicio: hora(data, 10, 0), Fim: hora(data, 11, 0)}}

	cases := []struct {
		hora    string
		duracao int
		ocupado bool
	}{
		{"09:30", 30, false}, // termina exatamente às 10:00: s1 == b0, não conflita
		{"09:30", 60, true},  // 09:30+60 = 10:30 > 10:00, conflita
		{"10:00", 60, true},  // s0 == b0
		{"10:30", 60, true},  // dentro do período
		{"11:00", 60, false}, // começa exatamente no fim: s0 == b1, não conflita
		{"08:00", 60, false},
	}
	for _, c := range cases {
		grade := GerarHorarios(data, c.duracao, ocupados, outroDia)
		h, ok := HorarioNaGrade(grade, c.hora)
		if !ok {
			t.Fatalf("slot %s ausente", c.hora)
		}
		if h.Ocupado != c.ocupado {
			t.Errorf("slot %s duração %d: ocupado=%v, want %v", c.hora, c.duracao, h.Ocupado, c.ocupado)
		}
	}
}

func TestGerarHorarios_MudancaDeDuracaoDerrubaSlot(t *testing.T) {
	// Livre com 60, ocupado com 90: o mesmo slot muda de estado quando a
	// duração esticada passa a alcançar o período ocupado.
	data := dia(2024, 8, 12)
	ocupados := []PeriodoOcupado{{Inicio: hora(data, 14, 0), Fim: hora(data, 15, 0)}}

	g60 := GerarHorarios(data, 60, ocupados, outroDia)
	h60, _ := HorarioNaGrade(g60, "13:00")
	if h60.Ocupado {
		t.Fatal("13:00 com 60min deveria estar livre (termina às 14:00)")
	}
	g90 := GerarHorarios(data, 90, ocupados, outroDia)
	h90, _ := HorarioNaGrade(g90, "13:00")
	if !h90.Ocupado {
		t.Fatal("13:00 com 90min deveria estar ocupado (termina às 14:30)")
	}
}

func TestGerarHorarios_CorteDeHorariosPassadosNoDiaCorrente(t *testing.T) {
	data := dia(2024, 8, 12)
	agora := hora(data, 10, 15)
	grade := GerarHorarios(data, 60, nil, agora)
	for _, h := range grade {
		passado := h.Hora < "10:15"
		if h.Ocupado != passado {
			t.Errorf("slot %s: ocupado=%v com agora=10:15", h.Hora, h.Ocupado)
		}
	}
	// 10:30 em diante continua livre mesmo sendo hoje.
	if h, _ := HorarioNaGrade(grade, "10:30"); h.Ocupado {
		t.Error("slot 10:30 deveria estar livre")
	}
}

func TestGerarHorarios_SlotNoInstanteExatoNaoEPassado(t *testing.T) {
	// Início exatamente igual a agora não conta como "já passou".
	data := dia(2024, 8, 12)
	agora := hora(data, 10, 0)
	grade := GerarHorarios(data, 60, nil, agora)
	if h, _ := HorarioNaGrade(grade, "10:00"); h.Ocupado {
		t.Error("slot 10:00 com agora=10:00 deveria estar livre")
	}
	if h, _ := HorarioNaGrade(grade, "09:30"); !h.Ocupado {
		t.Error("slot 09:30 com agora=10:00 deveria estar ocupado")
	}
}

func TestGerarHorarios_TodosOcupadosAindaRetornaGradeInteira(t *testing.T) {
	data := dia(2024, 8, 12)
	ocupados := []PeriodoOcupado{{Inicio: hora(data, 8, 0), Fim: hora(data, 20, 0)}}
	grade := GerarHorarios(data, 60, ocupados, outroDia)
	if len(grade) != 20 {
		t.Fatalf("grade toda ocupada: got %d slots, want 20", len(grade))
	}
	for _, h := range grade {
		if !h.Ocupado {
			t.Errorf("slot %s deveria estar ocupado", h.Hora)
		}
	}
}

func TestGerarHorarios_Determinismo(t *testing.T) {
	data := dia(2024, 8, 12)
	agora := hora(data, 9, 40)
	ocupados := []PeriodoOcupado{
		{Inicio: hora(data, 10, 0), Fim: hora(data, 11, 0)},
		{Inicio: hora(data, 15, 30), Fim: hora(data, 17, 0)},
	}
	a := GerarHorarios(data, 90, ocupados, agora)
	b := GerarHorarios(data, 90, ocupados, agora)
	if len(a) != len(b) {
		t.Fatalf("tamanhos diferentes: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("slot %d divergiu: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDuracaoPermitida(t *testing.T) {
	for _, d := range []int{60, 90, 120} {
		if !DuracaoPermitida(d) {
			t.Errorf("duração %d deveria ser permitida", d)
		}
	}
	for _, d := range []int{0, 30, 45, 50, 180} {
		if DuracaoPermitida(d) {
			t.Errorf("duração %d não deveria ser permitida", d)
		}
	}
}

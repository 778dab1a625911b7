package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lucasxpaire/soulsalutte/internal/agenda"
)

func dia(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// agoraFixo fica num dia distante para o corte de "já passou" não interferir.
func agoraFixo() time.Time { return dia(2024, 1, 1) }

type fonteFixa struct {
	ocupados map[string][]agenda.PeriodoOcupado
	err      error
	chamadas int
}

func (f *fonteFixa) PeriodosOcupados(_ context.Context, data time.Time) ([]agenda.PeriodoOcupado, error) {
	f.chamadas++
	if f.err != nil {
		return nil, f.err
	}
	return f.ocupados[data.Format("2006-01-02")], nil
}

func ocupado(d time.Time, hIni, mIni, hFim, mFim int) agenda.PeriodoOcupado {
	return agenda.PeriodoOcupado{
		Inicio: time.Date(d.Year(), d.Month(), d.Day(), hIni, mIni, 0, 0, d.Location()),
		Fim:    time.Date(d.Year(), d.Month(), d.Day(), hFim, mFim, 0, 0, d.Location()),
	}
}

func TestForm_TransicoesBasicas(t *testing.T) {
	f := NovoForm(&fonteFixa{}, agoraFixo)
	if f.Estado() != SemData {
		t.Fatalf("estado inicial: got %v, want SemData", f.Estado())
	}
	if err := f.SelecionarHorario("09:00"); !errors.Is(err, ErrSemGrade) {
		t.Fatalf("selecionar horário sem data: got %v, want ErrSemGrade", err)
	}

	data := dia(2024, 8, 12)
	if err := f.SelecionarData(context.Background(), data); err != nil {
		t.Fatalf("SelecionarData: %v", err)
	}
	if f.Estado() != HorariosProntos {
		t.Fatalf("após fetch: got %v, want HorariosProntos", f.Estado())
	}
	if err := f.SelecionarHorario("14:00"); err != nil {
		t.Fatalf("SelecionarHorario: %v", err)
	}
	if f.Estado() != HorarioSelecionado {
		t.Fatalf("após escolher horário: got %v, want HorarioSelecionado", f.Estado())
	}

	// Trocar a data descarta a seleção anterior.
	if err := f.SelecionarData(context.Background(), dia(2024, 8, 13)); err != nil {
		t.Fatalf("segunda SelecionarData: %v", err)
	}
	if f.Estado() != HorariosProntos || f.HoraSelecionada() != "" {
		t.Errorf("troca de data deveria limpar a seleção: estado=%v hora=%q", f.Estado(), f.HoraSelecionada())
	}
}

func TestForm_FalhaDeFetchCaiParaAgendaVazia(t *testing.T) {
	// Política otimista: erro na busca vira agenda sem conflitos conhecidos,
	// o erro sobe para a UI exibir.
	fonte := &fonteFixa{err: errors.New("rede fora")}
	f := NovoForm(fonte, agoraFixo)
	err := f.SelecionarData(context.Background(), dia(2024, 8, 12))
	if err == nil {
		t.Fatal("erro da fonte deveria ser devolvido")
	}
	if f.Estado() != HorariosProntos {
		t.Fatalf("estado após falha: got %v, want HorariosProntos", f.Estado())
	}
	for _, h := range f.Grade() {
		if h.Ocupado {
			t.Errorf("slot %s ocupado; fallback deveria ser grade livre", h.Hora)
		}
	}
}

func TestForm_DuracaoMaiorDerrubaSelecao(t *testing.T) {
	data := dia(2024, 8, 12)
	fonte := &fonteFixa{ocupados: map[string][]agenda.PeriodoOcupado{
		"2024-08-12": {ocupado(data, 14, 0, 15, 0)},
	}}
	f := NovoForm(fonte, agoraFixo)
	if err := f.SelecionarData(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	// 13:00 com 60min termina às 14:00 (borda, livre).
	if err := f.SelecionarHorario("13:00"); err != nil {
		t.Fatalf("13:00 com 60min deveria estar livre: %v", err)
	}
	// Esticar para 90min alcança o período ocupado: seleção cai.
	if err := f.SelecionarDuracao(90); err != nil {
		t.Fatal(err)
	}
	if f.HoraSelecionada() != "" || f.Estado() != HorariosProntos {
		t.Errorf("seleção deveria ter sido limpa: hora=%q estado=%v", f.HoraSelecionada(), f.Estado())
	}
	if fonte.chamadas != 1 {
		t.Errorf("troca de duração não deveria refazer a busca: %d chamadas", fonte.chamadas)
	}
}

func TestForm_DuracaoInvalida(t *testing.T) {
	f := NovoForm(&fonteFixa{}, agoraFixo)
	if err := f.SelecionarDuracao(45); !errors.Is(err, ErrDuracaoInvalida) {
		t.Fatalf("got %v, want ErrDuracaoInvalida", err)
	}
}

func TestForm_HorarioOcupadoRecusado(t *testing.T) {
	data := dia(2024, 8, 12)
	fonte := &fonteFixa{ocupados: map[string][]agenda.PeriodoOcupado{
		"2024-08-12": {ocupado(data, 10, 0, 11, 0)},
	}}
	f := NovoForm(fonte, agoraFixo)
	if err := f.SelecionarData(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	if err := f.SelecionarHorario("10:00"); !errors.Is(err, ErrHorarioIndisponivel) {
		t.Fatalf("got %v, want ErrHorarioIndisponivel", err)
	}
	if err := f.SelecionarHorario("25:99"); !errors.Is(err, ErrHorarioIndisponivel) {
		t.Fatalf("hora fora da grade: got %v, want ErrHorarioIndisponivel", err)
	}
}

func TestForm_ComposicaoExata(t *testing.T) {
	// data=2024-08-12, hora=14:00, duração=60 ⇒ inicio/fim exatos por contrato.
	f := NovoForm(&fonteFixa{}, agoraFixo)
	f.SetCliente(uuid.New())
	if err := f.SelecionarData(context.Background(), dia(2024, 8, 12)); err != nil {
		t.Fatal(err)
	}
	if err := f.SelecionarHorario("14:00"); err != nil {
		t.Fatal(err)
	}
	a, err := f.Montar()
	if err != nil {
		t.Fatal(err)
	}
	if a.Inicio != "2024-08-12T14:00" {
		t.Errorf("inicio: got %q, want 2024-08-12T14:00", a.Inicio)
	}
	if a.Fim != "2024-08-12T15:00" {
		t.Errorf("fim: got %q, want 2024-08-12T15:00", a.Fim)
	}
}

func TestForm_ValidacaoDeSubmissao(t *testing.T) {
	f := NovoForm(&fonteFixa{}, agoraFixo)
	if _, err := f.Montar(); !errors.Is(err, ErrClienteObrigatorio) {
		t.Fatalf("sem cliente: got %v, want ErrClienteObrigatorio", err)
	}
	f.SetCliente(uuid.New())
	if _, err := f.Montar(); !errors.Is(err, ErrHorarioObrigatorio) {
		t.Fatalf("sem horário: got %v, want ErrHorarioObrigatorio", err)
	}
}

// salvadorLento segura o salvamento até liberar, para testar a trava de
// submissão dupla.
type salvadorLento struct {
	entrou  chan struct{}
	libera  chan struct{}
	salvos  int
	mu      sync.Mutex
}

func (s *salvadorLento) Salvar(context.Context, Agendamento) error {
	close(s.entrou)
	<-s.libera
	s.mu.Lock()
	s.salvos++
	s.mu.Unlock()
	return nil
}

func TestForm_SubmissaoDuplaBloqueada(t *testing.T) {
	f := NovoForm(&fonteFixa{}, agoraFixo)
	f.SetCliente(uuid.New())
	if err := f.SelecionarData(context.Background(), dia(2024, 8, 12)); err != nil {
		t.Fatal(err)
	}
	if err := f.SelecionarHorario("09:00"); err != nil {
		t.Fatal(err)
	}

	s := &salvadorLento{entrou: make(chan struct{}), libera: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := f.Submeter(context.Background(), s)
		done <- err
	}()
	<-s.entrou
	// Segunda submissão com a primeira em voo.
	if _, err := f.Submeter(context.Background(), s); !errors.Is(err, ErrSalvamentoEmAndamento) {
		t.Fatalf("got %v, want ErrSalvamentoEmAndamento", err)
	}
	close(s.libera)
	if err := <-done; err != nil {
		t.Fatalf("primeira submissão: %v", err)
	}
	if s.salvos != 1 {
		t.Fatalf("salvos: got %d, want 1", s.salvos)
	}
}

// fonteControlada deixa o teste decidir quando cada busca responde,
// simulando respostas fora de ordem.
type fonteControlada struct {
	mu       sync.Mutex
	esperas  map[string]chan struct{}
	ocupados map[string][]agenda.PeriodoOcupado
}

func (f *fonteControlada) PeriodosOcupados(_ context.Context, data time.Time) ([]agenda.PeriodoOcupado, error) {
	k := data.Format("2006-01-02")
	f.mu.Lock()
	ch := f.esperas[k]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return f.ocupados[k], nil
}

func TestForm_RespostaObsoletaDescartada(t *testing.T) {
	// Busca da data A fica presa; usuário troca para B, que responde antes.
	// Quando A finalmente chega, a grade tem de continuar sendo a de B.
	dataA := dia(2024, 8, 12)
	dataB := dia(2024, 8, 13)
	liberaA := make(chan struct{})
	fonte := &fonteControlada{
		esperas: map[string]chan struct{}{"2024-08-12": liberaA},
		ocupados: map[string][]agenda.PeriodoOcupado{
			"2024-08-12": {ocupado(dataA, 8, 0, 18, 0)}, // A: tudo ocupado
			"2024-08-13": nil,                           // B: tudo livre
		},
	}
	f := NovoForm(fonte, agoraFixo)

	doneA := make(chan error, 1)
	go func() { doneA <- f.SelecionarData(context.Background(), dataA) }()
	// Dá tempo de A entrar na busca antes de trocar para B.
	time.Sleep(10 * time.Millisecond)
	if err := f.SelecionarData(context.Background(), dataB); err != nil {
		t.Fatal(err)
	}
	close(liberaA)
	if err := <-doneA; err != nil {
		t.Fatalf("resposta obsoleta não deveria virar erro: %v", err)
	}

	if f.Estado() != HorariosProntos {
		t.Fatalf("estado: got %v, want HorariosProntos", f.Estado())
	}
	for _, h := range f.Grade() {
		if h.Ocupado {
			t.Fatalf("slot %s ocupado: grade de A sobrescreveu a de B", h.Hora)
		}
	}
}

func TestForm_FecharDescartaResultadoEmVoo(t *testing.T) {
	data := dia(2024, 8, 12)
	libera := make(chan struct{})
	fonte := &fonteControlada{
		esperas:  map[string]chan struct{}{"2024-08-12": libera},
		ocupados: map[string][]agenda.PeriodoOcupado{"2024-08-12": nil},
	}
	f := NovoForm(fonte, agoraFixo)
	done := make(chan error, 1)
	go func() { done <- f.SelecionarData(context.Background(), data) }()
	time.Sleep(10 * time.Millisecond)
	f.Fechar()
	close(libera)
	if err := <-done; err != nil {
		t.Fatalf("resultado pós-fechamento deveria ser descartado em silêncio: %v", err)
	}
	if err := f.SelecionarData(context.Background(), data); !errors.Is(err, ErrFormFechado) {
		t.Fatalf("got %v, want ErrFormFechado", err)
	}
	if _, err := f.Submeter(context.Background(), &salvadorLento{}); !errors.Is(err, ErrFormFechado) {
		t.Fatalf("got %v, want ErrFormFechado", err)
	}
}

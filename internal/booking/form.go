// Package booking orquestra o formulário de agendamento de sessão: seleção
// de data, duração e horário sobre a grade de disponibilidade, e submissão.
// A máquina de estados é explícita para tornar irrepresentáveis combinações
// inválidas (ex.: horário escolhido sem data).
package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lucasxpaire/soulsalutte/internal/agenda"
)

// Estado do formulário.
type Estado int

const (
	// SemData: nenhum dia escolhido ainda.
	SemData Estado = iota
	// CarregandoOcupados: dia escolhido, buscando períodos ocupados.
	CarregandoOcupados
	// HorariosProntos: grade montada, nenhum horário escolhido.
	HorariosProntos
	// HorarioSelecionado: pronto para submeter.
	HorarioSelecionado
)

var (
	ErrFormFechado           = errors.New("formulário fechado")
	ErrDuracaoInvalida       = errors.New("duração de sessão inválida")
	ErrSemGrade              = errors.New("nenhuma data selecionada")
	ErrHorarioIndisponivel   = errors.New("horário indisponível")
	ErrClienteObrigatorio    = errors.New("cliente é obrigatório")
	ErrHorarioObrigatorio    = errors.New("data e horário são obrigatórios")
	ErrSalvamentoEmAndamento = errors.New("salvamento em andamento")
)

// OcupadosFonte busca os períodos ocupados de um dia (colaborador externo,
// tipicamente o client REST). O formulário nunca faz I/O por conta própria.
type OcupadosFonte interface {
	PeriodosOcupados(ctx context.Context, data time.Time) ([]agenda.PeriodoOcupado, error)
}

// Agendamento é o payload composto pelo formulário na submissão.
// Inicio e Fim são relógio de parede local, formato 2006-01-02T15:04.
type Agendamento struct {
	ClienteID   uuid.UUID
	Nome        string
	Inicio      string
	Fim         string
	Notas       string
	Notificacao bool
}

// Salvador persiste o agendamento (create ou update, decidido por quem chama).
type Salvador interface {
	Salvar(ctx context.Context, a Agendamento) error
}

// Form é uma instância do formulário de sessão. Seguro para uso concorrente;
// respostas de buscas antigas são descartadas (a última data escolhida vence).
type Form struct {
	fonte OcupadosFonte
	agora func() time.Time

	mu              sync.Mutex
	estado          Estado
	data            time.Time
	duracaoMin      int
	ocupados        []agenda.PeriodoOcupado
	grade           []agenda.Horario
	horaSelecionada string
	clienteID       uuid.UUID
	nome            string
	notas           string
	notificacao     bool
	geracao         uint64
	salvando        bool
	fechado         bool
}

// NovoForm cria um formulário vazio com duração padrão de 60 minutos.
// agora pode ser nil (usa time.Now); injetável para teste do corte do dia corrente.
func NovoForm(fonte OcupadosFonte, agora func() time.Time) *Form {
	if agora == nil {
		agora = time.Now
	}
	return &Form{
		fonte:       fonte,
		agora:       agora,
		estado:      SemData,
		duracaoMin:  60,
		nome:        "Sessão de Fisioterapia",
		notificacao: true,
	}
}

// Estado retorna o estado corrente.
func (f *Form) Estado() Estado {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.estado
}

// Grade retorna uma cópia da grade corrente (vazia fora de HorariosProntos/Selecionado).
func (f *Form) Grade() []agenda.Horario {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]agenda.Horario, len(f.grade))
	copy(out, f.grade)
	return out
}

// HoraSelecionada retorna o horário escolhido (HH:mm) ou "".
func (f *Form) HoraSelecionada() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.horaSelecionada
}

// SetCliente define o cliente dono da sessão.
func (f *Form) SetCliente(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clienteID = id
}

// SetNotas define as notas da sessão.
func (f *Form) SetNotas(notas string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notas = notas
}

// SetNotificacao liga/desliga a notificação por e-mail ao cliente.
func (f *Form) SetNotificacao(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notificacao = on
}

// SetNome define o título da sessão.
func (f *Form) SetNome(nome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nome = nome
}

// SelecionarData escolhe o dia da sessão: descarta o horário escolhido,
// entra em CarregandoOcupados e busca os períodos ocupados da data.
//
// Se a busca falhar, a grade é montada com agenda vazia (política otimista:
// falha de rede não bloqueia o agendamento) e o erro é devolvido para quem
// chama exibir. Se outra data for escolhida enquanto a busca está em voo,
// a resposta obsoleta é descartada: só a última seleção vence.
func (f *Form) SelecionarData(ctx context.Context, data time.Time) error {
	f.mu.Lock()
	if f.fechado {
		f.mu.Unlock()
		return ErrFormFechado
	}
	f.geracao++
	g := f.geracao
	f.data = data
	f.horaSelecionada = ""
	f.grade = nil
	f.ocupados = nil
	f.estado = CarregandoOcupados
	fonte := f.fonte
	f.mu.Unlock()

	ocupados, err := fonte.PeriodosOcupados(ctx, data)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fechado || g != f.geracao {
		// Resposta obsoleta: o formulário fechou ou outra data foi escolhida.
		return nil
	}
	if err != nil {
		f.ocupados = nil
		f.grade = agenda.GerarHorarios(f.data, f.duracaoMin, nil, f.agora())
		f.estado = HorariosProntos
		return err
	}
	f.ocupados = ocupados
	f.grade = agenda.GerarHorarios(f.data, f.duracaoMin, ocupados, f.agora())
	f.estado = HorariosProntos
	return nil
}

// SelecionarDuracao troca a duração e recalcula a grade em memória, sem nova
// busca. Se o horário escolhido ficou ocupado na nova duração (um slot livre
// com 60 pode conflitar esticado para 90), a seleção é limpa.
func (f *Form) SelecionarDuracao(min int) error {
	if !agenda.DuracaoPermitida(min) {
		return ErrDuracaoInvalida
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fechado {
		return ErrFormFechado
	}
	f.duracaoMin = min
	if f.estado != HorariosProntos && f.estado != HorarioSelecionado {
		return nil
	}
	f.grade = agenda.GerarHorarios(f.data, min, f.ocupados, f.agora())
	if f.horaSelecionada != "" {
		h, ok := agenda.HorarioNaGrade(f.grade, f.horaSelecionada)
		if !ok || h.Ocupado {
			f.horaSelecionada = ""
			f.estado = HorariosProntos
		}
	}
	return nil
}

// SelecionarHorario escolhe um slot livre da grade.
func (f *Form) SelecionarHorario(hora string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fechado {
		return ErrFormFechado
	}
	if f.estado != HorariosProntos && f.estado != HorarioSelecionado {
		return ErrSemGrade
	}
	h, ok := agenda.HorarioNaGrade(f.grade, hora)
	if !ok || h.Ocupado {
		return ErrHorarioIndisponivel
	}
	f.horaSelecionada = hora
	f.estado = HorarioSelecionado
	return nil
}

// Montar compõe o agendamento a partir do estado corrente:
// inicio = data + horário escolhido, fim = inicio + duração.
func (f *Form) Montar() (Agendamento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.montarLocked()
}

func (f *Form) montarLocked() (Agendamento, error) {
	if f.clienteID == uuid.Nil {
		return Agendamento{}, ErrClienteObrigatorio
	}
	if f.estado != HorarioSelecionado || f.horaSelecionada == "" {
		return Agendamento{}, ErrHorarioObrigatorio
	}
	hm, err := time.Parse("15:04", f.horaSelecionada)
	if err != nil {
		return Agendamento{}, ErrHorarioObrigatorio
	}
	inicio := time.Date(f.data.Year(), f.data.Month(), f.data.Day(), hm.Hour(), hm.Minute(), 0, 0, f.data.Location())
	fim := inicio.Add(time.Duration(f.duracaoMin) * time.Minute)
	return Agendamento{
		ClienteID:   f.clienteID,
		Nome:        f.nome,
		Inicio:      inicio.Format(agenda.LayoutDataHora),
		Fim:         fim.Format(agenda.LayoutDataHora),
		Notas:       f.notas,
		Notificacao: f.notificacao,
	}, nil
}

// Submeter valida, compõe e persiste o agendamento. No máximo uma submissão
// em voo por formulário; chamadas durante um salvamento pendente falham com
// ErrSalvamentoEmAndamento em vez de duplicar a sessão.
func (f *Form) Submeter(ctx context.Context, s Salvador) (Agendamento, error) {
	f.mu.Lock()
	if f.fechado {
		f.mu.Unlock()
		return Agendamento{}, ErrFormFechado
	}
	if f.salvando {
		f.mu.Unlock()
		return Agendamento{}, ErrSalvamentoEmAndamento
	}
	a, err := f.montarLocked()
	if err != nil {
		f.mu.Unlock()
		return Agendamento{}, err
	}
	f.salvando = true
	f.mu.Unlock()

	err = s.Salvar(ctx, a)

	f.mu.Lock()
	f.salvando = false
	f.mu.Unlock()
	if err != nil {
		return Agendamento{}, err
	}
	return a, nil
}

// Fechar invalida o formulário: buscas e salvamentos em voo são descartados
// ao completar, e novas operações falham com ErrFormFechado.
func (f *Form) Fechar() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fechado = true
	f.geracao++
}

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Grupos estruturados da avaliação fisioterapêutica. Persistidos como JSONB;
// as tags seguem o contrato da API (lowerCamel).

type ApresentacaoPaciente struct {
	Deambulando         bool `json:"deambulando"`
	DeambulandoComApoio bool `json:"deambulandoComApoio"`
	CadeiraDeRodas      bool `json:"cadeiraDeRodas"`
	Internado           bool `json:"internado"`
	Orientado           bool `json:"orientado"`
}

type ExamesComplementares struct {
	Possui    bool   `json:"possui"`
	Descricao string `json:"descricao"`
}

type UsoMedicamentos struct {
	Usa       bool   `json:"usa"`
	Descricao string `json:"descricao"`
}

type CirurgiasRealizadas struct {
	Realizou  bool   `json:"realizou"`
	Descricao string `json:"descricao"`
}

type InspecaoPalpacao struct {
	Normal                 bool   `json:"normal"`
	Edema                  bool   `json:"edema"`
	CicatrizacaoIncompleta bool   `json:"cicatrizacaoIncompleta"`
	Eritemas               bool   `json:"eritemas"`
	Outros                 bool   `json:"outros"`
	OutrosDescricao        string `json:"outrosDescricao"`
}

// Avaliacao é a avaliação fisioterapêutica de um cliente, com as notas de
// evolução acumuladas em Evolucao.
type Avaliacao struct {
	ID                          uuid.UUID
	ClienteID                   uuid.UUID
	DataAvaliacao               time.Time
	DiagnosticoClinico          string
	DiagnosticoFisioterapeutico string
	HistoriaClinica             string
	QueixaPrincipal             string
	HabitosVida                 string
	HMA                         string
	HMP                         string
	AntecedentesPessoais        string
	AntecedentesFamiliares      string
	TratamentosRealizados       string
	ApresentacaoPaciente        ApresentacaoPaciente
	ExamesComplementares        ExamesComplementares
	UsoMedicamentos             UsoMedicamentos
	CirurgiasRealizadas         CirurgiasRealizadas
	InspecaoPalpacao            InspecaoPalpacao
	Semiologia                  string
	TestesEspecificos           string
	AvaliacaoDorEVA             int
	ObjetivosTratamento         string
	RecursosTerapeuticos        string
	PlanoTratamento             string
	Evolucao                    string
}

const avaliacaoCols = `id, cliente_id, data_avaliacao, diagnostico_clinico, diagnostico_fisioterapeutico,
	historia_clinica, queixa_principal, habitos_vida, hma, hmp, antecedentes_pessoais, antecedentes_familiares,
	tratamentos_realizados, apresentacao_paciente, exames_complementares, uso_medicamentos, cirurgias_realizadas,
	inspecao_palpacao, semiologia, testes_especificos, avaliacao_dor_eva, objetivos_tratamento,
	recursos_terapeuticos, plano_tratamento, evolucao`

func scanAvaliacao(row pgx.Row) (*Avaliacao, error) {
	var a Avaliacao
	var apresentacao, exames, medicamentos, cirurgias, inspecao []byte
	err := row.Scan(&a.ID, &a.ClienteID, &a.DataAvaliacao, &a.DiagnosticoClinico, &a.DiagnosticoFisioterapeutico,
		&a.HistoriaClinica, &a.QueixaPrincipal, &a.HabitosVida, &a.HMA, &a.HMP, &a.AntecedentesPessoais,
		&a.AntecedentesFamiliares, &a.TratamentosRealizados, &apresentacao, &exames, &medicamentos, &cirurgias,
		&inspecao, &a.Semiologia, &a.TestesEspecificos, &a.AvaliacaoDorEVA, &a.ObjetivosTratamento,
		&a.RecursosTerapeuticos, &a.PlanoTratamento, &a.Evolucao)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(apresentacao, &a.ApresentacaoPaciente)
	_ = json.Unmarshal(exames, &a.ExamesComplementares)
	_ = json.Unmarshal(medicamentos, &a.UsoMedicamentos)
	_ = json.Unmarshal(cirurgias, &a.CirurgiasRealizadas)
	_ = json.Unmarshal(inspecao, &a.InspecaoPalpacao)
	return &a, nil
}

func marshalGrupos(a *Avaliacao) (apresentacao, exames, medicamentos, cirurgias, inspecao []byte) {
	apresentacao, _ = json.Marshal(a.ApresentacaoPaciente)
	exames, _ = json.Marshal(a.ExamesComplementares)
	medicamentos, _ = json.Marshal(a.UsoMedicamentos)
	cirurgias, _ = json.Marshal(a.CirurgiasRealizadas)
	inspecao, _ = json.Marshal(a.InspecaoPalpacao)
	return
}

func AvaliacaoByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Avaliacao, error) {
	return scanAvaliacao(pool.QueryRow(ctx, `SELECT `+avaliacaoCols+` FROM avaliacoes WHERE id = $1`, id))
}

func ListAvaliacoesByCliente(ctx context.Context, pool *pgxpool.Pool, clienteID uuid.UUID) ([]Avaliacao, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+avaliacaoCols+` FROM avaliacoes WHERE cliente_id = $1 ORDER BY data_avaliacao DESC
	`, clienteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Avaliacao
	for rows.Next() {
		a, err := scanAvaliacao(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func CreateAvaliacao(ctx context.Context, pool *pgxpool.Pool, a *Avaliacao) (uuid.UUID, error) {
	apresentacao, exames, medicamentos, cirurgias, inspecao := marshalGrupos(a)
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO avaliacoes (cliente_id, data_avaliacao, diagnostico_clinico, diagnostico_fisioterapeutico,
			historia_clinica, queixa_principal, habitos_vida, hma, hmp, antecedentes_pessoais,
			antecedentes_familiares, tratamentos_realizados, apresentacao_paciente, exames_complementares,
			uso_medicamentos, cirurgias_realizadas, inspecao_palpacao, semiologia, testes_especificos,
			avaliacao_dor_eva, objetivos_tratamento, recursos_terapeuticos, plano_tratamento, evolucao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`, a.ClienteID, a.DataAvaliacao, a.DiagnosticoClinico, a.DiagnosticoFisioterapeutico,
		a.HistoriaClinica, a.QueixaPrincipal, a.HabitosVida, a.HMA, a.HMP, a.AntecedentesPessoais,
		a.AntecedentesFamiliares, a.TratamentosRealizados, apresentacao, exames,
		medicamentos, cirurgias, inspecao, a.Semiologia, a.TestesEspecificos,
		a.AvaliacaoDorEVA, a.ObjetivosTratamento, a.RecursosTerapeuticos, a.PlanoTratamento, a.Evolucao).Scan(&id)
	return id, err
}

func UpdateAvaliacao(ctx context.Context, pool *pgxpool.Pool, a *Avaliacao) error {
	apresentacao, exames, medicamentos, cirurgias, inspecao := marshalGrupos(a)
	tag, err := pool.Exec(ctx, `
		UPDATE avaliacoes SET data_avaliacao = $1, diagnostico_clinico = $2, diagnostico_fisioterapeutico = $3,
			historia_clinica = $4, queixa_principal = $5, habitos_vida = $6, hma = $7, hmp = $8,
			antecedentes_pessoais = $9, antecedentes_familiares = $10, tratamentos_realizados = $11,
			apresentacao_paciente = $12, exames_complementares = $13, uso_medicamentos = $14,
			cirurgias_realizadas = $15, inspecao_palpacao = $16, semiologia = $17, testes_especificos = $18,
			avaliacao_dor_eva = $19, objetivos_tratamento = $20, recursos_terapeuticos = $21,
			plano_tratamento = $22, evolucao = $23, updated_at = now()
		WHERE id = $24
	`, a.DataAvaliacao, a.DiagnosticoClinico, a.DiagnosticoFisioterapeutico,
		a.HistoriaClinica, a.QueixaPrincipal, a.HabitosVida, a.HMA, a.HMP,
		a.AntecedentesPessoais, a.AntecedentesFamiliares, a.TratamentosRealizados,
		apresentacao, exames, medicamentos, cirurgias, inspecao, a.Semiologia, a.TestesEspecificos,
		a.AvaliacaoDorEVA, a.ObjetivosTratamento, a.RecursosTerapeuticos, a.PlanoTratamento, a.Evolucao, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteAvaliacao(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM avaliacoes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendEvolucao acrescenta uma nota de evolução ao fim do campo evolucao
// (separada por linha em branco) e devolve a avaliação atualizada.
func AppendEvolucao(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, nota string) (*Avaliacao, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE avaliacoes
		SET evolucao = CASE WHEN evolucao = '' THEN $1 ELSE evolucao || E'\n\n' || $1 END,
		    updated_at = now()
		WHERE id = $2
	`, nota, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return AvaliacaoByID(ctx, pool, id)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lucasxpaire/soulsalutte/internal/agenda"
	"github.com/lucasxpaire/soulsalutte/internal/pdf"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

// AvaliacaoRequest é o corpo de criação/atualização de avaliação.
// dataAvaliacao é YYYY-MM-DD; os grupos estruturados seguem o contrato
// do front-end (lowerCamel).
type AvaliacaoRequest struct {
	DataAvaliacao               string                    `json:"dataAvaliacao"`
	DiagnosticoClinico          string                    `json:"diagnosticoClinico"`
	DiagnosticoFisioterapeutico string                    `json:"diagnosticoFisioterapeutico"`
	HistoriaClinica             string                    `json:"historiaClinica"`
	QueixaPrincipal             string                    `json:"queixaPrincipal"`
	HabitosVida                 string                    `json:"habitosVida"`
	HMA                         string                    `json:"hma"`
	HMP                         string                    `json:"hmp"`
	AntecedentesPessoais        string                    `json:"antecedentesPessoais"`
	AntecedentesFamiliares      string                    `json:"antecedentesFamiliares"`
	TratamentosRealizados       string                    `json:"tratamentosRealizados"`
	ApresentacaoPaciente        repo.ApresentacaoPaciente `json:"apresentacaoPaciente"`
	ExamesComplementares        repo.ExamesComplementares `json:"examesComplementares"`
	UsoMedicamentos             repo.UsoMedicamentos      `json:"usoMedicamentos"`
	CirurgiasRealizadas         repo.CirurgiasRealizadas  `json:"cirurgiasRealizadas"`
	InspecaoPalpacao            repo.InspecaoPalpacao     `json:"inspecaoPalpacao"`
	Semiologia                  string                    `json:"semiologia"`
	TestesEspecificos           string                    `json:"testesEspecificos"`
	AvaliacaoDorEVA             int                       `json:"avaliacaoDorEva"`
	ObjetivosTratamento         string                    `json:"objetivosTratamento"`
	RecursosTerapeuticos        string                    `json:"recursosTerapeuticos"`
	PlanoTratamento             string                    `json:"planoTratamento"`
	Evolucao                    string                    `json:"evolucao"`
}

type AvaliacaoResponse struct {
	ID        string `json:"id"`
	ClienteID string `json:"clienteId"`
	AvaliacaoRequest
}

func avaliacaoToResponse(a *repo.Avaliacao) AvaliacaoResponse {
	return AvaliacaoResponse{
		ID:        a.ID.String(),
		ClienteID: a.ClienteID.String(),
		AvaliacaoRequest: AvaliacaoRequest{
			DataAvaliacao:               a.DataAvaliacao.Format(agenda.LayoutData),
			DiagnosticoClinico:          a.DiagnosticoClinico,
			DiagnosticoFisioterapeutico: a.DiagnosticoFisioterapeutico,
			HistoriaClinica:             a.HistoriaClinica,
			QueixaPrincipal:             a.QueixaPrincipal,
			HabitosVida:                 a.HabitosVida,
			HMA:                         a.HMA,
			HMP:                         a.HMP,
			AntecedentesPessoais:        a.AntecedentesPessoais,
			AntecedentesFamiliares:      a.AntecedentesFamiliares,
			TratamentosRealizados:       a.TratamentosRealizados,
			ApresentacaoPaciente:        a.ApresentacaoPaciente,
			ExamesComplementares:        a.ExamesComplementares,
			UsoMedicamentos:             a.UsoMedicamentos,
			CirurgiasRealizadas:         a.CirurgiasRealizadas,
			InspecaoPalpacao:            a.InspecaoPalpacao,
			Semiologia:                  a.Semiologia,
			TestesEspecificos:           a.TestesEspecificos,
			AvaliacaoDorEVA:             a.AvaliacaoDorEVA,
			ObjetivosTratamento:         a.ObjetivosTratamento,
			RecursosTerapeuticos:        a.RecursosTerapeuticos,
			PlanoTratamento:             a.PlanoTratamento,
			Evolucao:                    a.Evolucao,
		},
	}
}

func (h *Handler) avaliacaoFromRequest(req *AvaliacaoRequest, dst *repo.Avaliacao) error {
	data := h.now()
	if s := strings.TrimSpace(req.DataAvaliacao); s != "" {
		t, err := time.ParseInLocation(agenda.LayoutData, s, h.loc())
		if err != nil {
			return errors.New("dataAvaliacao deve ser YYYY-MM-DD")
		}
		data = t
	}
	if err := ValidateEVA(req.AvaliacaoDorEVA); err != nil {
		return errors.New("avaliacaoDorEva deve estar entre 0 e 10")
	}
	dst.DataAvaliacao = data
	dst.DiagnosticoClinico = req.DiagnosticoClinico
	dst.DiagnosticoFisioterapeutico = req.DiagnosticoFisioterapeutico
	dst.HistoriaClinica = req.HistoriaClinica
	dst.QueixaPrincipal = req.QueixaPrincipal
	dst.HabitosVida = req.HabitosVida
	dst.HMA = req.HMA
	dst.HMP = req.HMP
	dst.AntecedentesPessoais = req.AntecedentesPessoais
	dst.AntecedentesFamiliares = req.AntecedentesFamiliares
	dst.TratamentosRealizados = req.TratamentosRealizados
	dst.ApresentacaoPaciente = req.ApresentacaoPaciente
	dst.ExamesComplementares = req.ExamesComplementares
	dst.UsoMedicamentos = req.UsoMedicamentos
	dst.CirurgiasRealizadas = req.CirurgiasRealizadas
	dst.InspecaoPalpacao = req.InspecaoPalpacao
	dst.Semiologia = req.Semiologia
	dst.TestesEspecificos = req.TestesEspecificos
	dst.AvaliacaoDorEVA = req.AvaliacaoDorEVA
	dst.ObjetivosTratamento = req.ObjetivosTratamento
	dst.RecursosTerapeuticos = req.RecursosTerapeuticos
	dst.PlanoTratamento = req.PlanoTratamento
	dst.Evolucao = req.Evolucao
	return nil
}

func (h *Handler) ListAvaliacoesByCliente(w http.ResponseWriter, r *http.Request) {
	clienteID, err := uuid.Parse(mux.Vars(r)["clienteId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	list, err := repo.ListAvaliacoesByCliente(r.Context(), h.Pool, clienteID)
	if err != nil {
		log.Printf("[avaliacoes] list cliente %s: %v", clienteID, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]AvaliacaoResponse, len(list))
	for i := range list {
		out[i] = avaliacaoToResponse(&list[i])
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) CreateAvaliacao(w http.ResponseWriter, r *http.Request) {
	clienteID, err := uuid.Parse(mux.Vars(r)["clienteId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	if _, err := repo.ClienteByID(r.Context(), h.Pool, clienteID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, `{"error":"cliente não encontrado"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	var req AvaliacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	var a repo.Avaliacao
	if err := h.avaliacaoFromRequest(&req, &a); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	a.ClienteID = clienteID
	id, err := repo.CreateAvaliacao(r.Context(), h.Pool, &a)
	if err != nil {
		log.Printf("[avaliacoes] create: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	a.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(avaliacaoToResponse(&a))
}

func (h *Handler) GetAvaliacao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["avaliacaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	a, err := repo.AvaliacaoByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"avaliação não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(avaliacaoToResponse(a))
}

func (h *Handler) UpdateAvaliacao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["avaliacaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	cur, err := repo.AvaliacaoByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"avaliação não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	var req AvaliacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if err := h.avaliacaoFromRequest(&req, cur); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := repo.UpdateAvaliacao(r.Context(), h.Pool, cur); err != nil {
		log.Printf("[avaliacoes] update %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(avaliacaoToResponse(cur))
}

func (h *Handler) DeleteAvaliacao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["avaliacaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	if err := repo.DeleteAvaliacao(r.Context(), h.Pool, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, `{"error":"avaliação não encontrada"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendEvolucao acrescenta uma nota de evolução e devolve a avaliação
// atualizada, para o front-end substituir o registro em tela.
func (h *Handler) AppendEvolucao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["avaliacaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	var req struct {
		Nota string `json:"nota"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	nota := strings.TrimSpace(req.Nota)
	if nota == "" {
		http.Error(w, `{"error":"nota é obrigatória"}`, http.StatusBadRequest)
		return
	}
	// Carimbo de data na frente da nota, como o front-end exibe.
	nota = h.now().Format("02/01/2006") + " - " + nota
	a, err := repo.AppendEvolucao(r.Context(), h.Pool, id, nota)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"avaliação não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[avaliacoes] evolucao %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(avaliacaoToResponse(a))
}

// avaliacaoPDF carrega avaliação e cliente e monta o PDF.
func (h *Handler) avaliacaoPDF(ctx context.Context, id uuid.UUID) ([]byte, *repo.Avaliacao, *repo.Cliente, error) {
	a, err := repo.AvaliacaoByID(ctx, h.Pool, id)
	if err != nil {
		return nil, nil, nil, err
	}
	cliente, err := repo.ClienteByID(ctx, h.Pool, a.ClienteID)
	if err != nil {
		return nil, nil, nil, err
	}
	link := ""
	if h.Cfg != nil && h.Cfg.AppPublicURL != "" {
		link = h.Cfg.AppPublicURL + "/clientes/" + cliente.ID.String() + "/avaliacoes/" + a.ID.String()
	}
	buf, err := pdf.BuildAvaliacaoPDF(pdf.AvaliacaoDoc{
		Avaliacao:     a,
		ClienteNome:   cliente.Nome,
		LinkAvaliacao: link,
		GeradoEm:      h.now().Format("02/01/2006 15:04"),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return buf, a, cliente, nil
}

// GetAvaliacaoPDF gera e devolve o PDF da avaliação.
func (h *Handler) GetAvaliacaoPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["avaliacaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	buf, a, _, err := h.avaliacaoPDF(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"avaliação não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[avaliacoes] pdf %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="avaliacao-`+a.ID.String()+`.pdf"`)
	_, _ = w.Write(buf)
}

// EmailAvaliacaoPDF gera o PDF da avaliação e envia por e-mail ao cliente,
// em anexo. Envio síncrono: a resposta diz se o e-mail saiu.
func (h *Handler) EmailAvaliacaoPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["avaliacaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	if h.sendAvaliacaoPDF == nil {
		http.Error(w, `{"error":"envio de e-mail não configurado"}`, http.StatusServiceUnavailable)
		return
	}
	buf, a, cliente, err := h.avaliacaoPDF(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"avaliação não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[avaliacoes] pdf %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(cliente.Email) == "" {
		http.Error(w, `{"error":"cliente sem e-mail cadastrado"}`, http.StatusBadRequest)
		return
	}
	arquivo := "avaliacao-" + a.ID.String() + ".pdf"
	if err := h.sendAvaliacaoPDF(cliente.Email, cliente.Nome, arquivo, buf); err != nil {
		log.Printf("[avaliacoes] e-mail do pdf %s para %s: %v", id, cliente.Email, err)
		http.Error(w, `{"error":"falha ao enviar e-mail"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Avaliação enviada para " + cliente.Email})
}

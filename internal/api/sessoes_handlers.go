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
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

// SessaoRequest é o corpo de criação/atualização de sessão. inicio e fim são
// relógio de parede local (2006-01-02T15:04), sem offset de fuso. Na criação
// o clienteId vem da rota; no corpo ele só é considerado em atualizações.
type SessaoRequest struct {
	ClienteID   string `json:"clienteId"`
	Nome        string `json:"nome"`
	Inicio      string `json:"inicio"`
	Fim         string `json:"fim"`
	Status      string `json:"status"`
	Notas       string `json:"notas"`
	Notificacao *bool  `json:"notificacao"`
}

type SessaoResponse struct {
	ID          string `json:"id"`
	ClienteID   string `json:"clienteId"`
	Nome        string `json:"nome"`
	Inicio      string `json:"inicio"`
	Fim         string `json:"fim"`
	Status      string `json:"status"`
	Notas       string `json:"notas"`
	Notificacao bool   `json:"notificacao"`
}

func sessaoToResponse(s *repo.Sessao) SessaoResponse {
	return SessaoResponse{
		ID:          s.ID.String(),
		ClienteID:   s.ClienteID.String(),
		Nome:        s.Nome,
		Inicio:      s.Inicio.Format(agenda.LayoutDataHora),
		Fim:         s.Fim.Format(agenda.LayoutDataHora),
		Status:      s.Status,
		Notas:       s.Notas,
		Notificacao: s.Notificacao,
	}
}

func (h *Handler) sessaoFromRequest(req *SessaoRequest, dst *repo.Sessao) error {
	cid, err := uuid.Parse(strings.TrimSpace(req.ClienteID))
	if err != nil {
		return errors.New("clienteId inválido")
	}
	inicio, err := ParseDataHora(req.Inicio, h.loc())
	if err != nil {
		return errors.New("inicio deve ser YYYY-MM-DDTHH:mm")
	}
	fim, err := ParseDataHora(req.Fim, h.loc())
	if err != nil {
		return errors.New("fim deve ser YYYY-MM-DDTHH:mm")
	}
	if err := ValidatePeriodo(inicio, fim); err != nil {
		return errors.New("inicio deve ser antes de fim")
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = repo.StatusAgendada
	}
	if err := ValidateStatus(status); err != nil {
		return errors.New("status inválido")
	}
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		nome = "Sessão de Fisioterapia"
	}
	dst.ClienteID = cid
	dst.Nome = nome
	dst.Inicio = inicio
	dst.Fim = fim
	dst.Status = status
	dst.Notas = strings.TrimSpace(req.Notas)
	dst.Notificacao = true
	if req.Notificacao != nil {
		dst.Notificacao = *req.Notificacao
	}
	return nil
}

// invalidateOcupados derruba o cache de ocupados das datas afetadas.
func (h *Handler) invalidateOcupados(dias ...time.Time) {
	if h.Cache == nil {
		return
	}
	for _, d := range dias {
		h.Cache.Delete("ocupados:" + d.Format(agenda.LayoutData))
	}
}

// ListSessoes lista sessões. Filtros opcionais: ?clienteId=, ?from= e ?to=
// (YYYY-MM-DD, intervalo fechado de datas).
func (h *Handler) ListSessoes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		list []repo.Sessao
		err  error
	)
	switch {
	case q.Get("clienteId") != "":
		cid, perr := uuid.Parse(q.Get("clienteId"))
		if perr != nil {
			http.Error(w, `{"error":"clienteId inválido"}`, http.StatusBadRequest)
			return
		}
		list, err = repo.ListSessoesByCliente(r.Context(), h.Pool, cid)
	case q.Get("from") != "" || q.Get("to") != "":
		from, e1 := time.ParseInLocation(agenda.LayoutData, q.Get("from"), h.loc())
		to, e2 := time.ParseInLocation(agenda.LayoutData, q.Get("to"), h.loc())
		if e1 != nil || e2 != nil {
			http.Error(w, `{"error":"from e to devem ser YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		if to.Before(from) {
			http.Error(w, `{"error":"to deve ser >= from"}`, http.StatusBadRequest)
			return
		}
		// Intervalo fechado de datas: inclui o dia "to" inteiro.
		list, err = repo.ListSessoesByPeriodo(r.Context(), h.Pool, from, to.AddDate(0, 0, 1))
	default:
		list, err = repo.ListSessoes(r.Context(), h.Pool)
	}
	if err != nil {
		log.Printf("[sessoes] list: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	limit, offset := ParseLimitOffset(r)
	lo, hi := pageBounds(len(list), limit, offset)
	list = list[lo:hi]
	out := make([]SessaoResponse, len(list))
	for i := range list {
		out[i] = sessaoToResponse(&list[i])
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) GetSessao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["sessaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	s, err := repo.SessaoByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"sessão não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessaoToResponse(s))
}

// CreateSessao cria uma sessão para o cliente da rota
// (POST /sessoes/cliente/{clienteId}).
func (h *Handler) CreateSessao(w http.ResponseWriter, r *http.Request) {
	var req SessaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.ClienteID = mux.Vars(r)["clienteId"]
	var s repo.Sessao
	if err := h.sessaoFromRequest(&req, &s); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	cliente, err := repo.ClienteByID(r.Context(), h.Pool, s.ClienteID)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"cliente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	id, err := repo.CreateSessao(r.Context(), h.Pool, &s)
	if err != nil {
		log.Printf("[sessoes] create: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	s.ID = id
	h.invalidateOcupados(s.Inicio, s.Fim)
	h.afterSessaoCreated(&s, cliente)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sessaoToResponse(&s))
}

// afterSessaoCreated dispara e-mail de confirmação e espelha no calendário.
// Ambos best-effort e fora do caminho da resposta.
func (h *Handler) afterSessaoCreated(s *repo.Sessao, cliente *repo.Cliente) {
	if h.sendConfirmacaoEmail != nil && s.Notificacao && cliente.Email != "" {
		sessao := *s
		to, nome := cliente.Email, cliente.Nome
		go func() {
			if err := h.sendConfirmacaoEmail(to, nome, &sessao); err != nil {
				log.Printf("[sessoes] e-mail de confirmação para %s: %v", to, err)
			}
		}()
	}
	if h.calendario != nil {
		sessao := *s
		nome := cliente.Nome
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			eventID, err := h.calendario.CriarEvento(ctx, &sessao, nome)
			if err != nil {
				log.Printf("[gcal] criar evento da sessão %s: %v", sessao.ID, err)
				return
			}
			if err := repo.SetSessaoGoogleEventID(ctx, h.Pool, sessao.ID, &eventID); err != nil {
				log.Printf("[gcal] gravar event id da sessão %s: %v", sessao.ID, err)
			}
		}()
	}
}

// UpdateSessao atualiza a sessão inteira; cobre reagendar (novo inicio/fim),
// concluir e cancelar (status).
func (h *Handler) UpdateSessao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["sessaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	cur, err := repo.SessaoByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"sessão não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	antigoInicio, antigoFim := cur.Inicio, cur.Fim
	var req SessaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ClienteID) == "" {
		req.ClienteID = cur.ClienteID.String()
	}
	if err := h.sessaoFromRequest(&req, cur); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	// O corpo pode trocar o cliente dono; o novo dono precisa existir.
	cliente, err := repo.ClienteByID(r.Context(), h.Pool, cur.ClienteID)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"cliente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := repo.UpdateSessao(r.Context(), h.Pool, cur); err != nil {
		log.Printf("[sessoes] update %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidateOcupados(antigoInicio, antigoFim, cur.Inicio, cur.Fim)
	h.afterSessaoUpdated(cur, cliente)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessaoToResponse(cur))
}

// afterSessaoUpdated reenvia a confirmação com o novo horário e espelha a
// mudança no calendário. Ambos best-effort e fora do caminho da resposta.
// Sessões concluídas ou canceladas não geram novo e-mail.
func (h *Handler) afterSessaoUpdated(s *repo.Sessao, cliente *repo.Cliente) {
	if h.sendConfirmacaoEmail != nil && s.Notificacao && s.Status == repo.StatusAgendada && cliente.Email != "" {
		sessao := *s
		to, nome := cliente.Email, cliente.Nome
		go func() {
			if err := h.sendConfirmacaoEmail(to, nome, &sessao); err != nil {
				log.Printf("[sessoes] e-mail de confirmação para %s: %v", to, err)
			}
		}()
	}
	if h.calendario != nil && s.GoogleEventID != nil {
		sessao := *s
		eventID := *s.GoogleEventID
		nome := cliente.Nome
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.calendario.AtualizarEvento(ctx, eventID, &sessao, nome); err != nil {
				log.Printf("[gcal] atualizar evento da sessão %s: %v", sessao.ID, err)
			}
		}()
	}
}

func (h *Handler) DeleteSessao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["sessaoId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	cur, err := repo.SessaoByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"sessão não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := repo.DeleteSessao(r.Context(), h.Pool, id); err != nil {
		log.Printf("[sessoes] delete %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidateOcupados(cur.Inicio, cur.Fim)
	if h.calendario != nil && cur.GoogleEventID != nil {
		eventID := *cur.GoogleEventID
		sessaoID := cur.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.calendario.RemoverEvento(ctx, eventID); err != nil {
				log.Printf("[gcal] remover evento da sessão %s: %v", sessaoID, err)
			}
		}()
	}
	w.WriteHeader(http.StatusNoContent)
}

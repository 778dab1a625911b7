package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lucasxpaire/soulsalutte/internal/agenda"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

// OcupadoResponse segue o formato freebusy do Google Calendar, que o
// front-end já consome: {"start":{"dateTime":...},"end":{"dateTime":...}}.
type OcupadoResponse struct {
	Start struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
}

func ocupadoToResponse(p agenda.PeriodoOcupado) OcupadoResponse {
	var o OcupadoResponse
	o.Start.DateTime = p.Inicio.Format(agenda.LayoutDataHora)
	o.End.DateTime = p.Fim.Format(agenda.LayoutDataHora)
	return o
}

// GetOcupados lista os períodos ocupados de um dia (?data=YYYY-MM-DD).
// Sessões canceladas não ocupam agenda. Cacheado por data com TTL curto.
func (h *Handler) GetOcupados(w http.ResponseWriter, r *http.Request) {
	dataStr := r.URL.Query().Get("data")
	data, err := time.ParseInLocation(agenda.LayoutData, dataStr, h.loc())
	if err != nil {
		http.Error(w, `{"error":"data deve ser YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	cacheKey := "ocupados:" + dataStr
	if h.Cache != nil {
		if cached := h.Cache.Get(cacheKey); cached != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(cached)
			return
		}
	}
	periodos, err := repo.PeriodosOcupados(r.Context(), h.Pool, data)
	if err != nil {
		log.Printf("[agenda] ocupados %s: %v", dataStr, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]OcupadoResponse, len(periodos))
	for i, p := range periodos {
		out[i] = ocupadoToResponse(p)
	}
	buf, _ := json.Marshal(out)
	if h.Cache != nil {
		h.Cache.Set(cacheKey, buf)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf)
}

// GetHorarios monta a grade de horários de um dia para uma duração
// (?data=YYYY-MM-DD&duracao=60|90|120). Slots passados do dia corrente e
// slots em conflito com a agenda vêm marcados como ocupados.
func (h *Handler) GetHorarios(w http.ResponseWriter, r *http.Request) {
	dataStr := r.URL.Query().Get("data")
	data, err := time.ParseInLocation(agenda.LayoutData, dataStr, h.loc())
	if err != nil {
		http.Error(w, `{"error":"data deve ser YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	duracao := 60
	if s := r.URL.Query().Get("duracao"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || !agenda.DuracaoPermitida(n) {
			http.Error(w, `{"error":"duracao deve ser 60, 90 ou 120"}`, http.StatusBadRequest)
			return
		}
		duracao = n
	}
	periodos, err := repo.PeriodosOcupados(r.Context(), h.Pool, data)
	if err != nil {
		log.Printf("[agenda] horarios %s: %v", dataStr, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	grade := agenda.GerarHorarios(data, duracao, periodos, h.now())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data":     dataStr,
		"duracao":  duracao,
		"horarios": grade,
	})
}

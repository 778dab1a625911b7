package api

import (
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

// ClienteRequest é o corpo de criação/atualização de cliente.
// dataNascimento é YYYY-MM-DD; os demais campos de texto são livres.
type ClienteRequest struct {
	Nome                string `json:"nome"`
	Email               string `json:"email"`
	Telefone            string `json:"telefone"`
	DataNascimento      string `json:"dataNascimento"`
	Sexo                string `json:"sexo"`
	Cidade              string `json:"cidade"`
	Bairro              string `json:"bairro"`
	Profissao           string `json:"profissao"`
	EnderecoResidencial string `json:"enderecoResidencial"`
	EnderecoComercial   string `json:"enderecoComercial"`
	Naturalidade        string `json:"naturalidade"`
	EstadoCivil         string `json:"estadoCivil"`
}

type ClienteResponse struct {
	ID                  string  `json:"id"`
	Nome                string  `json:"nome"`
	Email               string  `json:"email"`
	Telefone            string  `json:"telefone"`
	DataNascimento      *string `json:"dataNascimento"`
	DataCadastro        string  `json:"dataCadastro"`
	Sexo                string  `json:"sexo"`
	Cidade              string  `json:"cidade"`
	Bairro              string  `json:"bairro"`
	Profissao           string  `json:"profissao"`
	EnderecoResidencial string  `json:"enderecoResidencial"`
	EnderecoComercial   string  `json:"enderecoComercial"`
	Naturalidade        string  `json:"naturalidade"`
	EstadoCivil         string  `json:"estadoCivil"`
}

func clienteToResponse(c *repo.Cliente) ClienteResponse {
	var nasc *string
	if c.DataNascimento != nil {
		s := c.DataNascimento.Format(agenda.LayoutData)
		nasc = &s
	}
	return ClienteResponse{
		ID:                  c.ID.String(),
		Nome:                c.Nome,
		Email:               c.Email,
		Telefone:            c.Telefone,
		DataNascimento:      nasc,
		DataCadastro:        c.DataCadastro.Format(time.RFC3339),
		Sexo:                c.Sexo,
		Cidade:              c.Cidade,
		Bairro:              c.Bairro,
		Profissao:           c.Profissao,
		EnderecoResidencial: c.EnderecoResidencial,
		EnderecoComercial:   c.EnderecoComercial,
		Naturalidade:        c.Naturalidade,
		EstadoCivil:         c.EstadoCivil,
	}
}

func (h *Handler) clienteFromRequest(req *ClienteRequest, dst *repo.Cliente) error {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return errors.New("nome é obrigatório")
	}
	if strings.TrimSpace(req.Email) != "" {
		if err := ValidateEmail(req.Email); err != nil {
			return err
		}
	}
	dst.Nome = nome
	dst.Email = strings.TrimSpace(strings.ToLower(req.Email))
	dst.Telefone = strings.TrimSpace(req.Telefone)
	dst.DataNascimento = nil
	if s := strings.TrimSpace(req.DataNascimento); s != "" {
		t, err := time.ParseInLocation(agenda.LayoutData, s, h.loc())
		if err != nil {
			return errors.New("dataNascimento deve ser YYYY-MM-DD")
		}
		dst.DataNascimento = &t
	}
	dst.Sexo = strings.TrimSpace(req.Sexo)
	dst.Cidade = strings.TrimSpace(req.Cidade)
	dst.Bairro = strings.TrimSpace(req.Bairro)
	dst.Profissao = strings.TrimSpace(req.Profissao)
	dst.EnderecoResidencial = strings.TrimSpace(req.EnderecoResidencial)
	dst.EnderecoComercial = strings.TrimSpace(req.EnderecoComercial)
	dst.Naturalidade = strings.TrimSpace(req.Naturalidade)
	dst.EstadoCivil = strings.TrimSpace(req.EstadoCivil)
	return nil
}

// ListClientes lista todos os clientes, opcionalmente filtrados por ?nome=
// (busca parcial, caso-insensível). ?limit= e ?offset= paginam; sem limit a
// lista vem inteira.
func (h *Handler) ListClientes(w http.ResponseWriter, r *http.Request) {
	nome := strings.TrimSpace(r.URL.Query().Get("nome"))
	list, err := repo.ListClientes(r.Context(), h.Pool, nome)
	if err != nil {
		log.Printf("[clientes] list: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	limit, offset := ParseLimitOffset(r)
	lo, hi := pageBounds(len(list), limit, offset)
	list = list[lo:hi]
	out := make([]ClienteResponse, len(list))
	for i := range list {
		out[i] = clienteToResponse(&list[i])
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) GetCliente(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["clienteId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	c, err := repo.ClienteByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"cliente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[clientes] get %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(clienteToResponse(c))
}

func (h *Handler) CreateCliente(w http.ResponseWriter, r *http.Request) {
	var req ClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	var c repo.Cliente
	if err := h.clienteFromRequest(&req, &c); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	c.DataCadastro = h.now()
	id, err := repo.CreateCliente(r.Context(), h.Pool, &c)
	if err != nil {
		log.Printf("[clientes] create: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	c.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(clienteToResponse(&c))
}

func (h *Handler) UpdateCliente(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["clienteId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	cur, err := repo.ClienteByID(r.Context(), h.Pool, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"cliente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	var req ClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if err := h.clienteFromRequest(&req, cur); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := repo.UpdateCliente(r.Context(), h.Pool, cur); err != nil {
		log.Printf("[clientes] update %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(clienteToResponse(cur))
}

// DeleteCliente remove o cliente e, por cascata, suas sessões e avaliações.
func (h *Handler) DeleteCliente(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["clienteId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	if err := repo.DeleteCliente(r.Context(), h.Pool, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, `{"error":"cliente não encontrado"}`, http.StatusNotFound)
			return
		}
		log.Printf("[clientes] delete %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	// Sessões do cliente saíram da agenda; derruba o cache de ocupados inteiro.
	if h.Cache != nil {
		h.Cache.DeletePrefix("ocupados:")
	}
	w.WriteHeader(http.StatusNoContent)
}

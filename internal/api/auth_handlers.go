package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lucasxpaire/soulsalutte/internal/auth"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
}

const tokenTTL = 12 * time.Hour

// Login autentica a profissional. A clínica tem uma conta única, então não
// há papéis: token válido = acesso total.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		http.Error(w, `{"error":"email e senha são obrigatórios"}`, http.StatusBadRequest)
		return
	}
	u, err := repo.UsuarioByEmail(r.Context(), h.Pool, email)
	if err != nil {
		// Mesma resposta para usuário inexistente e senha errada.
		http.Error(w, `{"error":"credenciais inválidas"}`, http.StatusUnauthorized)
		return
	}
	if !auth.CheckPassword(u.SenhaHash, req.Password) {
		http.Error(w, `{"error":"credenciais inválidas"}`, http.StatusUnauthorized)
		return
	}
	tok, err := auth.BuildJWT(h.Cfg.JWTSecret, u.ID.String(), u.Nome, tokenTTL)
	if err != nil {
		log.Printf("[auth] BuildJWT: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		Token:     tok,
		ExpiresAt: time.Now().Add(tokenTTL),
		User:      UserInfo{ID: u.ID.String(), Email: u.Email, Nome: u.Nome},
	})
}

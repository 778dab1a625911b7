package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lucasxpaire/soulsalutte/internal/auth"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

// Me retorna os dados da conta autenticada.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(auth.UserIDFrom(r.Context()))
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	u, err := repo.UsuarioByID(r.Context(), h.Pool, uid)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(UserInfo{ID: u.ID.String(), Email: u.Email, Nome: u.Nome})
}

type ChangeMyPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangeMyPassword troca a senha da conta autenticada, exigindo a senha atual.
func (h *Handler) ChangeMyPassword(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(auth.UserIDFrom(r.Context()))
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req ChangeMyPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.CurrentPassword = strings.TrimSpace(req.CurrentPassword)
	req.NewPassword = strings.TrimSpace(req.NewPassword)
	if req.CurrentPassword == "" || req.NewPassword == "" {
		http.Error(w, `{"error":"current_password and new_password required"}`, http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		http.Error(w, `{"error":"new_password deve ter no mínimo 8 caracteres"}`, http.StatusBadRequest)
		return
	}

	u, err := repo.UsuarioByID(r.Context(), h.Pool, uid)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if !auth.CheckPassword(u.SenhaHash, req.CurrentPassword) {
		http.Error(w, `{"error":"senha atual inválida"}`, http.StatusBadRequest)
		return
	}

	hash, err := h.hashPassword(req.NewPassword)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := repo.UpdateUsuarioSenha(r.Context(), h.Pool, uid, hash); err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Senha atualizada."})
}

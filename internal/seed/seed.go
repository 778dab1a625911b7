package seed

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasxpaire/soulsalutte/internal/auth"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

// Run garante a conta única da profissional. Sem ADMIN_EMAIL/ADMIN_SENHA o
// seed cria uma conta de desenvolvimento com credenciais padrão.
func Run(ctx context.Context, pool *pgxpool.Pool, nome, email, senha string) error {
	n, err := repo.CountUsuarios(ctx, pool)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if email == "" {
		email = "mariana@soulsalutte.local"
		senha = "ChangeMe123!"
		log.Printf("seed: ADMIN_EMAIL vazio, criando conta de desenvolvimento %s", email)
	}
	if nome == "" {
		nome = "Mariana"
	}
	hash, err := auth.HashPassword(senha)
	if err != nil {
		return err
	}
	_, err = repo.CreateUsuario(ctx, pool, &repo.Usuario{Nome: nome, Email: email, SenhaHash: hash})
	if err != nil {
		return err
	}
	log.Printf("seed: conta da profissional criada (%s)", email)
	return nil
}

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Usuario é a conta da profissional que opera o sistema. A clínica tem uma
// única profissional, então não há papéis nem permissões por usuário.
type Usuario struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	SenhaHash string
}

func UsuarioByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (*Usuario, error) {
	var u Usuario
	err := pool.QueryRow(ctx, `
		SELECT id, nome, email, senha_hash FROM usuarios WHERE lower(email) = lower($1)
	`, email).Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func UsuarioByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Usuario, error) {
	var u Usuario
	err := pool.QueryRow(ctx, `
		SELECT id, nome, email, senha_hash FROM usuarios WHERE id = $1
	`, id).Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateUsuario(ctx context.Context, pool *pgxpool.Pool, u *Usuario) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO usuarios (nome, email, senha_hash) VALUES ($1, lower($2), $3) RETURNING id
	`, u.Nome, u.Email, u.SenhaHash).Scan(&id)
	return id, err
}

func UpdateUsuarioSenha(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, senhaHash string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE usuarios SET senha_hash = $1, updated_at = now() WHERE id = $2
	`, senhaHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func CountUsuarios(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT count(*) FROM usuarios`).Scan(&n)
	return n, err
}

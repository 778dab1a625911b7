package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound: registro inexistente ou já removido.
var ErrNotFound = errors.New("registro não encontrado")

type Cliente struct {
	ID                  uuid.UUID
	Nome                string
	Email               string
	Telefone            string
	DataNascimento      *time.Time
	DataCadastro        time.Time
	Sexo                string
	Cidade              string
	Bairro              string
	Profissao           string
	EnderecoResidencial string
	EnderecoComercial   string
	Naturalidade        string
	EstadoCivil         string
}

const clienteCols = `id, nome, email, telefone, data_nascimento, data_cadastro, sexo,
	cidade, bairro, profissao, endereco_residencial, endereco_comercial, naturalidade, estado_civil`

func scanCliente(row pgx.Row) (*Cliente, error) {
	var c Cliente
	err := row.Scan(&c.ID, &c.Nome, &c.Email, &c.Telefone, &c.DataNascimento, &c.DataCadastro, &c.Sexo,
		&c.Cidade, &c.Bairro, &c.Profissao, &c.EnderecoResidencial, &c.EnderecoComercial, &c.Naturalidade, &c.EstadoCivil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClientes lista clientes em ordem alfabética; nome filtra por substring
// (case-insensitive) quando não vazio.
func ListClientes(ctx context.Context, pool *pgxpool.Pool, nome string) ([]Cliente, error) {
	q := `SELECT ` + clienteCols + ` FROM clientes`
	args := []interface{}{}
	if nome != "" {
		q += ` WHERE nome ILIKE '%' || $1 || '%'`
		args = append(args, nome)
	}
	q += ` ORDER BY nome`
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Cliente
	for rows.Next() {
		var c Cliente
		if err := rows.Scan(&c.ID, &c.Nome, &c.Email, &c.Telefone, &c.DataNascimento, &c.DataCadastro, &c.Sexo,
			&c.Cidade, &c.Bairro, &c.Profissao, &c.EnderecoResidencial, &c.EnderecoComercial, &c.Naturalidade, &c.EstadoCivil); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func ClienteByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Cliente, error) {
	return scanCliente(pool.QueryRow(ctx, `SELECT `+clienteCols+` FROM clientes WHERE id = $1`, id))
}

func CreateCliente(ctx context.Context, pool *pgxpool.Pool, c *Cliente) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO clientes (nome, email, telefone, data_nascimento, sexo, cidade, bairro, profissao,
			endereco_residencial, endereco_comercial, naturalidade, estado_civil)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id
	`, c.Nome, c.Email, c.Telefone, c.DataNascimento, c.Sexo, c.Cidade, c.Bairro, c.Profissao,
		c.EnderecoResidencial, c.EnderecoComercial, c.Naturalidade, c.EstadoCivil).Scan(&id)
	return id, err
}

func UpdateCliente(ctx context.Context, pool *pgxpool.Pool, c *Cliente) error {
	tag, err := pool.Exec(ctx, `
		UPDATE clientes SET nome = $1, email = $2, telefone = $3, data_nascimento = $4, sexo = $5,
			cidade = $6, bairro = $7, profissao = $8, endereco_residencial = $9, endereco_comercial = $10,
			naturalidade = $11, estado_civil = $12, updated_at = now()
		WHERE id = $13
	`, c.Nome, c.Email, c.Telefone, c.DataNascimento, c.Sexo, c.Cidade, c.Bairro, c.Profissao,
		c.EnderecoResidencial, c.EnderecoComercial, c.Naturalidade, c.EstadoCivil, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCliente remove o cliente; sessões e avaliações caem em cascata (FK).
func DeleteCliente(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

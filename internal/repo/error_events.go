package repo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrorEvent é um erro reportado pelo front-end (ou registrado pelo próprio
// servidor) para diagnóstico posterior. Best-effort: falha ao gravar não deve
// derrubar a requisição que o reportou.
type ErrorEvent struct {
	RequestID  *string
	Source     string
	Severity   string
	HTTPMethod *string
	Path       *string
	Kind       *string
	Message    *string
	Stack      *string
	Metadata   interface{}
}

func CreateErrorEvent(ctx context.Context, pool *pgxpool.Pool, ev ErrorEvent) error {
	var meta []byte
	if ev.Metadata != nil {
		meta, _ = json.Marshal(ev.Metadata)
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO error_events (
			request_id, source, severity,
			http_method, path,
			kind, message, stack, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, ev.RequestID, ev.Source, ev.Severity,
		ev.HTTPMethod, ev.Path,
		ev.Kind, ev.Message, ev.Stack, meta)
	return err
}

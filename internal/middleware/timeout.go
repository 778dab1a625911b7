package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout limita a duração de cada request (REQUEST_TIMEOUT_SEC). Ao estourar,
// o context da request é cancelado e queries pgx em andamento abortam.
// Com timeoutSec <= 0 o middleware vira no-op.
func Timeout(timeoutSec int) func(http.Handler) http.Handler {
	if timeoutSec <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	timeout := time.Duration(timeoutSec) * time.Second
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

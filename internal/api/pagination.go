package api

import (
	"net/http"
	"strconv"
)

const maxLimit = 100

// ParseLimitOffset lê limit e offset da query. Sem limit a listagem vem
// inteira (limit 0); com limit, o teto é 100.
func ParseLimitOffset(r *http.Request) (limit, offset int) {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// pageBounds converte (limit, offset) em índices de fatia para uma lista de
// tamanho n. limit 0 significa sem paginação.
func pageBounds(n, limit, offset int) (lo, hi int) {
	if offset > n {
		offset = n
	}
	lo, hi = offset, n
	if limit > 0 && lo+limit < hi {
		hi = lo + limit
	}
	return lo, hi
}

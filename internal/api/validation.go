package api

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/lucasxpaire/soulsalutte/internal/agenda"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidPeriodo   = errors.New("inicio must be before fim")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidEVA       = errors.New("eva must be between 0 and 10")
)

// emailRegex valida formato de e-mail (uma @ e domínio com ponto).
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail valida formato de e-mail. Vazio é inválido; quem aceita
// e-mail opcional checa vazio antes.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ParseDataHora interpreta um timestamp de relógio de parede
// (2006-01-02T15:04) no fuso da clínica. Aceita também segundos,
// que alguns clientes mandam.
func ParseDataHora(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(agenda.LayoutDataHora, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidTimestamp
}

// ValidatePeriodo exige inicio estritamente antes de fim.
func ValidatePeriodo(inicio, fim time.Time) error {
	if !inicio.Before(fim) {
		return ErrInvalidPeriodo
	}
	return nil
}

// ValidateStatus aceita somente os status conhecidos de sessão.
func ValidateStatus(s string) error {
	if !repo.StatusValido(s) {
		return ErrInvalidStatus
	}
	return nil
}

// ValidateEVA valida a escala visual analógica de dor (0 a 10).
func ValidateEVA(v int) error {
	if v < 0 || v > 10 {
		return ErrInvalidEVA
	}
	return nil
}

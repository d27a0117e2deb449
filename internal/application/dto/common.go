package dto

import (
	"fmt"
	"strings"
	"time"
)

// Límites de paginación de los listados.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica el límite por defecto si Limit es cero o excede el máximo.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// Envelope forma común de todas las respuestas de la API.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva datos para explicar el fallo al usuario
// (stock disponible, campos inválidos).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// dateLayouts formatos aceptados en parámetros y cuerpos de fecha.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate interpreta una fecha en RFC3339 o YYYY-MM-DD. Vacío devuelve nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("fecha inválida %q: use YYYY-MM-DD o RFC3339", s)
}

// EndOfDay si la fecha vino sin hora (YYYY-MM-DD) la lleva al último instante del día,
// para que un filtro "hasta" incluya ese día completo.
func EndOfDay(raw string, t *time.Time) *time.Time {
	if t == nil || len(strings.TrimSpace(raw)) != len("2006-01-02") {
		return t
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}

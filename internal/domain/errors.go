package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// Tipos de error expuestos a los llamadores del motor de ventas.
const (
	KindValidation        = "validation_error"
	KindNotFound          = "not_found"
	KindInsufficientStock = "insufficient_stock"
	KindConflict          = "conflict"
	KindDuplicate         = "duplicate"
	KindInternal          = "internal"
)

// LineError describe el fallo de una línea concreta del carrito.
// Line es 1-based; 0 significa que el error afecta a la venta completa.
type LineError struct {
	Line   int
	Err    error
	Detail string
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("línea %d: %s", e.Line, e.Detail)
	}
	return e.Detail
}

// Unwrap permite errors.Is contra los errores centinela.
func (e *LineError) Unwrap() error { return e.Err }

// NewLineError construye un LineError con mensaje formateado.
func NewLineError(line int, err error, format string, args ...any) *LineError {
	return &LineError{Line: line, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// Kind traduce un error a la taxonomía pública.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

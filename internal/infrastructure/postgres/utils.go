package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE usados por los repositorios.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), codeUniqueViolation)
}

// isForeignKeyViolation referencia a una fila inexistente o borrado de una fila referenciada.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isCheckViolation violación de un CHECK (ej. stock_quantity >= 0).
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// isRetryable errores transitorios de concurrencia: la transacción completa puede reintentarse.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern patrón LIKE de subcadena literal: % y _ del texto no actúan como comodines.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

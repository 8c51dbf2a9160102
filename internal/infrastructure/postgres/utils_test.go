package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClasificacionDeErroresPg(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("decrement stock: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, isUniqueViolation(wrap(codeUniqueViolation)))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key (SQLSTATE 23505)")))
	assert.False(t, isUniqueViolation(wrap(codeForeignKeyViolation)))

	assert.True(t, isForeignKeyViolation(wrap(codeForeignKeyViolation)))
	assert.True(t, isCheckViolation(wrap(codeCheckViolation)))

	assert.True(t, isRetryable(wrap(codeSerializationFailure)))
	assert.True(t, isRetryable(wrap(codeDeadlockDetected)))
	assert.False(t, isRetryable(wrap(codeUniqueViolation)))
	assert.False(t, isRetryable(errors.New("timeout")))
}

func TestContainsPatternEscapaComodines(t *testing.T) {
	cases := map[string]string{
		"para":  `%para%`,
		"100%":  `%100\%%`,
		"vit_c": `%vit\_c%`,
		`a\b`:   `%a\\b%`,
		"_%":    `%\_\%%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, containsPattern(in), in)
	}
}

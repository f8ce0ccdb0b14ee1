package user

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "users_email_key",
	}

	require.True(t, isUniqueViolation(uniqueErr))
	require.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", uniqueErr)))

	require.False(t, isUniqueViolation(nil))
	require.False(t, isUniqueViolation(errors.New("connection refused")))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
}

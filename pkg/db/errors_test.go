package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_orders_order_number",
	}

	assert.True(t, IsUniqueViolation(pgErr, "order_number"))
	assert.True(t, IsUniqueViolation(pgErr, ""))
	assert.False(t, IsUniqueViolation(pgErr, "login_id"))

	wrapped := fmt.Errorf("create order: %w", pgErr)
	assert.True(t, IsUniqueViolation(wrapped, "order_number"))

	notUnique := &pgconn.PgError{Code: "23503", ConstraintName: "fk_orders_buyer"}
	assert.False(t, IsUniqueViolation(notUnique, ""))
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	t.Parallel()

	sqliteErr := errors.New("UNIQUE constraint failed: orders.order_number")
	assert.True(t, IsUniqueViolation(sqliteErr, "order_number"))
	assert.False(t, IsUniqueViolation(sqliteErr, "sku"))

	pgMsg := errors.New(`duplicate key value violates unique constraint "users_login_id_key"`)
	assert.True(t, IsUniqueViolation(pgMsg, "login_id"))

	assert.False(t, IsUniqueViolation(errors.New("connection reset by peer"), ""))
	assert.False(t, IsUniqueViolation(nil, "order_number"))
}

package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := errors.New(`duplicate key value violates unique constraint "orders_order_number_key"`)
	sqliteErr := fmt.Errorf("insert: %w", errors.New("UNIQUE constraint failed: orders.order_number"))

	assert.True(t, IsUniqueViolation(pgErr, "orders_order_number_key"))
	assert.True(t, IsUniqueViolation(pgErr, ""))
	assert.True(t, IsUniqueViolation(sqliteErr, "orders_order_number_key"))

	assert.False(t, IsUniqueViolation(nil, "orders_order_number_key"))
	assert.False(t, IsUniqueViolation(errors.New("connection refused"), "orders_order_number_key"))
	assert.False(t, IsUniqueViolation(errors.New(`violates unique constraint "books_pkey"`), "orders_order_number_key"))
}

package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"sku", &pgconn.PgError{Code: "23505", ConstraintName: "products_sku_key"}, domain.ErrDuplicateSKU},
		{"order_no", &pgconn.PgError{Code: "23505", ConstraintName: "sales_orders_order_no_key"}, domain.ErrConflict},
		{"barcode", &pgconn.PgError{Code: "23505", ConstraintName: "barcode_entries_format_code_value_key"}, domain.ErrConflict},
		{"serialización", &pgconn.PgError{Code: "40001"}, domain.ErrConflict},
		{"deadlock", fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "40P01"}), domain.ErrConflict},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, domain.ErrConflict},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "inventory_levels_qty_on_hand_check"}, domain.ErrStorage},
		{"conexión", errors.New("connection refused"), domain.ErrStorage},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", c.err), c.want)
		})
	}
	assert.NoError(t, mapError("op", nil))
}

func TestMapError_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := mapError("insert product", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert product")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}

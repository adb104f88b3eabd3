package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/pos-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// Constraints con significado de negocio.
const (
	constraintProductSKU = "products_sku_key"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapError traduce errores de PostgreSQL a errores de dominio:
//   - 23505 sobre products_sku_key → ErrDuplicateSKU
//   - 23505 en cualquier otro índice único (order_no, barcode, nivel) → ErrConflict
//   - 40001 / 40P01 / 55P03 (lock_timeout) → ErrConflict (la operación completa puede reintentarse)
//   - resto → ErrStorage
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
	if isUniqueViolation(err) {
		if pgErr.ConstraintName == constraintProductSKU {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.ConstraintName)
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.Message)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w: check %s: %w", op, domain.ErrStorage, pgErr.ConstraintName, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

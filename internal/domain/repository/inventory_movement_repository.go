package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// MovementTotals sumas del libro de movimientos de un producto.
type MovementTotals struct {
	In  int
	Out int
}

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]entity.InventoryMovement, int, error)
	SumByProduct(ctx context.Context, productID string) (MovementTotals, error)
}

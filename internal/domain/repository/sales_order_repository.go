package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SalesOrderRepository puerto de persistencia de órdenes de venta (inmutables).
type SalesOrderRepository interface {
	// Create inserta cabecera e ítems. Un order_no repetido devuelve domain.ErrConflict.
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	List(ctx context.Context, limit, offset int) ([]entity.SalesOrderSummary, int, error)
}

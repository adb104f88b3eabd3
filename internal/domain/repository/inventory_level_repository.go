package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// InventoryLevelRepository define el puerto para consultar/actualizar el stock por producto (DIP).
// Los métodos ...ForUpdate y LockActiveStock bloquean filas y solo tienen sentido dentro de una transacción.
type InventoryLevelRepository interface {
	Create(ctx context.Context, level *entity.InventoryLevel) error
	GetByProduct(ctx context.Context, productID string) (*entity.InventoryLevel, error)
	GetByProductForUpdate(ctx context.Context, productID string) (*entity.InventoryLevel, error)
	Save(ctx context.Context, level *entity.InventoryLevel) error
	UpdateReorderLevel(ctx context.Context, productID string, reorderLevel int) error
	// LockActiveStock carga productos activos con su nivel y bloquea los niveles.
	// Los ids ausentes o inactivos simplemente no aparecen en el mapa.
	LockActiveStock(ctx context.Context, productIDs []string) (map[string]entity.ProductStock, error)
	// ListLowStock productos activos con qty <= reorden, ascendente por qty.
	ListLowStock(ctx context.Context) ([]entity.ProductStock, error)
}

package inventory

import (
	"context"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// LowStockUseCase reporte de productos activos en o por debajo de su nivel de reorden.
type LowStockUseCase struct {
	levelRepo repository.InventoryLevelRepository
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(levelRepo repository.InventoryLevelRepository) *LowStockUseCase {
	return &LowStockUseCase{levelRepo: levelRepo}
}

// Report devuelve el conjunto completo ordenado por cantidad ascendente (más urgente primero).
func (uc *LowStockUseCase) Report(ctx context.Context) (*dto.LowStockReport, error) {
	rows, err := uc.levelRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.LowStockItem{
			ProductID:    r.ID,
			SKU:          r.SKU,
			Name:         r.Name,
			Price:        r.Price,
			QtyOnHand:    r.QtyOnHand,
			ReorderLevel: r.ReorderLevel,
		})
	}
	return &dto.LowStockReport{Items: items, Count: len(items)}, nil
}

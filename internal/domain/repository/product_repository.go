package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductFilter filtro del listado de productos activos.
type ProductFilter struct {
	Keyword string // coincide con SKU o nombre, sin distinguir mayúsculas
	Limit   int
	Offset  int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetBySKU devuelven (nil, nil) cuando no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// ListActive devuelve productos activos con su stock, más recientes primero, y el total sin paginar.
	ListActive(ctx context.Context, filter ProductFilter) ([]entity.ProductStock, int, error)
}

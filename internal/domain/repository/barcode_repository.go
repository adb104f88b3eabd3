package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// BarcodeMatch resultado de buscar un producto activo por valor de código.
type BarcodeMatch struct {
	Barcode entity.BarcodeEntry
	Product entity.ProductStock
}

// BarcodeRepository puerto de persistencia para códigos de barras.
type BarcodeRepository interface {
	Create(ctx context.Context, barcode *entity.BarcodeEntry) error
	ExistsByFormatAndCode(ctx context.Context, format entity.BarcodeFormat, code string) (bool, error)
	// ClearPrimary quita la marca de principal a todos los códigos del producto.
	ClearPrimary(ctx context.Context, productID string) error
	// FindActiveByCode prefiere el código principal y luego el más reciente; (nil, nil) si no hay.
	FindActiveByCode(ctx context.Context, code string) (*BarcodeMatch, error)
	ListByProduct(ctx context.Context, productID string) ([]entity.BarcodeEntry, error)
}

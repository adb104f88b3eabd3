package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo. El stock vive en InventoryLevel (1:1).
// Nunca se elimina físicamente: se desactiva con IsActive=false porque movimientos e
// ítems de venta lo referencian por ID.
type Product struct {
	ID        string
	SKU       string // único, inmutable después de crear
	Name      string
	Category  string // opcional; vacío = sin categoría
	Price     decimal.Decimal
	Cost      decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductStock es la proyección producto + nivel de inventario usada en listados y en checkout.
type ProductStock struct {
	Product
	QtyOnHand    int
	ReorderLevel int
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockInRequest body para POST /api/inventory/in.
type StockInRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty"`
	Reason    string `json:"reason" validate:"max=200"`
	// UnitCost opcional; si viene, recalcula el costo promedio del producto.
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// StockInResponse cantidad resultante después de la entrada.
type StockInResponse struct {
	ProductID string          `json:"product_id"`
	QtyOnHand int             `json:"qty_on_hand"`
	Cost      decimal.Decimal `json:"cost"`
}

// MovementResponse una línea del libro de inventario.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Qty       int       `json:"qty"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementListResponse movimientos paginados, más recientes primero.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LowStockItem producto en o por debajo de su nivel de reorden.
type LowStockItem struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	QtyOnHand    int             `json:"qty_on_hand"`
	ReorderLevel int             `json:"reorder_level"`
}

// LowStockReport conjunto completo, sin paginar.
type LowStockReport struct {
	Items []LowStockItem `json:"items"`
	Count int            `json:"count"`
}

// ReconciliationResponse compara el stock actual con la suma del libro de movimientos.
type ReconciliationResponse struct {
	ProductID string `json:"product_id"`
	QtyOnHand int    `json:"qty_on_hand"`
	TotalIn   int    `json:"total_in"`
	TotalOut  int    `json:"total_out"`
	Balanced  bool   `json:"balanced"`
}

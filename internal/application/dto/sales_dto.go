package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItemRequest línea del carrito.
type CheckoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty"`
}

// CheckoutRequest carrito completo a cobrar.
type CheckoutRequest struct {
	Items          []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string                `json:"payment_method" validate:"required"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	Discount       *decimal.Decimal      `json:"discount"`
	Note           string                `json:"note" validate:"max=500"`
	IdempotencyKey string                `json:"-"`
}

// OrderItemResponse línea de la orden con los snapshots de producto.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderResponse orden completa.
type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNo       string              `json:"order_no"`
	PaymentMethod string              `json:"payment_method"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	PaidAmount    decimal.Decimal     `json:"paid_amount"`
	ChangeAmount  decimal.Decimal     `json:"change_amount"`
	Note          string              `json:"note,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []OrderItemResponse `json:"items"`
}

// OrderSummaryResponse fila del listado de órdenes.
type OrderSummaryResponse struct {
	ID            string          `json:"id"`
	OrderNo       string          `json:"order_no"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderListResponse listado paginado de órdenes, más recientes primero.
type OrderListResponse struct {
	Items []OrderSummaryResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

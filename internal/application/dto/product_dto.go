package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto con su stock inicial.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=100"`
	Name         string          `json:"name" validate:"required,max=200"`
	Category     string          `json:"category" validate:"max=100"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	InitialQty   int             `json:"initial_qty" validate:"min=0"`
	ReorderLevel *int            `json:"reorder_level" validate:"omitempty,min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (SKU no se modifica).
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=200"`
	Category     *string          `json:"category" validate:"omitempty,max=100"`
	Price        *decimal.Decimal `json:"price"`
	Cost         *decimal.Decimal `json:"cost"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto con su stock actual.
type ProductResponse struct {
	ID           string            `json:"id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	Category     string            `json:"category,omitempty"`
	Price        decimal.Decimal   `json:"price"`
	Cost         decimal.Decimal   `json:"cost"`
	IsActive     bool              `json:"is_active"`
	QtyOnHand    int               `json:"qty_on_hand"`
	ReorderLevel int               `json:"reorder_level"`
	Barcodes     []BarcodeResponse `json:"barcodes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AddBarcodeRequest entrada para asociar un código de barras a un producto.
type AddBarcodeRequest struct {
	Format    string `json:"format" validate:"required"`
	CodeValue string `json:"code_value" validate:"required,max=128"`
	IsPrimary bool   `json:"is_primary"`
}

// BarcodeResponse código de barras registrado.
type BarcodeResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Format    string    `json:"format"`
	CodeValue string    `json:"code_value"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// BarcodeLookupResponse resultado de escanear un código en caja.
type BarcodeLookupResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	QtyOnHand int             `json:"qty_on_hand"`
	Format    string          `json:"format"`
	CodeValue string          `json:"code_value"`
	IsPrimary bool            `json:"is_primary"`
}

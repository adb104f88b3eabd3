package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los handlers los traducen a códigos HTTP con errors.Is.
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrProductNotFound         = fmt.Errorf("producto no encontrado o inactivo: %w", ErrNotFound)
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrInvalidQuantity         = errors.New("la cantidad debe ser mayor que cero")
	ErrDuplicateSKU            = errors.New("el SKU ya existe")
	ErrDuplicateBarcode        = errors.New("el código de barras ya existe para ese formato")
	ErrUnsupportedFormat       = errors.New("formato de código de barras no soportado")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInsufficientPayment     = errors.New("pago insuficiente")
	ErrInvalidDiscount         = errors.New("el descuento no puede ser negativo")
	ErrDiscountExceedsSubtotal = errors.New("el descuento excede el subtotal")
	ErrCardAmountMismatch      = errors.New("el pago con tarjeta debe ser exactamente igual al total")
	ErrForbidden               = errors.New("acceso denegado")
	ErrConflict                = errors.New("conflicto con el estado actual, reintente la operación")
	ErrStorage                 = errors.New("falla del almacenamiento")
)

// InsufficientStockError detalla qué línea del carrito no tiene stock.
type InsufficientStockError struct {
	ProductID string
	SKU       string
	OnHand    int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.SKU, e.OnHand, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ProductNotFoundError identifica el producto del carrito que no existe o está inactivo.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado o inactivo", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// PaymentError rechazo de pago: ErrInsufficientPayment o ErrCardAmountMismatch.
type PaymentError struct {
	Err    error
	Total  decimal.Decimal
	Paid   decimal.Decimal
	Method string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: total %s, pagado %s (%s)", e.Err, e.Total.StringFixed(2), e.Paid.StringFixed(2), e.Method)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// DiscountError rechazo de descuento: ErrInvalidDiscount o ErrDiscountExceedsSubtotal.
type DiscountError struct {
	Err      error
	Subtotal decimal.Decimal
	Discount decimal.Decimal
}

func (e *DiscountError) Error() string {
	return fmt.Sprintf("%s: subtotal %s, descuento %s", e.Err, e.Subtotal.StringFixed(2), e.Discount.StringFixed(2))
}

func (e *DiscountError) Unwrap() error { return e.Err }

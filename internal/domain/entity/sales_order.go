package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago aceptado en caja.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

// ParsePaymentMethod acepta CASH o CARD sin importar mayúsculas.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentCard:
		return m, true
	}
	return "", false
}

// SalesOrder cabecera inmutable de una venta confirmada.
// Invariantes: Total = Subtotal - Discount, Total >= 0, PaidAmount >= Total,
// con tarjeta PaidAmount == Total y ChangeAmount == 0.
type SalesOrder struct {
	ID            string
	OrderNo       string
	PaymentMethod PaymentMethod
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaidAmount    decimal.Decimal
	ChangeAmount  decimal.Decimal
	Note          string
	CreatedAt     time.Time
	Items         []SalesOrderItem
}

// SalesOrderItem línea de la venta con snapshot de SKU, nombre y precio al momento del cobro.
type SalesOrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	SKU       string
	Name      string
	UnitPrice decimal.Decimal
	Qty       int
	LineTotal decimal.Decimal
}

// SalesOrderSummary fila del listado de órdenes.
type SalesOrderSummary struct {
	ID            string
	OrderNo       string
	PaymentMethod PaymentMethod
	Total         decimal.Decimal
	ItemCount     int
	CreatedAt     time.Time
}

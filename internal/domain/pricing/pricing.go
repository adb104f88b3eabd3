// Package pricing agrupa el cálculo monetario de la caja: redondeo a 2 decimales
// (mitad alejándose de cero), totales de línea y liquidación de pago.
package pricing

import (
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Round2 redondea a 2 decimales, mitad alejándose de cero (2.345 → 2.35, -2.345 → -2.35).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal round2(precio unitario × cantidad).
func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

// Settlement resultado de liquidar un carrito ya tasado.
type Settlement struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Change   decimal.Decimal
}

// Settle aplica descuento y pago sobre el subtotal en el orden fijo de la caja:
// descuento negativo, descuento mayor que el subtotal y luego el pago. Con tarjeta el
// pago debe ser exactamente el total (ErrCardAmountMismatch también cuando es menor);
// en efectivo un pago menor es ErrInsufficientPayment.
func Settle(subtotal decimal.Decimal, discount *decimal.Decimal, paid decimal.Decimal, method entity.PaymentMethod) (Settlement, error) {
	subtotal = Round2(subtotal)
	d := decimal.Zero
	if discount != nil {
		d = Round2(*discount)
	}
	if d.IsNegative() {
		return Settlement{}, &domain.DiscountError{Err: domain.ErrInvalidDiscount, Subtotal: subtotal, Discount: d}
	}
	total := Round2(subtotal.Sub(d))
	if total.IsNegative() {
		return Settlement{}, &domain.DiscountError{Err: domain.ErrDiscountExceedsSubtotal, Subtotal: subtotal, Discount: d}
	}
	paid = Round2(paid)
	change := decimal.Zero
	switch method {
	case entity.PaymentCard:
		if !paid.Equal(total) {
			return Settlement{}, &domain.PaymentError{Err: domain.ErrCardAmountMismatch, Total: total, Paid: paid, Method: string(method)}
		}
	default:
		if paid.LessThan(total) {
			return Settlement{}, &domain.PaymentError{Err: domain.ErrInsufficientPayment, Total: total, Paid: paid, Method: string(method)}
		}
		change = Round2(paid.Sub(total))
	}
	return Settlement{Subtotal: subtotal, Discount: d, Total: total, Paid: paid, Change: change}, nil
}

package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockDecrementer integra la caja con el libro de inventario.
// DecrementForOrderInTx descuenta usando los repositorios del caller (misma transacción).
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type StockDecrementer interface {
	DecrementForOrderInTx(
		ctx context.Context,
		repos ports.TxRepos,
		level *entity.InventoryLevel,
		qty int,
		orderNo string,
		now time.Time,
	) error
}

// IdempotencyStore evita cobrar dos veces el mismo carrito cuando el cliente reintenta.
//
// Reserve devuelve reserved=true si la clave es nueva y quedó tomada por este llamador.
// Si ya existía, orderID trae la orden confirmada (vacío mientras el primer intento sigue en curso).
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

// CheckoutMetrics recibe el resultado de cada cobro.
type CheckoutMetrics interface {
	ObserveCheckout(result string, method entity.PaymentMethod, total decimal.Decimal)
}

// ReceiptPDFGenerator renderiza el comprobante de una orden confirmada.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, order *entity.SalesOrder) ([]byte, error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCheckout(string, entity.PaymentMethod, decimal.Decimal) {}

package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// Resultados de cobro reportados a las métricas.
const (
	ResultOK                = "ok"
	ResultReplayed          = "replayed"
	ResultInvalid           = "invalid"
	ResultForbidden         = "forbidden"
	ResultProductNotFound   = "product_not_found"
	ResultInsufficientStock = "insufficient_stock"
	ResultDiscountRejected  = "discount_rejected"
	ResultPaymentRejected   = "payment_rejected"
	ResultConflict          = "conflict"
	ResultError             = "error"
)

// idempotencyTimeout plazo para liberar o confirmar la clave aunque el request ya haya expirado.
const idempotencyTimeout = 5 * time.Second

// CheckoutUseCase convierte un carrito en una orden confirmada y descuenta el inventario
// en una sola transacción: o se aplica todo o no queda rastro.
type CheckoutUseCase struct {
	txRunner    ports.TxRunner
	inventoryUC StockDecrementer
	orderRepo   repository.SalesOrderRepository
	idempotency IdempotencyStore
	metrics     CheckoutMetrics
	log         *logger.Logger
	now         func() time.Time
}

// NewCheckoutUseCase construye el caso de uso. idempotency y metrics son opcionales (nil).
func NewCheckoutUseCase(
	txRunner ports.TxRunner,
	inventoryUC StockDecrementer,
	orderRepo repository.SalesOrderRepository,
	idempotency IdempotencyStore,
	metrics CheckoutMetrics,
	log *logger.Logger,
) *CheckoutUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CheckoutUseCase{
		txRunner:    txRunner,
		inventoryUC: inventoryUC,
		orderRepo:   orderRepo,
		idempotency: idempotency,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj usado para timestamps y número de orden.
func (uc *CheckoutUseCase) WithClock(now func() time.Time) *CheckoutUseCase {
	uc.now = now
	return uc
}

// cartLine línea del carrito ya fusionada por producto.
type cartLine struct {
	productID string
	qty       int
}

// Checkout valida stock y pago, calcula totales, persiste la orden con sus ítems y
// registra las salidas de inventario. Cualquier error deja la base sin cambios.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, role entity.Role, in dto.CheckoutRequest) (*dto.OrderResponse, error) {
	method, lines, err := validateCart(role, in)
	if err != nil {
		uc.metrics.ObserveCheckout(resultOf(err), method, decimal.Zero)
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" && uc.idempotency != nil {
		orderID, reserved, err := uc.idempotency.Reserve(ctx, key)
		if err != nil {
			uc.metrics.ObserveCheckout(ResultError, method, decimal.Zero)
			return nil, fmt.Errorf("%w: idempotencia: %w", domain.ErrStorage, err)
		}
		if !reserved {
			return uc.replay(ctx, key, orderID, method)
		}
	} else {
		key = ""
	}

	order, err := uc.checkoutTx(ctx, method, lines, in)
	if err != nil {
		if key != "" {
			if rErr := uc.releaseKey(ctx, key); rErr != nil {
				uc.log.Error().Err(rErr).Str("idempotency_key", key).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
		uc.logRejection(err, lines)
		uc.metrics.ObserveCheckout(resultOf(err), method, decimal.Zero)
		return nil, err
	}

	if key != "" {
		if cErr := uc.completeKey(ctx, key, order.ID); cErr != nil {
			uc.log.Error().Err(cErr).Str("idempotency_key", key).Str("order_no", order.OrderNo).Msg("no se pudo registrar la clave de idempotencia")
		}
	}
	uc.metrics.ObserveCheckout(ResultOK, method, order.Total)
	uc.log.Info().
		Str("order_no", order.OrderNo).
		Str("payment_method", string(method)).
		Str("total", order.Total.StringFixed(2)).
		Int("lines", len(order.Items)).
		Msg("venta confirmada")
	return toOrderResponse(order), nil
}

// releaseKey libera la clave aunque ctx esté cancelado: un cobro fallido por timeout debe poder reintentarse.
func (uc *CheckoutUseCase) releaseKey(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyTimeout)
	defer cancel()
	return uc.idempotency.Release(ctx, key)
}

// completeKey asocia la clave a la orden ya confirmada, independiente del ctx del request.
func (uc *CheckoutUseCase) completeKey(ctx context.Context, key, orderID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyTimeout)
	defer cancel()
	return uc.idempotency.Complete(ctx, key, orderID)
}

// validateCart chequeos previos a cualquier acceso a la base y fusión de líneas por producto
// respetando el orden de primera aparición.
func validateCart(role entity.Role, in dto.CheckoutRequest) (entity.PaymentMethod, []cartLine, error) {
	if !role.CanCheckout() {
		return "", nil, domain.ErrForbidden
	}
	if len(in.Items) == 0 {
		return "", nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	index := make(map[string]int, len(in.Items))
	lines := make([]cartLine, 0, len(in.Items))
	for _, item := range in.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			return "", nil, fmt.Errorf("%w: product_id es obligatorio en cada línea", domain.ErrInvalidInput)
		}
		if item.Qty <= 0 || item.Qty > entity.MaxQty {
			return "", nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[productID]; ok {
			if lines[i].qty > entity.MaxQty-item.Qty {
				return "", nil, fmt.Errorf("%w: la cantidad total de %s supera %d", domain.ErrInvalidQuantity, productID, entity.MaxQty)
			}
			lines[i].qty += item.Qty
			continue
		}
		index[productID] = len(lines)
		lines = append(lines, cartLine{productID: productID, qty: item.Qty})
	}
	method, ok := entity.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return "", nil, fmt.Errorf("%w: medio de pago %q no soportado", domain.ErrInvalidInput, in.PaymentMethod)
	}
	return method, lines, nil
}

func (uc *CheckoutUseCase) checkoutTx(ctx context.Context, method entity.PaymentMethod, lines []cartLine, in dto.CheckoutRequest) (*entity.SalesOrder, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.productID)
	}
	// Orden fijo de bloqueo para que dos cajas con los mismos productos no se bloqueen mutuamente
	sort.Strings(ids)

	var order *entity.SalesOrder
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		stock, err := repos.Levels.LockActiveStock(ctx, ids)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if _, ok := stock[l.productID]; !ok {
				return &domain.ProductNotFoundError{ProductID: l.productID}
			}
		}
		for _, l := range lines {
			ps := stock[l.productID]
			if ps.QtyOnHand < l.qty {
				return &domain.InsufficientStockError{ProductID: ps.ID, SKU: ps.SKU, OnHand: ps.QtyOnHand, Requested: l.qty}
			}
		}

		now := uc.now()
		orderID := uuid.New().String()
		items := make([]entity.SalesOrderItem, 0, len(lines))
		subtotal := decimal.Zero
		for _, l := range lines {
			ps := stock[l.productID]
			lineTotal := pricing.LineTotal(ps.Price, l.qty)
			subtotal = subtotal.Add(lineTotal)
			items = append(items, entity.SalesOrderItem{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: ps.ID,
				SKU:       ps.SKU,
				Name:      ps.Name,
				UnitPrice: ps.Price,
				Qty:       l.qty,
				LineTotal: lineTotal,
			})
		}
		settlement, err := pricing.Settle(subtotal, in.Discount, in.PaidAmount, method)
		if err != nil {
			return err
		}

		order = &entity.SalesOrder{
			ID:            orderID,
			OrderNo:       NewOrderNo(now),
			PaymentMethod: method,
			Subtotal:      settlement.Subtotal,
			Discount:      settlement.Discount,
			Total:         settlement.Total,
			PaidAmount:    settlement.Paid,
			ChangeAmount:  settlement.Change,
			Note:          strings.TrimSpace(in.Note),
			CreatedAt:     now,
			Items:         items,
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, l := range lines {
			ps := stock[l.productID]
			level := &entity.InventoryLevel{
				ProductID:    ps.ID,
				QtyOnHand:    ps.QtyOnHand,
				ReorderLevel: ps.ReorderLevel,
			}
			if err := uc.inventoryUC.DecrementForOrderInTx(ctx, repos, level, l.qty, order.OrderNo, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// replay devuelve la orden ya confirmada para una clave repetida.
func (uc *CheckoutUseCase) replay(ctx context.Context, key, orderID string, method entity.PaymentMethod) (*dto.OrderResponse, error) {
	if orderID == "" {
		uc.metrics.ObserveCheckout(ResultConflict, method, decimal.Zero)
		return nil, fmt.Errorf("%w: ya hay un cobro en curso con la misma clave", domain.ErrConflict)
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		uc.metrics.ObserveCheckout(ResultError, method, decimal.Zero)
		return nil, err
	}
	if order == nil {
		uc.metrics.ObserveCheckout(ResultError, method, decimal.Zero)
		return nil, domain.ErrNotFound
	}
	uc.metrics.ObserveCheckout(ResultReplayed, method, decimal.Zero)
	uc.log.Info().Str("order_no", order.OrderNo).Str("idempotency_key", key).Msg("cobro repetido, se devuelve la orden existente")
	return toOrderResponse(order), nil
}

func (uc *CheckoutUseCase) logRejection(err error, lines []cartLine) {
	switch {
	case errors.Is(err, domain.ErrStorage):
		uc.log.Error().Err(err).Int("lines", len(lines)).Msg("cobro fallido")
	case errors.Is(err, domain.ErrConflict):
		uc.log.Warn().Err(err).Int("lines", len(lines)).Msg("cobro en conflicto, reintentar")
	default:
		uc.log.Debug().Err(err).Int("lines", len(lines)).Msg("cobro rechazado")
	}
}

// NewOrderNo "SO" + timestamp UTC con milisegundos: SOyyyyMMddHHmmssfff.
func NewOrderNo(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("SO%s%03d", now.Format("20060102150405"), now.Nanosecond()/int(time.Millisecond))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrForbidden):
		return ResultForbidden
	case errors.Is(err, domain.ErrProductNotFound):
		return ResultProductNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return ResultInsufficientStock
	case errors.Is(err, domain.ErrInvalidDiscount), errors.Is(err, domain.ErrDiscountExceedsSubtotal):
		return ResultDiscountRejected
	case errors.Is(err, domain.ErrInsufficientPayment), errors.Is(err, domain.ErrCardAmountMismatch):
		return ResultPaymentRejected
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return ResultInvalid
	case errors.Is(err, domain.ErrConflict):
		return ResultConflict
	default:
		return ResultError
	}
}

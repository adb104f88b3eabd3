package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	invdomain "github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// LedgerUseCase libro de inventario: es el único que modifica InventoryLevel y siempre
// deja un InventoryMovement por cada cambio de cantidad, bloqueando la fila del nivel
// (SELECT FOR UPDATE) dentro de la transacción.
type LedgerUseCase struct {
	txRunner     ports.TxRunner
	productRepo  repository.ProductRepository
	levelRepo    repository.InventoryLevelRepository
	movementRepo repository.InventoryMovementRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.InventoryMovementRepository,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		log:          log,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// StockIn suma qty al stock del producto y registra el movimiento IN. Devuelve la cantidad resultante.
// Con UnitCost actualiza el costo del producto por promedio ponderado en la misma transacción.
func (uc *LedgerUseCase) StockIn(ctx context.Context, role entity.Role, in dto.StockInRequest) (*dto.StockInResponse, error) {
	if !role.CanManageCatalog() {
		return nil, domain.ErrForbidden
	}
	if in.Qty <= 0 || in.Qty > entity.MaxQty {
		return nil, domain.ErrInvalidQuantity
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id es obligatorio", domain.ErrInvalidInput)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
	}

	now := uc.now()
	var (
		newQty int
		cost   decimal.Decimal
	)
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		// Bloquea la fila del nivel para evitar condiciones de carrera con la caja
		level, err := repos.Levels.GetByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if level == nil {
			return domain.ErrNotFound
		}
		if level.QtyOnHand > entity.MaxQty-in.Qty {
			return fmt.Errorf("%w: el stock resultante supera %d", domain.ErrInvalidQuantity, entity.MaxQty)
		}
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		cost = product.Cost
		if in.UnitCost != nil {
			cost = invdomain.WeightedAverageCost(level.QtyOnHand, product.Cost, in.Qty, *in.UnitCost)
			product.Cost = cost
			product.UpdatedAt = now
			if err := repos.Products.Update(ctx, product); err != nil {
				return err
			}
		}
		level.QtyOnHand += in.Qty
		level.UpdatedAt = now
		if err := repos.Levels.Save(ctx, level); err != nil {
			return err
		}
		newQty = level.QtyOnHand
		return repos.Movements.Create(ctx, &entity.InventoryMovement{
			ID:        uuid.New().String(),
			ProductID: productID,
			Type:      entity.MovementTypeIN,
			Qty:       in.Qty,
			Reason:    strings.TrimSpace(in.Reason),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", productID).Int("qty", in.Qty).Int("qty_on_hand", newQty).
		Str("cost", cost.StringFixed(2)).Msg("entrada de inventario")
	return &dto.StockInResponse{ProductID: productID, QtyOnHand: newQty, Cost: cost}, nil
}

// DecrementForOrderInTx descuenta qty del nivel ya bloqueado usando los repositorios de la
// transacción del caller y registra el movimiento OUT "Checkout <orderNo>".
// Solo la usa la caja; nunca debe exponerse como operación independiente.
// Si retorna error el caller debe hacer rollback.
func (uc *LedgerUseCase) DecrementForOrderInTx(
	ctx context.Context,
	repos ports.TxRepos,
	level *entity.InventoryLevel,
	qty int,
	orderNo string,
	now time.Time,
) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if level.QtyOnHand < qty {
		return &domain.InsufficientStockError{ProductID: level.ProductID, OnHand: level.QtyOnHand, Requested: qty}
	}
	level.QtyOnHand -= qty
	level.UpdatedAt = now
	if err := repos.Levels.Save(ctx, level); err != nil {
		return err
	}
	return repos.Movements.Create(ctx, &entity.InventoryMovement{
		ID:        uuid.New().String(),
		ProductID: level.ProductID,
		Type:      entity.MovementTypeOUT,
		Qty:       qty,
		Reason:    entity.ReasonCheckoutPrefix + orderNo,
		CreatedAt: now,
	})
}

// ListMovements historial de movimientos del producto, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.Normalize()
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	list, total, err := uc.movementRepo.ListByProduct(ctx, productID, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Type:      m.Type,
			Qty:       m.Qty,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		})
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, PageSize: page.PageSize, Total: total},
	}, nil
}

// Reconcile compara qty_on_hand con ΣIN − ΣOUT del libro.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, role entity.Role, productID string) (*dto.ReconciliationResponse, error) {
	if !role.CanManageCatalog() {
		return nil, domain.ErrForbidden
	}
	level, err := uc.levelRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrNotFound
	}
	totals, err := uc.movementRepo.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	balanced := totals.In-totals.Out == level.QtyOnHand
	if !balanced {
		uc.log.Warn().Str("product_id", productID).Int("qty_on_hand", level.QtyOnHand).
			Int("total_in", totals.In).Int("total_out", totals.Out).Msg("inventario descuadrado")
	}
	return &dto.ReconciliationResponse{
		ProductID: productID,
		QtyOnHand: level.QtyOnHand,
		TotalIn:   totals.In,
		TotalOut:  totals.Out,
		Balanced:  balanced,
	}, nil
}

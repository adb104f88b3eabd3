package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

type fixture struct {
	store   *memory.Store
	catalog *catalog.UseCase
	ledger  *inventory.LedgerUseCase
	low     *inventory.LowStockUseCase
}

func newFixture() *fixture {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	store := memory.NewStore()
	repos := store.Repos()
	return &fixture{
		store:   store,
		catalog: catalog.NewUseCase(store, repos.Products, repos.Barcodes, repos.Levels, logger.Nop()).WithClock(clock),
		ledger:  inventory.NewLedgerUseCase(store, repos.Products, repos.Levels, repos.Movements, logger.Nop()).WithClock(clock),
		low:     inventory.NewLowStockUseCase(repos.Levels),
	}
}

func (f *fixture) product(t *testing.T, sku string, qty, reorder int) string {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), entity.RoleAdmin, dto.CreateProductRequest{
		SKU:          sku,
		Name:         sku,
		Price:        decimal.RequireFromString("100.00"),
		InitialQty:   qty,
		ReorderLevel: &reorder,
	})
	require.NoError(t, err)
	return p.ID
}

func TestStockIn_AppendsMovement(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.product(t, "SKU-1", 5, 10)

	res, err := f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: id, Qty: 3, Reason: "Proveedor"})
	require.NoError(t, err)
	assert.Equal(t, 8, res.QtyOnHand)

	movs, err := f.ledger.ListMovements(ctx, id, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs.Items, 2)
	assert.Equal(t, 2, movs.Page.Total)
	assert.Equal(t, entity.MovementTypeIN, movs.Items[0].Type)
	assert.Equal(t, 3, movs.Items[0].Qty)
	assert.Equal(t, "Proveedor", movs.Items[0].Reason)
	assert.Equal(t, entity.ReasonInitialStock, movs.Items[1].Reason)

	rec, err := f.ledger.Reconcile(ctx, entity.RoleAdmin, id)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.Equal(t, 8, rec.TotalIn)
	assert.Zero(t, rec.TotalOut)
}

func TestStockIn_UnitCostAveragesProductCost(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.catalog.CreateProduct(ctx, entity.RoleAdmin, dto.CreateProductRequest{
		SKU:        "SKU-COST",
		Name:       "Café",
		Price:      decimal.RequireFromString("12.00"),
		Cost:       decimal.RequireFromString("6.00"),
		InitialQty: 10,
	})
	require.NoError(t, err)

	unit := decimal.RequireFromString("9.00")
	res, err := f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: p.ID, Qty: 5, UnitCost: &unit})
	require.NoError(t, err)
	assert.Equal(t, 15, res.QtyOnHand)
	assert.True(t, decimal.RequireFromString("7.00").Equal(res.Cost), "got %s", res.Cost)

	got, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.00").Equal(got.Cost))

	// Sin unit_cost el costo no cambia
	res, err = f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: p.ID, Qty: 1})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.00").Equal(res.Cost))

	neg := decimal.RequireFromString("-1")
	_, err = f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: p.ID, Qty: 1, UnitCost: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockIn_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.product(t, "SKU-1", 5, 10)

	_, err := f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: id, Qty: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: id, Qty: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: "no-existe", Qty: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.ledger.StockIn(ctx, entity.RoleCashier, dto.StockInRequest{ProductID: id, Qty: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: id, Qty: entity.MaxQty + 1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	// 5 + MaxQty desbordaría la columna INTEGER
	_, err = f.ledger.StockIn(ctx, entity.RoleAdmin, dto.StockInRequest{ProductID: id, Qty: entity.MaxQty})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	level, err := f.store.Repos().Levels.GetByProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, level.QtyOnHand)
}

func TestDecrementForOrderInTx(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.product(t, "SKU-1", 5, 10)
	now := time.Now()

	err := f.store.Run(ctx, func(repos ports.TxRepos) error {
		level, err := repos.Levels.GetByProductForUpdate(ctx, id)
		require.NoError(t, err)
		return f.ledger.DecrementForOrderInTx(ctx, repos, level, 2, "SO20240501120000000", now)
	})
	require.NoError(t, err)

	err = f.store.Run(ctx, func(repos ports.TxRepos) error {
		level, err := repos.Levels.GetByProductForUpdate(ctx, id)
		require.NoError(t, err)
		return f.ledger.DecrementForOrderInTx(ctx, repos, level, 4, "SO2", now)
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.OnHand)
	assert.Equal(t, 4, stockErr.Requested)

	movs, err := f.ledger.ListMovements(ctx, id, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs.Items, 2)
	out := movs.Items[0]
	assert.Equal(t, entity.MovementTypeOUT, out.Type)
	assert.Equal(t, 2, out.Qty)
	assert.Equal(t, "Checkout SO20240501120000000", out.Reason)

	rec, err := f.ledger.Reconcile(ctx, entity.RoleAdmin, id)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.QtyOnHand)
	assert.True(t, rec.Balanced)
}

func TestReconcile_DetectsDrift(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.product(t, "SKU-1", 5, 10)

	// escritura directa sin movimiento
	require.NoError(t, f.store.Repos().Levels.Save(ctx, &entity.InventoryLevel{ProductID: id, QtyOnHand: 7}))

	rec, err := f.ledger.Reconcile(ctx, entity.RoleAdmin, id)
	require.NoError(t, err)
	assert.False(t, rec.Balanced)
	assert.Equal(t, 7, rec.QtyOnHand)

	_, err = f.ledger.Reconcile(ctx, entity.RoleCashier, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.ledger.Reconcile(ctx, entity.RoleAdmin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_UnknownProduct(t *testing.T) {
	f := newFixture()
	_, err := f.ledger.ListMovements(context.Background(), "no-existe", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLowStockReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.product(t, "SKU-OK", 50, 10)
	f.product(t, "SKU-EDGE", 10, 10)
	f.product(t, "SKU-EMPTY", 0, 5)
	gone := f.product(t, "SKU-GONE", 1, 10)
	require.NoError(t, f.catalog.DeactivateProduct(ctx, entity.RoleAdmin, gone))

	report, err := f.low.Report(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Count)
	assert.Equal(t, "SKU-EMPTY", report.Items[0].SKU)
	assert.Equal(t, "SKU-EDGE", report.Items[1].SKU)
	assert.Equal(t, 10, report.Items[1].ReorderLevel)
}

package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func TestListOrders_NewestFirstWithItemCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(msClock())
	a := f.product(t, "SKU-A", "1.00", 100)
	b := f.product(t, "SKU-B", "2.00", 100)

	first, err := f.checkout.Checkout(ctx, entity.RoleCashier, cart("CASH", "10", line(a, 1)))
	require.NoError(t, err)
	second, err := f.checkout.Checkout(ctx, entity.RoleCashier, cart("CASH", "10", line(a, 1), line(b, 2)))
	require.NoError(t, err)

	list, err := f.orders.ListOrders(ctx, dto.PageRequest{Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Page)
	assert.Equal(t, 20, list.Page.PageSize)
	assert.Equal(t, 2, list.Page.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, second.ID, list.Items[0].ID)
	assert.Equal(t, 2, list.Items[0].ItemCount)
	assert.Equal(t, "5.00", list.Items[0].Total.StringFixed(2))
	assert.Equal(t, first.ID, list.Items[1].ID)

	page2, err := f.orders.ListOrders(ctx, dto.PageRequest{Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, first.ID, page2.Items[0].ID)

	big, err := f.orders.ListOrders(ctx, dto.PageRequest{Page: 1, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, big.Page.PageSize)
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(msClock())
	a := f.product(t, "SKU-A", "3.00", 10)

	created, err := f.checkout.Checkout(ctx, entity.RoleCashier, cart("CASH", "10", line(a, 3)))
	require.NoError(t, err)

	// los snapshots no cambian si luego se edita el catálogo
	newName := "Renombrado"
	_, err = f.catalog.UpdateProduct(ctx, entity.RoleAdmin, a, dto.UpdateProductRequest{Name: &newName})
	require.NoError(t, err)

	got, err := f.orders.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNo, got.OrderNo)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Producto SKU-A", got.Items[0].Name)
	assert.Equal(t, "9.00", got.Items[0].LineTotal.StringFixed(2))

	_, err = f.orders.GetOrder(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type stubReceipt struct {
	called bool
	err    error
}

func (s *stubReceipt) GenerateReceiptPDF(_ context.Context, order *entity.SalesOrder) ([]byte, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-" + order.OrderNo), nil
}

func TestDownloadReceiptPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(msClock())
	a := f.product(t, "SKU-A", "3.00", 10)
	order, err := f.checkout.Checkout(ctx, entity.RoleCashier, cart("CASH", "10", line(a, 1)))
	require.NoError(t, err)

	gen := &stubReceipt{}
	uc := sales.NewReceiptUseCase(f.store.Repos().Orders, gen)
	pdf, name, err := uc.DownloadReceiptPDF(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "recibo_"+order.OrderNo+".pdf", name)
	assert.Equal(t, "%PDF-"+order.OrderNo, string(pdf))

	gen.called = false
	_, _, err = uc.DownloadReceiptPDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, gen.called)

	boom := errors.New("sin fuentes")
	_, _, err = sales.NewReceiptUseCase(f.store.Repos().Orders, &stubReceipt{err: boom}).DownloadReceiptPDF(ctx, order.ID)
	assert.ErrorIs(t, err, boom)
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.BarcodeRepository           = (*BarcodeRepo)(nil)
	_ repository.InventoryLevelRepository    = (*InventoryLevelRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
	_ repository.SalesOrderRepository        = (*SalesOrderRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ handle }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	defer r.lock()()
	d := r.data()
	for _, p := range d.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	if _, ok := d.products[product.ID]; ok {
		return fmt.Errorf("insert product: %w", domain.ErrConflict)
	}
	d.products[product.ID] = *product
	d.productOrder = append(d.productOrder, product.ID)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.data().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	defer r.lock()()
	for _, p := range r.data().products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	defer r.lock()()
	d := r.data()
	current, ok := d.products[product.ID]
	if !ok {
		return nil
	}
	product.SKU = current.SKU
	product.CreatedAt = current.CreatedAt
	d.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) ListActive(_ context.Context, filter repository.ProductFilter) ([]entity.ProductStock, int, error) {
	defer r.lock()()
	d := r.data()
	kw := strings.ToLower(filter.Keyword)
	var matched []entity.ProductStock
	// más recientes primero
	for i := len(d.productOrder) - 1; i >= 0; i-- {
		p := d.products[d.productOrder[i]]
		if !p.IsActive {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(p.SKU), kw) && !strings.Contains(strings.ToLower(p.Name), kw) {
			continue
		}
		matched = append(matched, d.productStock(p))
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (d *state) productStock(p entity.Product) entity.ProductStock {
	l := d.levels[p.ID]
	return entity.ProductStock{Product: p, QtyOnHand: l.QtyOnHand, ReorderLevel: l.ReorderLevel}
}

// BarcodeRepo códigos de barras en memoria, en orden de inserción.
type BarcodeRepo struct{ handle }

func (r *BarcodeRepo) Create(_ context.Context, barcode *entity.BarcodeEntry) error {
	defer r.lock()()
	d := r.data()
	for _, b := range d.barcodes {
		if b.Format == barcode.Format && b.CodeValue == barcode.CodeValue {
			return fmt.Errorf("insert barcode: %w", domain.ErrConflict)
		}
	}
	d.barcodes = append(d.barcodes, *barcode)
	return nil
}

func (r *BarcodeRepo) ExistsByFormatAndCode(_ context.Context, format entity.BarcodeFormat, code string) (bool, error) {
	defer r.lock()()
	for _, b := range r.data().barcodes {
		if b.Format == format && b.CodeValue == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *BarcodeRepo) ClearPrimary(_ context.Context, productID string) error {
	defer r.lock()()
	d := r.data()
	for i := range d.barcodes {
		if d.barcodes[i].ProductID == productID {
			d.barcodes[i].IsPrimary = false
		}
	}
	return nil
}

func (r *BarcodeRepo) FindActiveByCode(_ context.Context, code string) (*repository.BarcodeMatch, error) {
	defer r.lock()()
	d := r.data()
	var best *entity.BarcodeEntry
	for i := range d.barcodes {
		b := &d.barcodes[i]
		if b.CodeValue != code {
			continue
		}
		if p, ok := d.products[b.ProductID]; !ok || !p.IsActive {
			continue
		}
		if best == nil || better(b, best) {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	return &repository.BarcodeMatch{Barcode: *best, Product: d.productStock(d.products[best.ProductID])}, nil
}

// better principal primero; a igualdad, el más reciente (en empate gana el insertado después).
func better(a, b *entity.BarcodeEntry) bool {
	if a.IsPrimary != b.IsPrimary {
		return a.IsPrimary
	}
	return !a.CreatedAt.Before(b.CreatedAt)
}

func (r *BarcodeRepo) ListByProduct(_ context.Context, productID string) ([]entity.BarcodeEntry, error) {
	defer r.lock()()
	var list []entity.BarcodeEntry
	for _, b := range r.data().barcodes {
		if b.ProductID == productID {
			list = append(list, b)
		}
	}
	return list, nil
}

// InventoryLevelRepo niveles de stock en memoria, uno por producto.
type InventoryLevelRepo struct{ handle }

func (r *InventoryLevelRepo) Create(_ context.Context, level *entity.InventoryLevel) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.levels[level.ProductID]; ok {
		return fmt.Errorf("insert inventory level: %w", domain.ErrConflict)
	}
	d.levels[level.ProductID] = *level
	return nil
}

func (r *InventoryLevelRepo) GetByProduct(_ context.Context, productID string) (*entity.InventoryLevel, error) {
	defer r.lock()()
	l, ok := r.data().levels[productID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// GetByProductForUpdate igual que GetByProduct: el lock de la transacción ya serializa el acceso.
func (r *InventoryLevelRepo) GetByProductForUpdate(ctx context.Context, productID string) (*entity.InventoryLevel, error) {
	return r.GetByProduct(ctx, productID)
}

func (r *InventoryLevelRepo) Save(_ context.Context, level *entity.InventoryLevel) error {
	defer r.lock()()
	d := r.data()
	current, ok := d.levels[level.ProductID]
	if !ok {
		return fmt.Errorf("update inventory level: %w", domain.ErrNotFound)
	}
	if level.QtyOnHand < 0 {
		return fmt.Errorf("update inventory level: %w: qty_on_hand negativo", domain.ErrStorage)
	}
	current.QtyOnHand = level.QtyOnHand
	current.UpdatedAt = level.UpdatedAt
	d.levels[level.ProductID] = current
	return nil
}

func (r *InventoryLevelRepo) UpdateReorderLevel(_ context.Context, productID string, reorderLevel int) error {
	defer r.lock()()
	d := r.data()
	l, ok := d.levels[productID]
	if !ok {
		return nil
	}
	l.ReorderLevel = reorderLevel
	d.levels[productID] = l
	return nil
}

func (r *InventoryLevelRepo) LockActiveStock(_ context.Context, productIDs []string) (map[string]entity.ProductStock, error) {
	defer r.lock()()
	d := r.data()
	out := make(map[string]entity.ProductStock, len(productIDs))
	for _, id := range productIDs {
		p, ok := d.products[id]
		if !ok || !p.IsActive {
			continue
		}
		if _, ok := d.levels[id]; !ok {
			continue
		}
		out[id] = d.productStock(p)
	}
	return out, nil
}

func (r *InventoryLevelRepo) ListLowStock(_ context.Context) ([]entity.ProductStock, error) {
	defer r.lock()()
	d := r.data()
	var list []entity.ProductStock
	for _, id := range d.productOrder {
		p := d.products[id]
		l, ok := d.levels[id]
		if !p.IsActive || !ok || l.QtyOnHand > l.ReorderLevel {
			continue
		}
		list = append(list, d.productStock(p))
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].QtyOnHand != list[j].QtyOnHand {
			return list[i].QtyOnHand < list[j].QtyOnHand
		}
		return list[i].SKU < list[j].SKU
	})
	return list, nil
}

// InventoryMovementRepo libro de movimientos en memoria (solo inserción).
type InventoryMovementRepo struct{ handle }

func (r *InventoryMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	defer r.lock()()
	d := r.data()
	d.movements = append(d.movements, *movement)
	return nil
}

func (r *InventoryMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]entity.InventoryMovement, int, error) {
	defer r.lock()()
	var list []entity.InventoryMovement
	ms := r.data().movements
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].ProductID == productID {
			list = append(list, ms[i])
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), len(list), nil
}

func (r *InventoryMovementRepo) SumByProduct(_ context.Context, productID string) (repository.MovementTotals, error) {
	defer r.lock()()
	var t repository.MovementTotals
	for _, m := range r.data().movements {
		if m.ProductID != productID {
			continue
		}
		switch m.Type {
		case entity.MovementTypeIN:
			t.In += m.Qty
		case entity.MovementTypeOUT:
			t.Out += m.Qty
		}
	}
	return t, nil
}

// SalesOrderRepo órdenes en memoria con sus ítems.
type SalesOrderRepo struct{ handle }

func (r *SalesOrderRepo) Create(_ context.Context, order *entity.SalesOrder) error {
	defer r.lock()()
	d := r.data()
	for _, o := range d.orders {
		if o.OrderNo == order.OrderNo {
			return fmt.Errorf("insert sales order %s: %w", order.OrderNo, domain.ErrConflict)
		}
	}
	d.orders = append(d.orders, copyOrder(*order))
	return nil
}

func (r *SalesOrderRepo) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	defer r.lock()()
	for _, o := range r.data().orders {
		if o.ID == id {
			c := copyOrder(o)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *SalesOrderRepo) List(_ context.Context, limit, offset int) ([]entity.SalesOrderSummary, int, error) {
	defer r.lock()()
	orders := r.data().orders
	list := make([]entity.SalesOrderSummary, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		list = append(list, entity.SalesOrderSummary{
			ID:            o.ID,
			OrderNo:       o.OrderNo,
			PaymentMethod: o.PaymentMethod,
			Total:         o.Total,
			ItemCount:     len(o.Items),
			CreatedAt:     o.CreatedAt,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), len(list), nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

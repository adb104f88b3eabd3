package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementación de SalesOrderRepository sobre PostgreSQL.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create inserta cabecera e ítems; debe llamarse dentro de una tx para que sean atómicos.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	header := `
		INSERT INTO sales_orders (id, order_no, payment_method, subtotal, discount, total, paid_amount, change_amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)`
	_, err := r.q.Exec(ctx, header,
		o.ID, o.OrderNo, string(o.PaymentMethod), o.Subtotal, o.Discount, o.Total, o.PaidAmount, o.ChangeAmount, o.Note, o.CreatedAt,
	)
	if err != nil {
		return mapError("insert sales order", err)
	}
	item := `
		INSERT INTO sales_order_items (id, order_id, line_no, product_id, sku, name, unit_price, qty, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, it := range o.Items {
		if _, err := r.q.Exec(ctx, item, it.ID, o.ID, i+1, it.ProductID, it.SKU, it.Name, it.UnitPrice, it.Qty, it.LineTotal); err != nil {
			return mapError("insert sales order item", err)
		}
	}
	return nil
}

func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	header := `
		SELECT id, order_no, payment_method, subtotal, discount, total, paid_amount, change_amount, COALESCE(note, ''), created_at
		FROM sales_orders
		WHERE id = $1`
	var (
		o      entity.SalesOrder
		method string
	)
	err := r.q.QueryRow(ctx, header, id).Scan(
		&o.ID, &o.OrderNo, &method, &o.Subtotal, &o.Discount, &o.Total, &o.PaidAmount, &o.ChangeAmount, &o.Note, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get sales order", err)
	}
	o.PaymentMethod = entity.PaymentMethod(method)

	items := `
		SELECT id, order_id, product_id, sku, name, unit_price, qty, line_total
		FROM sales_order_items
		WHERE order_id = $1
		ORDER BY line_no`
	rows, err := r.q.Query(ctx, items, id)
	if err != nil {
		return nil, mapError("get sales order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SalesOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SKU, &it.Name, &it.UnitPrice, &it.Qty, &it.LineTotal); err != nil {
			return nil, mapError("scan sales order item", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get sales order items", err)
	}
	return &o, nil
}

// List resumen de órdenes, más recientes primero.
func (r *SalesOrderRepo) List(ctx context.Context, limit, offset int) ([]entity.SalesOrderSummary, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders`).Scan(&total); err != nil {
		return nil, 0, mapError("count sales orders", err)
	}
	query := `
		SELECT o.id, o.order_no, o.payment_method, o.total, o.created_at, COUNT(i.id)
		FROM sales_orders o
		LEFT JOIN sales_order_items i ON i.order_id = o.id
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.order_no DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, mapError("list sales orders", err)
	}
	defer rows.Close()
	list := make([]entity.SalesOrderSummary, 0, limit)
	for rows.Next() {
		var (
			s      entity.SalesOrderSummary
			method string
		)
		if err := rows.Scan(&s.ID, &s.OrderNo, &method, &s.Total, &s.CreatedAt, &s.ItemCount); err != nil {
			return nil, 0, mapError("scan sales order", err)
		}
		s.PaymentMethod = entity.PaymentMethod(method)
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list sales orders", err)
	}
	return list, total, nil
}

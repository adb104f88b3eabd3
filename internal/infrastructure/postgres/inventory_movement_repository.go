package postgres

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación de InventoryMovementRepository (libro de solo inserción).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (id, product_id, type, qty, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProductID, m.Type, m.Qty, m.Reason, m.CreatedAt)
	return mapError("insert inventory movement", err)
}

// ListByProduct movimientos del producto, más recientes primero, con el total para paginar.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]entity.InventoryMovement, int, error) {
	list := []entity.InventoryMovement{}
	if !validID(productID) {
		return list, 0, nil
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_movements WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, mapError("count inventory movements", err)
	}
	query := `
		SELECT id, product_id, type, qty, reason, created_at
		FROM inventory_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, mapError("list inventory movements", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Qty, &m.Reason, &m.CreatedAt); err != nil {
			return nil, 0, mapError("scan inventory movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list inventory movements", err)
	}
	return list, total, nil
}

// SumByProduct totales IN/OUT del libro para conciliar contra qty_on_hand.
func (r *InventoryMovementRepo) SumByProduct(ctx context.Context, productID string) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	if !validID(productID) {
		return t, nil
	}
	query := `
		SELECT
			COALESCE(SUM(qty) FILTER (WHERE type = 'IN'), 0),
			COALESCE(SUM(qty) FILTER (WHERE type = 'OUT'), 0)
		FROM inventory_movements
		WHERE product_id = $1`
	if err := r.q.QueryRow(ctx, query, productID).Scan(&t.In, &t.Out); err != nil {
		return t, mapError("sum inventory movements", err)
	}
	return t, nil
}

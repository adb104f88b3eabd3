package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

func (r *InventoryLevelRepo) Create(ctx context.Context, level *entity.InventoryLevel) error {
	query := `
		INSERT INTO inventory_levels (id, product_id, qty_on_hand, reorder_level, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, level.ID, level.ProductID, level.QtyOnHand, level.ReorderLevel, level.UpdatedAt)
	return mapError("insert inventory level", err)
}

func (r *InventoryLevelRepo) GetByProduct(ctx context.Context, productID string) (*entity.InventoryLevel, error) {
	return r.get(ctx, productID, "")
}

// GetByProductForUpdate igual que GetByProduct pero bloquea la fila hasta el fin de la tx.
func (r *InventoryLevelRepo) GetByProductForUpdate(ctx context.Context, productID string) (*entity.InventoryLevel, error) {
	return r.get(ctx, productID, " FOR UPDATE")
}

func (r *InventoryLevelRepo) get(ctx context.Context, productID, lock string) (*entity.InventoryLevel, error) {
	if !validID(productID) {
		return nil, nil
	}
	query := `
		SELECT id, product_id, qty_on_hand, reorder_level, updated_at
		FROM inventory_levels
		WHERE product_id = $1` + lock
	var l entity.InventoryLevel
	err := r.q.QueryRow(ctx, query, productID).Scan(&l.ID, &l.ProductID, &l.QtyOnHand, &l.ReorderLevel, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get inventory level", err)
	}
	return &l, nil
}

// Save escribe la cantidad actual. La columna tiene CHECK (qty_on_hand >= 0).
func (r *InventoryLevelRepo) Save(ctx context.Context, level *entity.InventoryLevel) error {
	query := `UPDATE inventory_levels SET qty_on_hand = $2, updated_at = $3 WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query, level.ProductID, level.QtyOnHand, level.UpdatedAt)
	if err != nil {
		return mapError("save inventory level", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save inventory level %s: %w: fila inexistente", level.ProductID, domain.ErrStorage)
	}
	return nil
}

func (r *InventoryLevelRepo) UpdateReorderLevel(ctx context.Context, productID string, reorderLevel int) error {
	_, err := r.q.Exec(ctx, `UPDATE inventory_levels SET reorder_level = $2 WHERE product_id = $1`, productID, reorderLevel)
	return mapError("update reorder level", err)
}

// LockActiveStock bloquea en orden de product_id las filas de nivel de los productos activos pedidos.
func (r *InventoryLevelRepo) LockActiveStock(ctx context.Context, productIDs []string) (map[string]entity.ProductStock, error) {
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if validID(id) {
			ids = append(ids, id)
		}
	}
	out := make(map[string]entity.ProductStock, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT ` + productColumns + `, l.qty_on_hand, l.reorder_level
		FROM inventory_levels l
		JOIN products p ON p.id = l.product_id
		WHERE p.is_active AND l.product_id = ANY($1::uuid[])
		ORDER BY l.product_id
		FOR UPDATE OF l`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError("lock stock", err)
	}
	defer rows.Close()
	for rows.Next() {
		ps, err := scanProductStock(rows)
		if err != nil {
			return nil, mapError("scan stock", err)
		}
		out[ps.ID] = *ps
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("lock stock", err)
	}
	return out, nil
}

func (r *InventoryLevelRepo) ListLowStock(ctx context.Context) ([]entity.ProductStock, error) {
	query := `
		SELECT ` + productColumns + `, l.qty_on_hand, l.reorder_level
		FROM inventory_levels l
		JOIN products p ON p.id = l.product_id
		WHERE p.is_active AND l.qty_on_hand <= l.reorder_level
		ORDER BY l.qty_on_hand ASC, p.sku ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, mapError("list low stock", err)
	}
	defer rows.Close()
	var list []entity.ProductStock
	for rows.Next() {
		ps, err := scanProductStock(rows)
		if err != nil {
			return nil, mapError("scan low stock", err)
		}
		list = append(list, *ps)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list low stock", err)
	}
	return list, nil
}

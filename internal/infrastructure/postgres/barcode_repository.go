package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.BarcodeRepository = (*BarcodeRepo)(nil)

// BarcodeRepo implementación de BarcodeRepository sobre PostgreSQL.
type BarcodeRepo struct {
	q Querier
}

// NewBarcodeRepository construye el adaptador. Acepta pool o tx (Querier).
func NewBarcodeRepository(q Querier) *BarcodeRepo {
	return &BarcodeRepo{q: q}
}

// Create inserta el código. (format, code_value) repetido → domain.ErrConflict vía mapError.
func (r *BarcodeRepo) Create(ctx context.Context, b *entity.BarcodeEntry) error {
	query := `
		INSERT INTO barcode_entries (id, product_id, format, code_value, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, b.ID, b.ProductID, string(b.Format), b.CodeValue, b.IsPrimary, b.CreatedAt)
	return mapError("insert barcode", err)
}

func (r *BarcodeRepo) ExistsByFormatAndCode(ctx context.Context, format entity.BarcodeFormat, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM barcode_entries WHERE format = $1 AND code_value = $2)`,
		string(format), code,
	).Scan(&exists)
	if err != nil {
		return false, mapError("check barcode", err)
	}
	return exists, nil
}

func (r *BarcodeRepo) ClearPrimary(ctx context.Context, productID string) error {
	_, err := r.q.Exec(ctx, `UPDATE barcode_entries SET is_primary = FALSE WHERE product_id = $1 AND is_primary`, productID)
	return mapError("clear primary barcode", err)
}

// FindActiveByCode busca el valor en cualquier formato; prefiere el principal y luego el más reciente.
func (r *BarcodeRepo) FindActiveByCode(ctx context.Context, code string) (*repository.BarcodeMatch, error) {
	query := `
		SELECT b.id, b.product_id, b.format, b.code_value, b.is_primary, b.created_at,
		       ` + productColumns + `, l.qty_on_hand, l.reorder_level
		FROM barcode_entries b
		JOIN products p ON p.id = b.product_id
		JOIN inventory_levels l ON l.product_id = p.id
		WHERE b.code_value = $1 AND p.is_active
		ORDER BY b.is_primary DESC, b.created_at DESC
		LIMIT 1`
	var (
		m      repository.BarcodeMatch
		format string
		ps     = &m.Product
	)
	err := r.q.QueryRow(ctx, query, code).Scan(
		&m.Barcode.ID, &m.Barcode.ProductID, &format, &m.Barcode.CodeValue, &m.Barcode.IsPrimary, &m.Barcode.CreatedAt,
		&ps.ID, &ps.SKU, &ps.Name, &ps.Category, &ps.Price, &ps.Cost, &ps.IsActive, &ps.CreatedAt, &ps.UpdatedAt,
		&ps.QtyOnHand, &ps.ReorderLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("find barcode", err)
	}
	m.Barcode.Format = entity.BarcodeFormat(format)
	return &m, nil
}

func (r *BarcodeRepo) ListByProduct(ctx context.Context, productID string) ([]entity.BarcodeEntry, error) {
	list := []entity.BarcodeEntry{}
	if !validID(productID) {
		return list, nil
	}
	query := `
		SELECT id, product_id, format, code_value, is_primary, created_at
		FROM barcode_entries
		WHERE product_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, mapError("list barcodes", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			b      entity.BarcodeEntry
			format string
		)
		if err := rows.Scan(&b.ID, &b.ProductID, &format, &b.CodeValue, &b.IsPrimary, &b.CreatedAt); err != nil {
			return nil, mapError("scan barcode", err)
		}
		b.Format = entity.BarcodeFormat(format)
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list barcodes", err)
	}
	return list, nil
}

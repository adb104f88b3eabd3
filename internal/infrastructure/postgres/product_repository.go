package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// productColumns columnas de products en el orden que espera scanProduct (alias p).
const productColumns = `p.id, p.sku, p.name, COALESCE(p.category, ''), p.price, p.cost, p.is_active, p.created_at, p.updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Un SKU repetido devuelve domain.ErrDuplicateSKU.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, category, price, cost, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Category,
		product.Price, product.Cost, product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID (activo o no).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU exacto (sensible a mayúsculas).
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.sku = $1`, sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product by sku", err)
	}
	return p, nil
}

// Update actualiza datos comerciales y el flag activo. El SKU no se toca.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = NULLIF($3, ''), price = $4, cost = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Category, product.Price, product.Cost, product.IsActive, product.UpdatedAt,
	)
	return mapError("update product", err)
}

// ListActive lista productos activos con su stock, más recientes primero.
func (r *ProductRepo) ListActive(ctx context.Context, filter repository.ProductFilter) ([]entity.ProductStock, int, error) {
	where := `WHERE p.is_active`
	args := []any{}
	if filter.Keyword != "" {
		where += ` AND (p.sku ILIKE $1 ESCAPE '\' OR p.name ILIKE $1 ESCAPE '\')`
		args = append(args, likePattern(filter.Keyword))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products p `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count products", err)
	}

	query := `
		SELECT ` + productColumns + `, COALESCE(l.qty_on_hand, 0), COALESCE(l.reorder_level, 0)
		FROM products p
		LEFT JOIN inventory_levels l ON l.product_id = p.id
		` + where + `
		ORDER BY p.created_at DESC, p.id
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list products", err)
	}
	defer rows.Close()
	list := make([]entity.ProductStock, 0, filter.Limit)
	for rows.Next() {
		ps, err := scanProductStock(rows)
		if err != nil {
			return nil, 0, mapError("scan product", err)
		}
		list = append(list, *ps)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list products", err)
	}
	return list, total, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.Cost, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProductStock(row pgx.Row) (*entity.ProductStock, error) {
	var ps entity.ProductStock
	err := row.Scan(&ps.ID, &ps.SKU, &ps.Name, &ps.Category, &ps.Price, &ps.Cost, &ps.IsActive, &ps.CreatedAt, &ps.UpdatedAt,
		&ps.QtyOnHand, &ps.ReorderLevel)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// validID evita mandar a la base ids que no son UUID (la columna los rechazaría con 22P02).
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// likePattern "%keyword%" escapando los comodines de LIKE.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

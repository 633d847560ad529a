package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, brand_id, category_id, unit, description, price, is_active, reorder_level, reorder_qty, remaining_stock, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto nuevo. RemainingStock inicia en 0.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.SKU, product.Name, nullable(product.BrandID), nullable(product.CategoryID),
		product.Unit, product.Description, product.Price, product.IsActive,
		product.ReorderLevel, product.ReorderQty, product.RemainingStock,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.one(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	return r.one(`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// Update actualiza los datos de catálogo. No toca remaining_stock: eso es del
// paso de recálculo del motor de movimientos.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, brand_id = $3, category_id = $4, unit = $5, description = $6,
		    price = $7, is_active = $8, reorder_level = $9, reorder_qty = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, nullable(product.BrandID), nullable(product.CategoryID),
		product.Unit, product.Description, product.Price, product.IsActive,
		product.ReorderLevel, product.ReorderQty, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateRemainingStock escribe el agregado materializado (solo el motor de movimientos).
func (r *ProductRepo) UpdateRemainingStock(productID string, qty int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET remaining_stock = $2, updated_at = now() WHERE id = $1`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("update remaining stock: %w", err)
	}
	return nil
}

// List lista productos con paginación.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	return r.many(
		`SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
}

// ListBelowReorder retorna productos activos con stock en o bajo su umbral.
func (r *ProductRepo) ListBelowReorder() ([]*entity.Product, error) {
	return r.many(
		`SELECT ` + productColumns + ` FROM products
		 WHERE is_active AND remaining_stock <= reorder_level
		 ORDER BY remaining_stock - reorder_level ASC, sku`,
	)
}

func (r *ProductRepo) one(query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	var brandID, categoryID *string
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&p.ID, &p.SKU, &p.Name, &brandID, &categoryID, &p.Unit, &p.Description,
		&p.Price, &p.IsActive, &p.ReorderLevel, &p.ReorderQty, &p.RemainingStock,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.BrandID = deref(brandID)
	p.CategoryID = deref(categoryID)
	return &p, nil
}

func (r *ProductRepo) many(query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		var brandID, categoryID *string
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &brandID, &categoryID, &p.Unit, &p.Description,
			&p.Price, &p.IsActive, &p.ReorderLevel, &p.ReorderQty, &p.RemainingStock,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.BrandID = deref(brandID)
		p.CategoryID = deref(categoryID)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// nullable convierte cadena vacía en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, barcode, name, description, price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Barcode, product.Name, product.Description,
		product.Price, product.CreatedAt, product.UpdatedAt,
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
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// Update actualiza nombre, descripción y precio. El código de barras no se toca.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	if !validID(product.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, product.ID, product.Name, product.Description, product.Price, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos por nombre con búsqueda opcional por nombre o código de barras.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR name ILIKE $2 OR barcode ILIKE $2)
		ORDER BY name, barcode
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Search, likePattern(f.Search), limitOrAll(f.Limit), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

// ListSellable productos con stock mayor que cero.
func (r *ProductRepo) ListSellable(ctx context.Context) ([]*entity.Product, error) {
	query := `
		SELECT p.id, p.barcode, p.name, p.description, p.price, p.created_at, p.updated_at
		FROM products p
		JOIN stock_entries s ON s.product_id = p.id
		WHERE s.quantity > 0
		ORDER BY p.name, p.barcode`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sellable products: %w", err)
	}
	return collectProducts(rows)
}

// Delete elimina el producto; su registro de stock cae por ON DELETE CASCADE.
// Los ítems de venta lo protegen con ON DELETE RESTRICT.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

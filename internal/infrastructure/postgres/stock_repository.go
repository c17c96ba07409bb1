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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockEntry, error) {
	query := `SELECT product_id, quantity, updated_at FROM stock_entries WHERE product_id = $1`
	return r.get(ctx, query, productID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockEntry, error) {
	query := `SELECT product_id, quantity, updated_at FROM stock_entries WHERE product_id = $1 FOR UPDATE`
	return r.get(ctx, query, productID)
}

func (r *StockRepo) get(ctx context.Context, query, productID string) (*entity.StockEntry, error) {
	if !validID(productID) {
		return nil, nil
	}
	var s entity.StockEntry
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Create registra el stock inicial de un producto.
func (r *StockRepo) Create(ctx context.Context, entry *entity.StockEntry) error {
	if !validID(entry.ProductID) {
		return domain.ErrNotFound
	}
	query := `
		INSERT INTO stock_entries (product_id, quantity, updated_at)
		VALUES ($1, $2, $3)`
	_, err := r.q.Exec(ctx, query, entry.ProductID, entry.Quantity, entry.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert stock entry: %w", err)
	}
	return nil
}

// SetQuantity fija la cantidad disponible (ajuste manual del administrador).
func (r *StockRepo) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	if !validID(productID) {
		return domain.ErrNotFound
	}
	query := `UPDATE stock_entries SET quantity = $2, updated_at = now() WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("set stock quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Decrement descuenta n unidades solo si alcanzan. La condición va en el propio UPDATE,
// así dos transacciones concurrentes no pueden dejar la cantidad negativa.
func (r *StockRepo) Decrement(ctx context.Context, productID string, n int) (int, error) {
	if !validID(productID) {
		return 0, domain.ErrNotFound
	}
	query := `
		UPDATE stock_entries SET quantity = quantity - $2, updated_at = now()
		WHERE product_id = $1 AND quantity >= $2
		RETURNING quantity`
	var remaining int
	err := r.q.QueryRow(ctx, query, productID, n).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	entry, err := r.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, domain.ErrNotFound
	}
	return entry.Quantity, domain.ErrInsufficientStock
}

// List lista el stock con nombre y código de barras del producto.
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.StockEntryView, error) {
	query := `
		SELECT s.product_id, s.quantity, s.updated_at, p.name, p.barcode
		FROM stock_entries s
		JOIN products p ON p.id = s.product_id
		WHERE ($1 = '' OR p.name ILIKE $2 OR p.barcode ILIKE $2)
		ORDER BY p.name, p.barcode
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Search, likePattern(f.Search), limitOrAll(f.Limit), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockEntryView
	for rows.Next() {
		var v entity.StockEntryView
		if err := rows.Scan(&v.ProductID, &v.Quantity, &v.UpdatedAt, &v.ProductName, &v.Barcode); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

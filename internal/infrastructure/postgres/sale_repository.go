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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const confirmationConstraint = "uq_sales_confirmation"

const saleViewSelect = `
	SELECT s.id, s.operator_id, s.created_at, s.payment_method, s.confirmation_id,
	       COALESCE(u.username, '')
	FROM sales s
	LEFT JOIN users u ON u.id = s.operator_id`

const lineViewSelect = `
	SELECT li.id, li.sale_id, li.product_id, li.quantity, li.unit_price, p.name, p.barcode
	FROM line_items li
	JOIN products p ON p.id = li.product_id`

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, operator_id, created_at, payment_method, confirmation_id)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.OperatorID, sale.CreatedAt, string(sale.PaymentMethod), sale.ConfirmationID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == confirmationConstraint {
				return fmt.Errorf("%w: confirmation_id", domain.ErrDuplicate)
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateLineItem inserta un ítem; position conserva el orden de alta.
func (r *SaleRepo) CreateLineItem(ctx context.Context, item *entity.LineItem) error {
	query := `
		INSERT INTO line_items (id, sale_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert line item: %w", err)
	}
	return nil
}

// GetByID obtiene la venta con sus ítems.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.SaleView, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, saleViewSelect+` WHERE s.id = $1`, id)
}

// GetByConfirmationID obtiene la venta creada con esa marca de confirmación.
func (r *SaleRepo) GetByConfirmationID(ctx context.Context, confirmationID string) (*entity.SaleView, error) {
	return r.getOne(ctx, saleViewSelect+` WHERE s.confirmation_id = $1`, confirmationID)
}

func (r *SaleRepo) getOne(ctx context.Context, query string, arg string) (*entity.SaleView, error) {
	v, err := scanSaleView(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.attachLines(ctx, []*entity.SaleView{v}); err != nil {
		return nil, err
	}
	return v, nil
}

// List ventas más recientes primero, con filtros de período, operador y forma de pago.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.SaleView, error) {
	query := saleViewSelect + `
		WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR s.created_at <  $2)
		  AND ($3 = '' OR s.operator_id::text = $3)
		  AND ($4 = '' OR s.payment_method = $4)
		ORDER BY s.created_at DESC, s.id
		LIMIT $5 OFFSET $6`
	var from, to any
	if f.From != nil {
		from = *f.From
	}
	if f.To != nil {
		to = *f.To
	}
	rows, err := r.q.Query(ctx, query, from, to, f.OperatorID, string(f.PaymentMethod), limitOrAll(f.Limit), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.SaleView
	for rows.Next() {
		v, err := scanSaleView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga los ítems de todas las ventas en una sola consulta.
func (r *SaleRepo) attachLines(ctx context.Context, views []*entity.SaleView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]string, len(views))
	byID := make(map[string]*entity.SaleView, len(views))
	for i, v := range views {
		ids[i] = v.ID
		byID[v.ID] = v
	}
	rows, err := r.q.Query(ctx, lineViewSelect+` WHERE li.sale_id::text = ANY($1) ORDER BY li.position`, ids)
	if err != nil {
		return fmt.Errorf("list line items of sales: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lv entity.LineItemView
		if err := rows.Scan(&lv.ID, &lv.SaleID, &lv.ProductID, &lv.Quantity, &lv.UnitPrice, &lv.ProductName, &lv.Barcode); err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		v := byID[lv.SaleID]
		if v == nil {
			continue
		}
		item := lv.LineItem
		v.Items = append(v.Items, &item)
		v.Lines = append(v.Lines, lv)
	}
	return rows.Err()
}

// ListLineItems ítems de todas las ventas, buscando en nombre de producto, id de venta o usuario.
func (r *SaleRepo) ListLineItems(ctx context.Context, f repository.LineItemFilter) ([]*entity.LineItemRow, error) {
	query := `
		SELECT li.id, li.sale_id, li.product_id, li.quantity, li.unit_price, p.name, p.barcode,
		       s.created_at, s.payment_method, COALESCE(u.username, '')
		FROM line_items li
		JOIN sales s    ON s.id = li.sale_id
		JOIN products p ON p.id = li.product_id
		LEFT JOIN users u ON u.id = s.operator_id
		WHERE ($1 = '' OR p.name ILIKE $2 OR s.id::text ILIKE $2 OR u.username ILIKE $2)
		ORDER BY s.created_at DESC, s.id, li.position
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Search, likePattern(f.Search), limitOrAll(f.Limit), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var list []*entity.LineItemRow
	for rows.Next() {
		var (
			row    entity.LineItemRow
			method string
		)
		if err := rows.Scan(
			&row.ID, &row.SaleID, &row.ProductID, &row.Quantity, &row.UnitPrice, &row.ProductName, &row.Barcode,
			&row.SaleDate, &method, &row.OperatorUsername,
		); err != nil {
			return nil, fmt.Errorf("scan line item row: %w", err)
		}
		row.PaymentMethod = entity.PaymentMethod(method)
		list = append(list, &row)
	}
	return list, rows.Err()
}

// CountLineItemsByProduct cantidad de ítems que referencian el producto.
func (r *SaleRepo) CountLineItemsByProduct(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM line_items WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count line items by product: %w", err)
	}
	return n, nil
}

func scanSaleView(row pgx.Row) (*entity.SaleView, error) {
	var (
		v      entity.SaleView
		method string
	)
	if err := row.Scan(&v.ID, &v.OperatorID, &v.CreatedAt, &method, &v.ConfirmationID, &v.OperatorUsername); err != nil {
		return nil, err
	}
	v.PaymentMethod = entity.PaymentMethod(method)
	return &v, nil
}

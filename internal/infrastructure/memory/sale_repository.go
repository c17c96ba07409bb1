package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas e ítems en memoria. Igual que en postgres, no hay Update ni Delete.
type SaleRepo struct {
	g guard
}

// NewSaleRepository construye el repositorio sobre el Store.
func NewSaleRepository(s *Store) *SaleRepo {
	return &SaleRepo{g: guard{s: s}}
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.g.lock()()
	s := r.g.s
	if _, ok := s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	if sale.ConfirmationID != "" {
		for _, other := range s.sales {
			if other.ConfirmationID == sale.ConfirmationID {
				return domain.ErrDuplicate
			}
		}
	}
	c := *sale
	c.Items = nil
	s.sales[sale.ID] = &c
	s.touch(sale.ID)
	return nil
}

func (r *SaleRepo) CreateLineItem(_ context.Context, item *entity.LineItem) error {
	defer r.g.lock()()
	s := r.g.s
	if _, ok := s.sales[item.SaleID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.products[item.ProductID]; !ok {
		return domain.ErrNotFound
	}
	if item.Quantity < 1 {
		return domain.ErrInvalidInput
	}
	c := *item
	s.items[item.ID] = &c
	s.touch(item.ID)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.SaleView, error) {
	defer r.g.lock()()
	sale, ok := r.g.s.sales[id]
	if !ok {
		return nil, nil
	}
	return r.view(sale), nil
}

func (r *SaleRepo) GetByConfirmationID(_ context.Context, confirmationID string) (*entity.SaleView, error) {
	defer r.g.lock()()
	for _, sale := range r.g.s.sales {
		if sale.ConfirmationID == confirmationID {
			return r.view(sale), nil
		}
	}
	return nil, nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.SaleView, error) {
	defer r.g.lock()()
	var sales []*entity.Sale
	for _, sale := range r.g.s.sales {
		if f.From != nil && sale.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !sale.CreatedAt.Before(*f.To) {
			continue
		}
		if f.OperatorID != "" && sale.OperatorID != f.OperatorID {
			continue
		}
		if f.PaymentMethod != "" && sale.PaymentMethod != f.PaymentMethod {
			continue
		}
		sales = append(sales, sale)
	}
	r.sortNewestFirst(sales)
	lo, hi := page(len(sales), f.Limit, f.Offset)
	out := make([]*entity.SaleView, 0, hi-lo)
	for _, sale := range sales[lo:hi] {
		out = append(out, r.view(sale))
	}
	return out, nil
}

func (r *SaleRepo) ListLineItems(_ context.Context, f repository.LineItemFilter) ([]*entity.LineItemRow, error) {
	defer r.g.lock()()
	s := r.g.s
	var sales []*entity.Sale
	for _, sale := range s.sales {
		sales = append(sales, sale)
	}
	r.sortNewestFirst(sales)
	var out []*entity.LineItemRow
	for _, sale := range sales {
		operator := r.username(sale.OperatorID)
		for _, it := range s.itemsOfSale(sale.ID) {
			view := r.lineView(it)
			if f.Search != "" && !containsFold(view.ProductName, f.Search) &&
				!containsFold(sale.ID, f.Search) && !containsFold(operator, f.Search) {
				continue
			}
			out = append(out, &entity.LineItemRow{
				LineItemView:     view,
				SaleDate:         sale.CreatedAt,
				PaymentMethod:    sale.PaymentMethod,
				OperatorUsername: operator,
			})
		}
	}
	lo, hi := page(len(out), f.Limit, f.Offset)
	return out[lo:hi], nil
}

func (r *SaleRepo) CountLineItemsByProduct(_ context.Context, productID string) (int, error) {
	defer r.g.lock()()
	n := 0
	for _, it := range r.g.s.items {
		if it.ProductID == productID {
			n++
		}
	}
	return n, nil
}

// sortNewestFirst ventas más recientes primero; empate por orden de inserción.
func (r *SaleRepo) sortNewestFirst(sales []*entity.Sale) {
	seq := r.g.s.seq
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].CreatedAt.After(sales[j].CreatedAt)
		}
		return seq[sales[i].ID] > seq[sales[j].ID]
	})
}

func (r *SaleRepo) view(sale *entity.Sale) *entity.SaleView {
	v := &entity.SaleView{Sale: *sale, OperatorUsername: r.username(sale.OperatorID)}
	v.Items = nil
	for _, it := range r.g.s.itemsOfSale(sale.ID) {
		v.Lines = append(v.Lines, r.lineView(it))
		v.Items = append(v.Items, it)
	}
	return v
}

func (r *SaleRepo) lineView(it *entity.LineItem) entity.LineItemView {
	v := entity.LineItemView{LineItem: *it}
	if p, ok := r.g.s.products[it.ProductID]; ok {
		v.ProductName = p.Name
		v.Barcode = p.Barcode
	}
	return v
}

func (r *SaleRepo) username(id string) string {
	if u, ok := r.g.s.users[id]; ok {
		return u.Username
	}
	return ""
}

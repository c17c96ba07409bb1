package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo registro de stock en memoria.
type StockRepo struct {
	g guard
}

// NewStockRepository construye el repositorio sobre el Store.
func NewStockRepository(s *Store) *StockRepo {
	return &StockRepo{g: guard{s: s}}
}

func (r *StockRepo) Get(_ context.Context, productID string) (*entity.StockEntry, error) {
	defer r.g.lock()()
	e, ok := r.g.s.stock[productID]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

// GetForUpdate dentro de una tx el mutex del Store ya está tomado; equivale a Get.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockEntry, error) {
	return r.Get(ctx, productID)
}

func (r *StockRepo) Create(_ context.Context, e *entity.StockEntry) error {
	defer r.g.lock()()
	s := r.g.s
	if _, ok := s.products[e.ProductID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.stock[e.ProductID]; ok {
		return domain.ErrDuplicate
	}
	if e.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	c := *e
	c.UpdatedAt = time.Now()
	s.stock[e.ProductID] = &c
	e.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *StockRepo) SetQuantity(_ context.Context, productID string, quantity int) error {
	defer r.g.lock()()
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	e, ok := r.g.s.stock[productID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Quantity = quantity
	e.UpdatedAt = time.Now()
	return nil
}

func (r *StockRepo) Decrement(_ context.Context, productID string, n int) (int, error) {
	defer r.g.lock()()
	e, ok := r.g.s.stock[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if e.Quantity < n {
		return e.Quantity, domain.ErrInsufficientStock
	}
	e.Quantity -= n
	e.UpdatedAt = time.Now()
	return e.Quantity, nil
}

func (r *StockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.StockEntryView, error) {
	defer r.g.lock()()
	var out []*entity.StockEntryView
	for id, e := range r.g.s.stock {
		p := r.g.s.products[id]
		if p == nil {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Barcode, f.Search) {
			continue
		}
		out = append(out, &entity.StockEntryView{StockEntry: *e, ProductName: p.Name, Barcode: p.Barcode})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].Barcode < out[j].Barcode
	})
	lo, hi := page(len(out), f.Limit, f.Offset)
	return out[lo:hi], nil
}

package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	g guard
}

// NewProductRepository construye el repositorio sobre el Store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{g: guard{s: s}}
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.g.lock()()
	s := r.g.s
	if _, ok := s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range s.products {
		if other.Barcode == p.Barcode {
			return domain.ErrDuplicate
		}
	}
	c := *p
	s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.g.lock()()
	p, ok := r.g.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	defer r.g.lock()()
	for _, p := range r.g.s.products {
		if p.Barcode == barcode {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.g.lock()()
	cur, ok := r.g.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	c := *p
	c.Barcode = cur.Barcode
	c.CreatedAt = cur.CreatedAt
	r.g.s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	defer r.g.lock()()
	var out []*entity.Product
	for _, p := range r.g.s.products {
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Barcode, f.Search) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sortProducts(out)
	lo, hi := page(len(out), f.Limit, f.Offset)
	return out[lo:hi], nil
}

func (r *ProductRepo) ListSellable(_ context.Context) ([]*entity.Product, error) {
	defer r.g.lock()()
	var out []*entity.Product
	for id, st := range r.g.s.stock {
		if st.Quantity <= 0 {
			continue
		}
		if p, ok := r.g.s.products[id]; ok {
			c := *p
			out = append(out, &c)
		}
	}
	sortProducts(out)
	return out, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	defer r.g.lock()()
	s := r.g.s
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, it := range s.items {
		if it.ProductID == id {
			return domain.ErrProductInUse
		}
	}
	delete(s.products, id)
	delete(s.stock, id)
	return nil
}

func sortProducts(ps []*entity.Product) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].Barcode < ps[j].Barcode
	})
}

// Package memory driver de almacenamiento en proceso (STORAGE_DRIVER=memory).
// Implementa los mismos puertos que postgres; se usa en desarrollo local y en los tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
// Un único mutex serializa las escrituras; las transacciones lo mantienen tomado de punta a punta.
type Store struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	stock    map[string]*entity.StockEntry
	sales    map[string]*entity.Sale
	items    map[string]*entity.LineItem
	users    map[string]*entity.User
	seq      map[string]int64 // orden de inserción de ventas e ítems
	next     int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		stock:    make(map[string]*entity.StockEntry),
		sales:    make(map[string]*entity.Sale),
		items:    make(map[string]*entity.LineItem),
		users:    make(map[string]*entity.User),
		seq:      make(map[string]int64),
	}
}

// state copia profunda de los mapas, para deshacer una transacción fallida.
type state struct {
	products map[string]*entity.Product
	stock    map[string]*entity.StockEntry
	sales    map[string]*entity.Sale
	items    map[string]*entity.LineItem
	users    map[string]*entity.User
	seq      map[string]int64
	next     int64
}

func (s *Store) snapshot() state {
	st := state{
		products: make(map[string]*entity.Product, len(s.products)),
		stock:    make(map[string]*entity.StockEntry, len(s.stock)),
		sales:    make(map[string]*entity.Sale, len(s.sales)),
		items:    make(map[string]*entity.LineItem, len(s.items)),
		users:    make(map[string]*entity.User, len(s.users)),
		seq:      make(map[string]int64, len(s.seq)),
		next:     s.next,
	}
	for k, v := range s.seq {
		st.seq[k] = v
	}
	for k, v := range s.products {
		c := *v
		st.products[k] = &c
	}
	for k, v := range s.stock {
		c := *v
		st.stock[k] = &c
	}
	for k, v := range s.sales {
		c := *v
		st.sales[k] = &c
	}
	for k, v := range s.items {
		c := *v
		st.items[k] = &c
	}
	for k, v := range s.users {
		c := *v
		st.users[k] = &c
	}
	return st
}

func (s *Store) restore(st state) {
	s.products = st.products
	s.stock = st.stock
	s.sales = st.sales
	s.items = st.items
	s.users = st.users
	s.seq = st.seq
	s.next = st.next
}

// touch registra el orden de inserción de id.
func (s *Store) touch(id string) {
	s.next++
	s.seq[id] = s.next
}

// guard toma el mutex salvo que el repositorio ya corra dentro de una transacción.
type guard struct {
	s    *Store
	inTx bool
}

func (g guard) lock() func() {
	if g.inTx {
		return func() {}
	}
	g.s.mu.Lock()
	return g.s.mu.Unlock
}

// page aplica limit/offset sobre n elementos; limit <= 0 devuelve todo desde offset.
func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *Store) itemsOfSale(saleID string) []*entity.LineItem {
	var out []*entity.LineItem
	for _, it := range s.items {
		if it.SaleID == saleID {
			c := *it
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out
}

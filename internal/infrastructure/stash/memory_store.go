package stash

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.PendingSaleRepository = (*MemoryStore)(nil)

type memEntry struct {
	pending   entity.PendingSale
	expiresAt time.Time
}

// MemoryStore almacén en proceso (una sola réplica). Las entradas vencidas se descartan al
// leerlas y en cada escritura se barren las de todas las claves.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemoryStore crea el almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), now: time.Now}
}

// WithClock reemplaza el reloj (tests de vencimiento).
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Save(_ context.Context, key string, p *entity.PendingSale, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.entries[key] = memEntry{pending: clonePending(p), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) SaveIfAbsent(_ context.Context, key string, p *entity.PendingSale, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = memEntry{pending: clonePending(p), expiresAt: s.now().Add(ttl)}
	return true, nil
}

// Len cantidad de entradas guardadas, incluidas las vencidas que todavía no se barrieron.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep elimina las entradas vencidas. Requiere el mutex tomado.
func (s *MemoryStore) sweep() {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*entity.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key, false), nil
}

func (s *MemoryStore) Take(_ context.Context, key string) (*entity.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key, true), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) lookup(key string, remove bool) *entity.PendingSale {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	if remove {
		delete(s.entries, key)
	}
	p := clonePending(&e.pending)
	return &p
}

func clonePending(p *entity.PendingSale) entity.PendingSale {
	c := *p
	c.Form.Items = append([]entity.LineItemForm(nil), p.Form.Items...)
	return c
}

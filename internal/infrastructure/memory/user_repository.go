package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo operadores en memoria.
type UserRepo struct {
	g guard
}

// NewUserRepository construye el repositorio sobre el Store.
func NewUserRepository(s *Store) *UserRepo {
	return &UserRepo{g: guard{s: s}}
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.g.lock()()
	for _, other := range r.g.s.users {
		if other.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	c := *u
	r.g.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.g.lock()()
	u, ok := r.g.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer r.g.lock()()
	for _, u := range r.g.s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	defer r.g.lock()()
	out := make([]*entity.User, 0, len(r.g.s.users))
	for _, u := range r.g.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	lo, hi := page(len(out), limit, offset)
	return out[lo:hi], nil
}

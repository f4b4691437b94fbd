package memory

import (
	"context"

	"homestay/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) ByID(_ context.Context, id string) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[u.ID] = cloneUser(u)
	return nil
}

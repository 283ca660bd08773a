package memory

import (
	"context"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/auth"
)

type userRecord = auth.User

// AuthRepo is the in-memory auth.Repository.
type AuthRepo struct {
	store *Store
}

var _ auth.Repository = (*AuthRepo)(nil)

func NewAuthRepo(store *Store) *AuthRepo {
	return &AuthRepo{store: store}
}

func (r *AuthRepo) Create(ctx context.Context, u *auth.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Username == u.Username {
			return apperror.NewDuplicate("user", "username", u.Username)
		}
	}
	cp := *u
	r.store.users[u.ID.String()] = &cp
	return nil
}

func (r *AuthRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *AuthRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID.String()]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

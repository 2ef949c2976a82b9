package users

import "context"

// Repository persiste usuarios.
// Create devuelve apperr.ErrConflict si el email ya existe; GetBy* devuelven apperr.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

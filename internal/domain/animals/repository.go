package animals

import (
	"context"
	"time"
)

// Repository persiste animales.
// Get/Update/Deactivate operan solo sobre registros activos y devuelven apperr.ErrNotFound si no hay match.
// Create y UpdateActive devuelven apperr.ErrConflict si el DIIO ya existe.
type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetActive(ctx context.Context, id string) (Animal, error)
	FindByTag(ctx context.Context, tag int64) (Animal, bool, error)
	List(ctx context.Context, f Filter) ([]Animal, error)

	// UpdateActive lee el registro activo, le aplica fn y persiste el resultado de forma atómica.
	// Un error de fn aborta sin escribir.
	UpdateActive(ctx context.Context, id string, fn func(Animal) (Animal, error)) (Animal, error)

	Deactivate(ctx context.Context, id string, at time.Time) (Animal, error)
}

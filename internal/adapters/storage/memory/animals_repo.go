package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/domain/animals"
)

type animalRepo struct {
	mu    sync.RWMutex
	byID  map[string]animals.Animal
	byTag map[int64]string
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID:  make(map[string]animals.Animal),
		byTag: make(map[int64]string),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	if _, exists := r.byTag[a.Tag]; exists {
		return apperr.E(apperr.ErrConflict, "Ya existe una vaca con el DIIO '%d'", a.Tag)
	}
	r.byID[a.ID] = a
	r.byTag[a.Tag] = a.ID
	return nil
}

func (r *animalRepo) GetActive(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok || !a.Active {
		return animals.Animal{}, apperr.ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) FindByTag(ctx context.Context, tag int64) (animals.Animal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byTag[tag]
	if !ok {
		return animals.Animal{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *animalRepo) List(ctx context.Context, f animals.Filter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if f.Matches(a) {
			out = append(out, a)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *animalRepo) UpdateActive(ctx context.Context, id string, fn func(animals.Animal) (animals.Animal, error)) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok || !current.Active {
		return animals.Animal{}, apperr.ErrNotFound
	}

	a, err := fn(current)
	if err != nil {
		return animals.Animal{}, err
	}
	a.ID = current.ID
	a.Active = true
	a.CreatedAt = current.CreatedAt

	if current.Tag != a.Tag {
		if owner, taken := r.byTag[a.Tag]; taken && owner != a.ID {
			return animals.Animal{}, apperr.E(apperr.ErrConflict, "Ya existe una vaca con el DIIO '%d'", a.Tag)
		}
		delete(r.byTag, current.Tag)
		r.byTag[a.Tag] = a.ID
	}

	r.byID[a.ID] = a
	return a, nil
}

func (r *animalRepo) Deactivate(ctx context.Context, id string, at time.Time) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || !a.Active {
		return animals.Animal{}, apperr.ErrNotFound
	}
	a.Active = false
	a.UpdatedAt = at
	r.byID[id] = a
	return a, nil
}

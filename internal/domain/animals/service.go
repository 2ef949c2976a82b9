package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gestion-bovina/internal/apperr"

	"github.com/google/uuid"
)

var (
	ErrNoActive   = apperr.E(apperr.ErrNotFound, "No hay vacas registradas")
	ErrNoInactive = apperr.E(apperr.ErrNotFound, "No hay vacas eliminadas")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// ParseID valida el formato del id de storage y lo normaliza.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperr.E(apperr.ErrInvalidArgument, "El ID '%s' no es válido", id)
	}
	return u.String(), nil
}

// ListFilter son los filtros por igualdad aceptados en los listados.
type ListFilter struct {
	Tag *int64
	Sex *Sex
}

// List devuelve los animales activos que cumplen el filtro. Sin resultados => NotFound.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Animal, error) {
	items, err := s.repo.List(ctx, f.scoped(true))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoActive
	}
	return items, nil
}

// ListInactive es List sobre los dados de baja.
func (s *Service) ListInactive(ctx context.Context, f ListFilter) ([]Animal, error) {
	items, err := s.repo.List(ctx, f.scoped(false))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoInactive
	}
	return items, nil
}

// All devuelve todos los animales sin importar su estado (lista vacía es válida).
func (s *Service) All(ctx context.Context) ([]Animal, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	nid, err := ParseID(id)
	if err != nil {
		return Animal{}, err
	}
	a, err := s.repo.GetActive(ctx, nid)
	if err != nil {
		return Animal{}, notFoundAs(err, id)
	}
	return a, nil
}

type CreateInput struct {
	Tag       int64
	BirthDate time.Time
	Sex       Sex
	Breed     string
	Location  string
	Illness   *string
}

func (in CreateInput) validate() error {
	switch {
	case in.Tag <= 0:
		return invalid("diio debe ser un entero positivo")
	case in.BirthDate.IsZero():
		return invalid("dateBirthday es requerido")
	case !in.Sex.Valid():
		return invalid("genre debe ser F o M")
	case strings.TrimSpace(in.Breed) == "":
		return invalid("race es requerido")
	case strings.TrimSpace(in.Location) == "":
		return invalid("location es requerido")
	}
	return validateIllness(in.Illness)
}

// Create falla con Conflict si el DIIO ya existe, incluso en un registro dado de baja.
func (s *Service) Create(ctx context.Context, in CreateInput) (Animal, error) {
	if err := in.validate(); err != nil {
		return Animal{}, err
	}

	if _, exists, err := s.repo.FindByTag(ctx, in.Tag); err != nil {
		return Animal{}, err
	} else if exists {
		return Animal{}, tagConflict(in.Tag)
	}

	now := s.clock()
	a := Animal{
		ID:        uuid.NewString(),
		Tag:       in.Tag,
		BirthDate: in.BirthDate.UTC().Truncate(time.Microsecond),
		Sex:       in.Sex,
		Breed:     strings.TrimSpace(in.Breed),
		Location:  strings.TrimSpace(in.Location),
		Illness:   normalizeIllness(in.Illness),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// IllnessPatch distingue "no enviado" de "sick": null (limpiar).
type IllnessPatch struct {
	Present bool
	Value   *string
}

// Patch: nil = no tocar.
type Patch struct {
	Tag       *int64
	BirthDate *time.Time
	Sex       *Sex
	Breed     *string
	Location  *string
	Illness   IllnessPatch
}

func (p Patch) validate() error {
	if p.Tag != nil && *p.Tag <= 0 {
		return invalid("diio debe ser un entero positivo")
	}
	if p.BirthDate != nil && p.BirthDate.IsZero() {
		return invalid("dateBirthday no es válido")
	}
	if p.Sex != nil && !p.Sex.Valid() {
		return invalid("genre debe ser F o M")
	}
	if p.Breed != nil && strings.TrimSpace(*p.Breed) == "" {
		return invalid("race no puede ser vacío")
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		return invalid("location no puede ser vacío")
	}
	if p.Illness.Present {
		return validateIllness(p.Illness.Value)
	}
	return nil
}

// Apply copia sobre a solo los campos presentes.
func (p Patch) Apply(a Animal) Animal {
	if p.Tag != nil {
		a.Tag = *p.Tag
	}
	if p.BirthDate != nil {
		a.BirthDate = p.BirthDate.UTC().Truncate(time.Microsecond)
	}
	if p.Sex != nil {
		a.Sex = *p.Sex
	}
	if p.Breed != nil {
		a.Breed = strings.TrimSpace(*p.Breed)
	}
	if p.Location != nil {
		a.Location = strings.TrimSpace(*p.Location)
	}
	if p.Illness.Present {
		a.Illness = normalizeIllness(p.Illness.Value)
	}
	return a
}

// Update aplica un merge parcial sobre un animal activo. Lectura, merge y escritura ocurren
// atómicamente dentro del repositorio.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Animal, error) {
	nid, err := ParseID(id)
	if err != nil {
		return Animal{}, err
	}

	a, err := s.repo.UpdateActive(ctx, nid, func(current Animal) (Animal, error) {
		if err := p.validate(); err != nil {
			return Animal{}, err
		}
		updated := p.Apply(current)
		updated.UpdatedAt = s.clock()
		return updated, nil
	})
	if err != nil {
		return Animal{}, notFoundAs(err, id)
	}
	return a, nil
}

// Destroy da de baja un animal activo (soft delete).
func (s *Service) Destroy(ctx context.Context, id string) (Animal, error) {
	nid, err := ParseID(id)
	if err != nil {
		return Animal{}, err
	}
	a, err := s.repo.Deactivate(ctx, nid, s.clock())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Animal{}, apperr.E(apperr.ErrNotFound, "No se encontró la vaca activa con ID '%s'", id)
		}
		return Animal{}, err
	}
	return a, nil
}

// clock trunca a microsegundos: es la precisión de TIMESTAMPTZ.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (f ListFilter) scoped(active bool) Filter {
	return Filter{
		Active: &active,
		Tag:    f.Tag,
		Sex:    f.Sex,
	}
}

func validateIllness(v *string) error {
	if v != nil && utf8.RuneCountInString(strings.TrimSpace(*v)) > MaxIllnessLen {
		return invalid(fmt.Sprintf("sick no puede superar %d caracteres", MaxIllnessLen))
	}
	return nil
}

// normalizeIllness: blanco equivale a sana (nil).
func normalizeIllness(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func notFoundAs(err error, id string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.E(apperr.ErrNotFound, "No se encontró la vaca con ID '%s'", id)
	}
	return err
}

func tagConflict(tag int64) error {
	return apperr.E(apperr.ErrConflict, "Ya existe una vaca con el DIIO '%d'", tag)
}

func invalid(msg string) error {
	return apperr.E(apperr.ErrInvalidArgument, "%s", msg)
}

package animals

import "time"

// Sex: F (hembra) o M (macho).
// @Enum F, M
type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

func (s Sex) Valid() bool {
	return s == SexFemale || s == SexMale
}

// MaxIllnessLen es el largo máximo de la nota de enfermedad.
const MaxIllnessLen = 150

// Animal es un registro individual del inventario.
// Tag (DIIO) es la identificación oficial, distinta del ID de storage.
type Animal struct {
	ID string

	Tag       int64
	BirthDate time.Time
	Sex       Sex
	Breed     string
	Location  string
	Illness   *string // nil = sana

	// Active false = dado de baja (soft delete). Nunca se borra físicamente.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter: campos nil no filtran.
type Filter struct {
	Active *bool
	Tag    *int64
	Sex    *Sex
}

func (f Filter) Matches(a Animal) bool {
	if f.Active != nil && a.Active != *f.Active {
		return false
	}
	if f.Tag != nil && a.Tag != *f.Tag {
		return false
	}
	if f.Sex != nil && a.Sex != *f.Sex {
		return false
	}
	return true
}

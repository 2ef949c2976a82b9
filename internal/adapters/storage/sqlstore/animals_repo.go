package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/domain/animals"
)

const animalColumns = `id, diio, birth_date, sex, breed, location, illness, active, created_at, updated_at`

type AnimalsRepo struct {
	db      *sql.DB
	dialect Dialect
}

var _ animals.Repository = (*AnimalsRepo)(nil)

func NewAnimalsRepo(db *sql.DB, d Dialect) *AnimalsRepo {
	return &AnimalsRepo{db: db, dialect: d}
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`
		INSERT INTO animals (`+animalColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`),
		a.ID,
		a.Tag,
		a.BirthDate,
		string(a.Sex),
		a.Breed,
		a.Location,
		toNullString(a.Illness),
		a.Active,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.E(apperr.ErrConflict, "Ya existe una vaca con el DIIO '%d'", a.Tag)
	}
	return err
}

func (r *AnimalsRepo) GetActive(ctx context.Context, id string) (animals.Animal, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = ? AND active = ?
	`), id, true)

	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, apperr.ErrNotFound
	}
	return a, err
}

func (r *AnimalsRepo) FindByTag(ctx context.Context, tag int64) (animals.Animal, bool, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
		SELECT `+animalColumns+`
		FROM animals
		WHERE diio = ?
	`), tag)

	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, false, nil
	}
	if err != nil {
		return animals.Animal{}, false, err
	}
	return a, true, nil
}

func (r *AnimalsRepo) List(ctx context.Context, f animals.Filter) ([]animals.Animal, error) {
	var (
		where []string
		args  []any
	)
	if f.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *f.Active)
	}
	if f.Tag != nil {
		where = append(where, "diio = ?")
		args = append(args, *f.Tag)
	}
	if f.Sex != nil {
		where = append(where, "sex = ?")
		args = append(args, string(*f.Sex))
	}

	q := `SELECT ` + animalColumns + ` FROM animals`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateActive lee la fila con lock, aplica fn y escribe el resultado en la misma transacción.
func (r *AnimalsRepo) UpdateActive(ctx context.Context, id string, fn func(animals.Animal) (animals.Animal, error)) (animals.Animal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return animals.Animal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanAnimal(tx.QueryRowContext(ctx, r.dialect.rebind(`
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = ? AND active = ?`+r.dialect.lockClause()), id, true))
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, apperr.ErrNotFound
	}
	if err != nil {
		return animals.Animal{}, err
	}

	a, err := fn(current)
	if err != nil {
		return animals.Animal{}, err
	}
	a.ID = current.ID
	a.Active = true
	a.CreatedAt = current.CreatedAt

	_, err = tx.ExecContext(ctx, r.dialect.rebind(`
		UPDATE animals
		SET
			diio = ?,
			birth_date = ?,
			sex = ?,
			breed = ?,
			location = ?,
			illness = ?,
			updated_at = ?
		WHERE id = ?
	`),
		a.Tag,
		a.BirthDate,
		string(a.Sex),
		a.Breed,
		a.Location,
		toNullString(a.Illness),
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return animals.Animal{}, apperr.E(apperr.ErrConflict, "Ya existe una vaca con el DIIO '%d'", a.Tag)
		}
		return animals.Animal{}, err
	}

	if err := tx.Commit(); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

// Deactivate marca el registro como inactivo y lo devuelve, en una sola transacción.
// Solo afecta registros activos.
func (r *AnimalsRepo) Deactivate(ctx context.Context, id string, at time.Time) (animals.Animal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return animals.Animal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, r.dialect.rebind(`
		UPDATE animals
		SET active = ?, updated_at = ?
		WHERE id = ? AND active = ?
	`), false, at, id, true)
	if err != nil {
		return animals.Animal{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return animals.Animal{}, err
	}
	if n == 0 {
		return animals.Animal{}, apperr.ErrNotFound
	}

	a, err := scanAnimal(tx.QueryRowContext(ctx, r.dialect.rebind(`
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = ?
	`), id))
	if err != nil {
		return animals.Animal{}, err
	}
	if err := tx.Commit(); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnimal(s scanner) (animals.Animal, error) {
	var (
		a       animals.Animal
		sex     string
		illness sql.NullString
	)
	if err := s.Scan(
		&a.ID,
		&a.Tag,
		&a.BirthDate,
		&sex,
		&a.Breed,
		&a.Location,
		&illness,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Sex = animals.Sex(sex)
	if illness.Valid {
		v := illness.String
		a.Illness = &v
	}
	// Los drivers devuelven zonas distintas; normalizamos a UTC.
	a.BirthDate = a.BirthDate.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/domain/users"
)

const userColumns = `id, email, password_hash, password_salt, role, created_at`

type UsersRepo struct {
	db      *sql.DB
	dialect Dialect
}

var _ users.Repository = (*UsersRepo)(nil)

func NewUsersRepo(db *sql.DB, d Dialect) *UsersRepo {
	return &UsersRepo{db: db, dialect: d}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?,?,?,?,?,?)
	`),
		u.ID,
		u.Email,
		u.PasswordHash,
		u.PasswordSalt,
		string(u.Role),
		u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return users.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, q string, arg any) (users.User, error) {
	var (
		u    users.User
		role string
	)
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(q), arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.PasswordSalt,
		&role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, apperr.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	u.Role = users.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

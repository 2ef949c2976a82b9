package users

import "time"

// Role del usuario.
// @Enum admin, user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User: el email es la identidad inmutable. No se borran usuarios.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	PasswordSalt string
	Role         Role
	CreatedAt    time.Time
}

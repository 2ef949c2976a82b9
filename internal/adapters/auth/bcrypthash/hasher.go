package bcrypthash

import (
	"fmt"

	"gestion-bovina/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

var _ auth.PasswordHasher = (*Hasher)(nil)

// saltLen es el largo del prefijo "$2a$10$" + 22 chars de sal dentro de un hash bcrypt.
const saltLen = 29

type Hasher struct {
	cost int
}

// New usa bcrypt.DefaultCost si cost está fuera de rango.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash genera una sal aleatoria por llamada; la sal devuelta es el prefijo del propio hash.
func (h *Hasher) Hash(password string) (string, string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", "", fmt.Errorf("bcrypt: %w", err)
	}
	hash := string(b)
	return hash, hash[:saltLen], nil
}

func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

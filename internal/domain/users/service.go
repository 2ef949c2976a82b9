package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/ports/auth"

	"github.com/google/uuid"
)

// maxPasswordLen es el límite de bcrypt (72 bytes).
const maxPasswordLen = 72

var ErrEmailTaken = apperr.E(apperr.ErrConflict, "Este usuario ya existe")

// Service orquesta registro, login y resolución de identidad.
// No guarda estado de sesión: el token es la sesión.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens auth.TokenIssuer
	now    func() time.Time

	decoyMu   sync.Mutex
	decoyHash string
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

var _ auth.IdentityResolver = (*Service)(nil)

type RegisterInput struct {
	Email    string
	Password string
	Role     Role
}

// Register crea el usuario y devuelve un token para login inmediato.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return "", User{}, apperr.E(apperr.ErrInvalidArgument, "email no es válido")
	}
	if in.Password == "" {
		return "", User{}, apperr.E(apperr.ErrInvalidArgument, "password es requerido")
	}
	if len(in.Password) > maxPasswordLen {
		return "", User{}, apperr.E(apperr.ErrInvalidArgument, "password no puede superar %d bytes", maxPasswordLen)
	}

	role := Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return "", User{}, apperr.E(apperr.ErrInvalidArgument, "role debe ser admin o user")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return "", User{}, ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return "", User{}, err
	}

	hash, salt, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return "", User{}, err
	}

	token, err := s.issue(ctx, u)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

// Login devuelve ErrInvalidCredentials tanto si el email no existe como si la password no coincide.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Mismo costo que una verificación real.
			s.hasher.Verify(password, s.decoy())
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", apperr.ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

// Identify resuelve el usuario de un token ya verificado.
func (s *Service) Identify(ctx context.Context, userID string) (auth.Identity, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return auth.Identity{}, apperr.E(apperr.ErrUnauthorized, "usuario no encontrado")
		}
		return auth.Identity{}, err
	}
	return auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}, nil
}

func (s *Service) issue(ctx context.Context, u User) (string, error) {
	return s.tokens.Issue(ctx, auth.Claims{UserID: u.ID, Role: string(u.Role)})
}

// decoy devuelve un hash para igualar el costo del login con email inexistente.
// Se reintenta mientras no se haya podido generar.
func (s *Service) decoy() string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()

	if s.decoyHash == "" {
		if h, _, err := s.hasher.Hash(uuid.NewString()); err == nil {
			s.decoyHash = h
		}
	}
	return s.decoyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

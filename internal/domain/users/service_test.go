package users_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gestion-bovina/internal/adapters/auth/bcrypthash"
	"gestion-bovina/internal/adapters/auth/jwtauth"
	"gestion-bovina/internal/adapters/storage/memory"
	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*users.Service, *jwtauth.Tokens, users.Repository) {
	t.Helper()
	tokens, err := jwtauth.New("test-secret", 0)
	require.NoError(t, err)
	repo := memory.NewUserRepo()
	return users.NewService(repo, bcrypthash.New(bcrypt.MinCost), tokens), tokens, repo
}

func TestService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens, repo := newService(t)

	token, u, err := svc.Register(ctx, users.RegisterInput{Email: "A@X.com ", Password: "p1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, users.RoleUser, u.Role)
	assert.NotEqual(t, "p1", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, u.PasswordSalt))

	stored, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, stored)

	claims, err := tokens.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	loginToken, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	claims, err = tokens.Verify(ctx, loginToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestService_LoginFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, _, err := svc.Register(ctx, users.RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "a@x.com", "nope")
	_, unknownEmail := svc.Login(ctx, "b@x.com", "p1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, apperr.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, _, err := svc.Register(ctx, users.RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, users.RegisterInput{Email: "A@x.com", Password: "p2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.EqualError(t, err, "Este usuario ya existe")
}

func TestService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	cases := map[string]users.RegisterInput{
		"empty email":   {Password: "p1"},
		"no at sign":    {Email: "ax.com", Password: "p1"},
		"no password":   {Email: "a@x.com"},
		"long password": {Email: "a@x.com", Password: strings.Repeat("x", 73)},
		"unknown role":  {Email: "a@x.com", Password: "p1", Role: "owner"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		})
	}
}

func TestService_RegisterAdmin(t *testing.T) {
	svc, tokens, _ := newService(t)

	token, u, err := svc.Register(context.Background(), users.RegisterInput{Email: "root@x.com", Password: "p1", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, u.Role)

	claims, err := tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestService_Identify(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, u, err := svc.Register(ctx, users.RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	id, err := svc.Identify(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, "user", id.Role)

	_, err = svc.Identify(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

// flakyHasher falla los primeros Hash y registra contra qué hash se verificó.
type flakyHasher struct {
	failures int
	verified []string
}

func (h *flakyHasher) Hash(string) (string, string, error) {
	if h.failures > 0 {
		h.failures--
		return "", "", errors.New("entropy unavailable")
	}
	return "$2a$04$decoydecoydecoydecoydeHASH", "$2a$04$decoydecoydecoydecoyde", nil
}

func (h *flakyHasher) Verify(_, hash string) bool {
	h.verified = append(h.verified, hash)
	return false
}

func TestService_LoginDecoyRetriesAfterHashFailure(t *testing.T) {
	ctx := context.Background()
	tokens, err := jwtauth.New("test-secret", 0)
	require.NoError(t, err)

	hasher := &flakyHasher{failures: 1}
	svc := users.NewService(memory.NewUserRepo(), hasher, tokens)

	_, err = svc.Login(ctx, "nadie@x.com", "p1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(ctx, "nadie@x.com", "p1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.Len(t, hasher.verified, 2)
	assert.Equal(t, "$2a$04$decoydecoydecoydecoydeHASH", hasher.verified[1])
}

package jwtauth

import (
	"context"
	"testing"
	"time"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueVerify_RoundTrip(t *testing.T) {
	tk, err := New("secret", 0)
	require.NoError(t, err)

	signed, err := tk.Issue(context.Background(), auth.Claims{UserID: "user-1", Role: "admin"})
	require.NoError(t, err)

	claims, err := tk.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokens_NoExpiryByDefault(t *testing.T) {
	tk, err := New("secret", 0)
	require.NoError(t, err)

	issuedAt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tk.now = func() time.Time { return issuedAt }
	signed, err := tk.Issue(context.Background(), auth.Claims{UserID: "user-1"})
	require.NoError(t, err)

	tk.now = func() time.Time { return issuedAt.AddDate(5, 0, 0) }
	_, err = tk.Verify(context.Background(), signed)
	require.NoError(t, err)
}

func TestTokens_TTLExpires(t *testing.T) {
	tk, err := New("secret", time.Hour)
	require.NoError(t, err)

	issuedAt := time.Now()
	tk.now = func() time.Time { return issuedAt }
	signed, err := tk.Issue(context.Background(), auth.Claims{UserID: "user-1"})
	require.NoError(t, err)

	tk.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = tk.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokens_RejectsForeignSignature(t *testing.T) {
	mine, err := New("secret", 0)
	require.NoError(t, err)
	other, err := New("other-secret", 0)
	require.NoError(t, err)

	signed, err := other.Issue(context.Background(), auth.Claims{UserID: "user-1"})
	require.NoError(t, err)

	_, err = mine.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsNoneAlgAndGarbage(t *testing.T) {
	tk, err := New("secret", 0)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, token := range []string{unsigned, "not-a-token", ""} {
		_, err := tk.Verify(context.Background(), token)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized, "token %q", token)
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New("  ", 0)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

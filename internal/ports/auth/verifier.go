package auth

import "context"

// AuthVerifier verifica la firma de un token y devuelve sus claims.
// No comprueba que el usuario exista.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma un token para un usuario autenticado.
type TokenIssuer interface {
	Issue(ctx context.Context, claims Claims) (string, error)
}

// IdentityResolver resuelve el usuario embebido en un token.
type IdentityResolver interface {
	Identify(ctx context.Context, userID string) (Identity, error)
}

// PasswordHasher hashea y verifica passwords.
type PasswordHasher interface {
	// Hash devuelve el hash y la sal con la que fue generado.
	Hash(password string) (hash string, salt string, err error)
	Verify(password, hash string) bool
}

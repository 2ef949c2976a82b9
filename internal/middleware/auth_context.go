package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/platform/httpjson"
	"gestion-bovina/internal/platform/logger"
	"gestion-bovina/internal/ports/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Authenticate exige "Authorization: Bearer <token>":
// - verifica la firma con verifier
// - resuelve el usuario del token con resolver (si ya no existe => 401)
// - adjunta la identidad al contexto (ver GetIdentity)
func Authenticate(verifier auth.AuthVerifier, resolver auth.IdentityResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				httpjson.Message(w, http.StatusUnauthorized, "No autorizado: token ausente")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("token rejected", map[string]any{"error": err.Error()})
				httpjson.Message(w, http.StatusUnauthorized, "No autorizado: token inválido")
				return
			}

			identity, err := resolver.Identify(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					httpjson.Message(w, http.StatusUnauthorized, "No autorizado")
					return
				}
				log.Error("resolve identity failed", map[string]any{"error": err.Error(), "user_id": claims.UserID})
				httpjson.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

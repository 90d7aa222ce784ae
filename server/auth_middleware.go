package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/token/jwt"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the verified access token claims
const ContextKeyClaims ContextKey = "claims"

// RequireAuth validates the Bearer access token and stores its claims in the request context.
// An expired token answers 401 TOKEN_EXPIRED, which is what makes the client refresh.
// A token from a session that was logged out answers 403 SESSION_REVOKED.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			// Check for Bearer scheme
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := s.tokens.Authenticate(parts[1])
			switch {
			case apperrors.Is(err, apperrors.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, codeTokenExpired, "access token expired")
				return
			case apperrors.Is(err, apperrors.ErrTokenRevoked):
				writeError(w, http.StatusForbidden, codeSessionRevoked, "session has been revoked")
				return
			case apperrors.Is(err, apperrors.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, codeInvalidToken, "invalid access token")
				return
			case err != nil:
				log.Err(err).Msg("Failed to authenticate request")
				writeError(w, http.StatusInternalServerError, codeInternal, "failed to authenticate request")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSuperAdmin must run after RequireAuth.
func (s *Server) RequireSuperAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || !claims.User().IsSuperAdmin() {
				writeError(w, http.StatusUnauthorized, codeInsufficientRole, "super admin role required")
				return
			}
			next(w, r)
		}
	}
}

func claimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*jwt.Claims)
	return claims
}

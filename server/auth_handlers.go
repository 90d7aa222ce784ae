package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/rxadmin/auth"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// LoginHandler exchanges email and password for a user and a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		email := strings.TrimSpace(req.Email)
		if email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, codeBadRequest, "email and password are required")
			return
		}

		if s.attempts.Blocked(email) {
			writeError(w, http.StatusTooManyRequests, codeTooManyAttempts, "too many failed login attempts")
			return
		}

		account, err := s.repos.Users.GetByEmail(email)
		if err != nil {
			s.attempts.Failed(email)
			writeError(w, http.StatusNotFound, codeUserNotFound, "no account exists for this email")
			return
		}
		if !users.CheckPasswordHash(req.Password, account.PasswordHash) {
			s.attempts.Failed(email)
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid email or password")
			return
		}
		if account.Blocked {
			writeError(w, http.StatusForbidden, codeUserBlocked, "account is blocked")
			return
		}
		s.attempts.Reset(email)

		pair, err := s.tokens.Issue(&account.User)
		if err != nil {
			log.Err(err).Str("email", email).Msg("Failed to issue tokens")
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to issue tokens")
			return
		}

		account.LastLogin = s.nowFunc()
		if err := s.repos.Users.Upsert(account); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("Failed to record last login")
		}

		log.Info().Str("email", account.Email).Str("role", string(account.Role)).Msg("User logged in")
		user := account.User
		writeJSON(w, http.StatusOK, auth.LoginResponse{
			User:         &user,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresIn:    pair.ExpiresIn,
		})
	}
}

// RefreshHandler rotates a refresh token into a new pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, codeBadRequest, "refreshToken is required")
			return
		}

		pair, err := s.tokens.Refresh(req.RefreshToken)
		switch {
		case apperrors.Is(err, apperrors.ErrRefreshTokenExpired):
			writeError(w, http.StatusUnauthorized, codeRefreshTokenExpired, "refresh token expired")
			return
		case apperrors.Is(err, apperrors.ErrUserBlocked):
			writeError(w, http.StatusForbidden, codeUserBlocked, "account is blocked")
			return
		case apperrors.Is(err, apperrors.ErrInvalidRefreshToken):
			writeError(w, http.StatusUnauthorized, codeInvalidRefreshToken, "invalid refresh token")
			return
		case err != nil:
			log.Err(err).Msg("Failed to refresh tokens")
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to refresh tokens")
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler ends the caller's session. Its access and refresh tokens stop working.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if err := s.tokens.Revoke(claims); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidToken, err.Error())
			return
		}
		log.Info().Str("email", claims.Email).Str("sid", claims.SessionID).Msg("User logged out")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		_, err := s.tokens.Authenticate(req.Token)
		writeJSON(w, http.StatusOK, map[string]bool{"valid": err == nil})
	}
}

// Package auth signs the admin in and out against the API and keeps the session store in step.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/rxadmin/gateway"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

const logoutNotifyTimeout = 5 * time.Second

var ErrInvalidLoginResponse = errors.New("login response is missing the user or tokens")

// SessionStore is the part of session.Store the auth service writes.
type SessionStore interface {
	AccessToken() string
	SetSession(user *users.User, accessToken, refreshToken string)
	Clear()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int         `json:"expiresIn"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

type Service struct {
	gw    gateway.Doer
	store SessionStore
}

func NewService(gw gateway.Doer, store SessionStore) *Service {
	return &Service{gw: gw, store: store}
}

// Login exchanges credentials for a session and stores it.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgs, "email and password are required")
	}

	req := gateway.NewRequest(http.MethodPost, gateway.LoginPath, LoginRequest{Email: email, Password: password})
	req.Public = true

	var resp LoginResponse
	if err := s.gw.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, ErrInvalidLoginResponse
	}

	s.store.SetSession(resp.User, resp.AccessToken, resp.RefreshToken)
	log.Info().Str("user", resp.User.Email).Str("role", string(resp.User.Role)).Msg("Logged in")
	return &resp, nil
}

// Logout tells the API the session is over, then clears it locally. The API call is
// best-effort; the local session is cleared whatever happens.
func (s *Service) Logout(ctx context.Context) {
	if s.store.AccessToken() != "" {
		ctx, cancel := context.WithTimeout(ctx, logoutNotifyTimeout)
		defer cancel()

		req := gateway.NewRequest(http.MethodPost, gateway.LogoutPath, nil)
		req.SkipRecovery = true
		if err := s.gw.Do(ctx, req, nil); err != nil {
			log.Warn().Err(err).Msg("Logout notification failed")
		}
	}
	s.store.Clear()
}

// Validate asks the API whether the current access token is still good. Any failure counts as invalid.
func (s *Service) Validate(ctx context.Context) bool {
	token := s.store.AccessToken()
	if token == "" {
		return false
	}

	var resp validateResponse
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodPost, gateway.ValidatePath, validateRequest{Token: token}), &resp); err != nil {
		log.Debug().Err(err).Msg("Token validation failed")
		return false
	}
	return resp.Valid
}

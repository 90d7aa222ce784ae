// Package token issues, rotates and revokes the mock API's credentials: HS256 access
// tokens bound to a login session, and opaque refresh tokens rotated on every use.
package token

import (
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/rxadmin/internal/config"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/token/jwt"
	"github.com/jrsteele09/rxadmin/token/refresh"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

// Pair is the credential body of /auth/login and /auth/refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type Manager struct {
	creator   *jwt.Creator
	inspector *jwt.Inspector
	refresh   *refresh.Manager
	revoked   RevokedSessionCache
	userRepo  users.Repo
	config    config.MockAPIConfig
	nowFunc   func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRevokedSessionCache(cache RevokedSessionCache) ManagerOption {
	return func(m *Manager) {
		m.revoked = cache
	}
}

func New(refreshRepo refresh.Repo, userRepo users.Repo, cfg config.MockAPIConfig, options ...ManagerOption) *Manager {
	m := &Manager{
		refresh:  refresh.NewManager(refreshRepo, cfg),
		creator:  jwt.NewCreator(cfg),
		userRepo: userRepo,
		config:   cfg,
		nowFunc:  time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.revoked == nil {
		m.revoked = NewInMemoryRevokedSessionCache(m.nowFunc)
	}
	m.inspector = jwt.NewInspector(cfg, m.revoked)
	return m
}

// Issue starts a new login session for user.
func (m *Manager) Issue(user *users.User) (*Pair, error) {
	return m.pair(user, uuid.New().String())
}

// Refresh rotates refreshToken and mints a new access token in the same session.
func (m *Manager) Refresh(refreshToken string) (*Pair, error) {
	stored, err := m.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, err
	}
	if m.revoked.IsRevoked(stored.SessionID) {
		_ = m.refresh.RevokeSession(stored.SessionID)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	account, err := m.userRepo.GetByID(stored.UserID)
	if err != nil {
		_ = m.refresh.RevokeSession(stored.SessionID)
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if account.Blocked {
		_ = m.refresh.RevokeSession(stored.SessionID)
		return nil, apperrors.ErrUserBlocked
	}

	access, exp, err := m.creator.CreateAccessToken(&account.User, stored.SessionID)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: stored.Token,
		ExpiresIn:    m.expiresIn(exp),
	}, nil
}

// Authenticate verifies an access token presented as a bearer credential.
func (m *Manager) Authenticate(rawToken string) (*jwt.Claims, error) {
	return m.inspector.Verify(rawToken)
}

// Revoke ends the login session behind claims. Its access tokens are refused with
// ErrTokenRevoked until they would have expired, and its refresh token is dropped.
func (m *Manager) Revoke(claims *jwt.Claims) error {
	if claims.SessionID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidToken, "token carries no session")
	}
	until := claims.ExpiresAt
	if until.IsZero() {
		until = m.nowFunc().Add(m.config.GetAccessTokenExpiry())
	}
	if err := m.revoked.Add(claims.SessionID, until); err != nil {
		return err
	}
	if err := m.refresh.RevokeSession(claims.SessionID); err != nil {
		log.Err(err).Str("sid", claims.SessionID).Msg("Failed to drop refresh token")
	}
	return nil
}

func (m *Manager) CleanupRevokedSessions() {
	m.revoked.Cleanup()
}

func (m *Manager) pair(user *users.User, sessionID string) (*Pair, error) {
	access, exp, err := m.creator.CreateAccessToken(user, sessionID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := m.refresh.Create(user.ID, user.Tenant(), sessionID)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    m.expiresIn(exp),
	}, nil
}

func (m *Manager) expiresIn(exp time.Time) int {
	return int(exp.Sub(jwt.NowTimeFunc()).Seconds())
}

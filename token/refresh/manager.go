package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jrsteele09/rxadmin/internal/config"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo   Repo
	config config.MockAPIConfig
}

func NewManager(repo Repo, cfg config.MockAPIConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create issues the refresh token for a login session, replacing any the session already had.
func (m *Manager) Create(userID, tenantID, sessionID string) (string, error) {
	if existing, err := m.repo.GetBySessionID(sessionID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		TenantID:  tenantID,
		SessionID: sessionID,
		Iat:       NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Rotate consumes token and issues its replacement in the same session. A token can be
// rotated once; presenting it again fails with ErrInvalidRefreshToken.
func (m *Manager) Rotate(token string) (*StoredRefreshToken, error) {
	stored, err := m.repo.Get(token)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	// Only one of two concurrent rotations of the same token wins the delete.
	if err := m.repo.Delete(token); err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(stored) {
		return nil, apperrors.ErrRefreshTokenExpired
	}

	next, err := m.Create(stored.UserID, stored.TenantID, stored.SessionID)
	if err != nil {
		return nil, err
	}
	return m.repo.Get(next)
}

// RevokeSession drops the session's refresh token, if it has one.
func (m *Manager) RevokeSession(sessionID string) error {
	existing, err := m.repo.GetBySessionID(sessionID)
	if err != nil || existing == nil {
		return nil
	}
	return m.repo.Delete(existing.Token)
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetRefreshTokenExpiry()
}

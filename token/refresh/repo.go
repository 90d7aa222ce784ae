package refresh

import (
	"time"
)

// StoredRefreshToken is the server-side record behind an opaque refresh token.
// The client only ever sees Token.
type StoredRefreshToken struct {
	Token     string    // The random token string sent to the client
	UserID    string    // Account the session belongs to
	TenantID  string    // Company scope, empty for super admins
	SessionID string    // Login session; survives rotation
	Iat       time.Time // Issued at, for expiry
}

// Repo stores refresh token records keyed by the token string. Each login session
// holds at most one live refresh token.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetBySessionID(sessionID string) (*StoredRefreshToken, error)
	List(offset, limit int) ([]*StoredRefreshToken, error)
}

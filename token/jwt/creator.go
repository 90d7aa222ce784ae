package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/rxadmin/internal/config"
	"github.com/jrsteele09/rxadmin/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const issuer = "rxadmin-mockapi"

// Creator mints HS256 access tokens for the mock API.
type Creator struct {
	config config.MockAPIConfig
}

func NewCreator(cfg config.MockAPIConfig) *Creator {
	return &Creator{
		config: cfg,
	}
}

// CreateAccessToken issues a token for user within login session sessionID.
func (c *Creator) CreateAccessToken(user *users.User, sessionID string) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(c.config.GetAccessTokenExpiry())

	claims := jwtlib.MapClaims{
		"iss":   issuer,
		"sub":   user.ID,             // The user the token was issued to
		"email": user.Email,          // Convenience for logs; not used for authorization
		"role":  string(user.Role),   // SUPERADMIN or COMPANY_ADMIN
		"sid":   sessionID,           // Login session, revoked on logout
		"iat":   now.Unix(),          // Issued At
		"exp":   exp.Unix(),          // Expiry
		"jti":   uuid.New().String(), // Unique token ID
	}
	if tenant := user.Tenant(); tenant != "" {
		claims["tenant"] = tenant
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(c.config.GetSigningSecret()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, exp, nil
}

package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/rxadmin/internal/config"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/users"
)

// Claims is what an access token says about its bearer.
type Claims struct {
	Subject   string     `json:"sub"`
	Email     string     `json:"email,omitempty"`
	Role      users.Role `json:"role"`
	TenantID  string     `json:"tenant,omitempty"`
	SessionID string     `json:"sid,omitempty"`
	ID        string     `json:"jti,omitempty"`
	IssuedAt  time.Time  `json:"iat"`
	ExpiresAt time.Time  `json:"exp"`
}

func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// User rebuilds the identity the token was issued to.
func (c *Claims) User() *users.User {
	return &users.User{ID: c.Subject, Email: c.Email, Role: c.Role, TenantID: c.TenantID}
}

// RevokedChecker reports whether a login session has been ended.
type RevokedChecker interface {
	IsRevoked(sessionID string) bool
}

// Inspector verifies access tokens minted by Creator.
type Inspector struct {
	config         config.MockAPIConfig
	revokedChecker RevokedChecker
}

func NewInspector(cfg config.MockAPIConfig, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		config:         cfg,
		revokedChecker: revokedChecker,
	}
}

// Verify checks the signature and expiry of rawToken. It returns ErrTokenExpired,
// ErrTokenRevoked or ErrInvalidToken so callers can pick the matching response.
func (i *Inspector) Verify(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	token, err := jwtlib.Parse(rawToken,
		func(t *jwtlib.Token) (any, error) {
			return []byte(i.config.GetSigningSecret()), nil
		},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case err != nil:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%s", err.Error())
	case !token.Valid:
		return nil, apperrors.ErrInvalidToken
	}

	claims, err := fromMapClaims(token.Claims)
	if err != nil {
		return nil, err
	}
	if claims.SessionID != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(claims.SessionID) {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// Inspect reads the claims of rawToken without verifying it. The admin client uses it
// to show who is signed in and when the access token runs out; it must never be used
// for an authorization decision.
func Inspect(rawToken string) (*Claims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return fromMapClaims(token.Claims)
}

func fromMapClaims(c jwtlib.Claims) (*Claims, error) {
	claims, ok := c.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims from token")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	tenant, _ := claims["tenant"].(string)
	sid, _ := claims["sid"].(string)
	jti, _ := claims["jti"].(string)

	out := &Claims{
		Subject:   sub,
		Email:     email,
		Role:      users.Role(role),
		TenantID:  tenant,
		SessionID: sid,
		ID:        jti,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

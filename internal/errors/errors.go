// Package errors holds the sentinels shared by the admin client and the mock API.
// Domain sentinels wrap the kind they belong to, so a handler can match either.
package errors

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidArgs  = errors.New("invalid arguments")
	ErrUnauthorized = errors.New("unauthorized")
)

// Accounts and roles.
var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrUserBlocked      = errors.New("user is blocked")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbiddenRole    = errors.New("role not permitted")
	ErrSessionExpired   = errors.New("session expired")
)

// Access and refresh tokens, as judged by the mock API.
var (
	ErrInvalidToken        = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrTokenExpired        = fmt.Errorf("token expired: %w", ErrUnauthorized)
	ErrTokenRevoked        = fmt.Errorf("token revoked: %w", ErrUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	ErrRefreshTokenExpired = fmt.Errorf("refresh token expired: %w", ErrUnauthorized)
)

// Companies and their orders.
var (
	ErrTenantNotFound = fmt.Errorf("tenant %w", ErrNotFound)
	ErrOrderNotFound  = fmt.Errorf("order %w", ErrNotFound)
)

// Wrapf prefixes err with a formatted message. A nil err stays nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound reports whether err names any missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

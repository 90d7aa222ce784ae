package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	for _, err := range []error{apperrors.ErrTenantNotFound, apperrors.ErrOrderNotFound, apperrors.ErrUserNotFound} {
		require.True(t, apperrors.IsNotFound(err), err)
		require.True(t, apperrors.IsNotFound(fmt.Errorf("lookup: %w", err)), err)
		require.False(t, apperrors.Is(err, apperrors.ErrUnauthorized), err)
	}

	for _, err := range []error{
		apperrors.ErrInvalidToken,
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenRevoked,
		apperrors.ErrInvalidRefreshToken,
		apperrors.ErrRefreshTokenExpired,
	} {
		require.True(t, apperrors.Is(err, apperrors.ErrUnauthorized), err)
		require.False(t, apperrors.IsNotFound(err), err)
	}

	require.False(t, apperrors.Is(apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked))
	require.Equal(t, "tenant not found", apperrors.ErrTenantNotFound.Error())
}

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "ignored %d", 1))

	err := apperrors.Wrapf(apperrors.ErrInvalidArgs, "field %q", "email")
	require.EqualError(t, err, `field "email": invalid arguments`)
	require.ErrorIs(t, err, apperrors.ErrInvalidArgs)
}

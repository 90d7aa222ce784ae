package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/rxadmin/internal/config"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/token"
	"github.com/jrsteele09/rxadmin/token/jwt"
	"github.com/jrsteele09/rxadmin/token/refresh"
	refreshrepofake "github.com/jrsteele09/rxadmin/token/refresh/repofake"
	"github.com/jrsteele09/rxadmin/users"
	fakeuserrepo "github.com/jrsteele09/rxadmin/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type testConfig struct {
	config.MockAPI
}

func (testConfig) GetSigningSecret() string              { return "test-secret" }
func (testConfig) GetAccessTokenExpiry() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenExpiry() time.Duration { return 24 * time.Hour }

type testFixture struct {
	userRepo users.Repo
	manager  *token.Manager
	admin    *users.Account
	company  *users.Account
	now      time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		now:      time.Now(),
	}
	clock := func() time.Time { return f.now }

	prevJWT, prevRefresh := jwt.NowTimeFunc, refresh.NowTimeFunc
	jwt.NowTimeFunc, refresh.NowTimeFunc = clock, clock
	t.Cleanup(func() {
		jwt.NowTimeFunc, refresh.NowTimeFunc = prevJWT, prevRefresh
	})

	f.admin = &users.Account{User: users.User{Email: "admin@example.com", Role: users.RoleSuperAdmin}}
	f.company = &users.Account{User: users.User{Email: "company@example.com", Role: users.RoleCompanyAdmin, TenantID: "t-1"}}
	require.NoError(t, f.userRepo.Upsert(f.admin))
	require.NoError(t, f.userRepo.Upsert(f.company))

	f.manager = token.New(refreshrepofake.NewFakeRefreshTokenRepo(), f.userRepo, testConfig{}, token.WithNowFunc(clock))
	return f
}

func TestIssueAndAuthenticate(t *testing.T) {
	f := setupTestFixture(t)

	pair, err := f.manager.Issue(&f.company.User)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Len(t, pair.RefreshToken, 64)
	require.Equal(t, 900, pair.ExpiresIn)

	claims, err := f.manager.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.company.ID, claims.Subject)
	require.Equal(t, users.RoleCompanyAdmin, claims.Role)
	require.Equal(t, "t-1", claims.TenantID)
	require.NotEmpty(t, claims.SessionID)
	require.Equal(t, "t-1", claims.User().Tenant())
}

func TestAuthenticateFailures(t *testing.T) {
	f := setupTestFixture(t)
	pair, err := f.manager.Issue(&f.admin.User)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		f.now = f.now.Add(16 * time.Minute)
		defer func() { f.now = f.now.Add(-16 * time.Minute) }()

		_, err := f.manager.Authenticate(pair.AccessToken)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := f.manager.Authenticate(pair.AccessToken + "x")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := token.New(refreshrepofake.NewFakeRefreshTokenRepo(), f.userRepo, config.MockAPI{})
		foreign, err := other.Issue(&f.admin.User)
		require.NoError(t, err)

		_, err = f.manager.Authenticate(foreign.AccessToken)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := f.manager.Authenticate("")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestRefreshRotates(t *testing.T) {
	f := setupTestFixture(t)
	first, err := f.manager.Issue(&f.admin.User)
	require.NoError(t, err)
	firstClaims, err := f.manager.Authenticate(first.AccessToken)
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	second, err := f.manager.Refresh(first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)

	secondClaims, err := f.manager.Authenticate(second.AccessToken)
	require.NoError(t, err)
	require.Equal(t, firstClaims.SessionID, secondClaims.SessionID)

	_, err = f.manager.Refresh(first.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefreshConcurrentUseOfOneToken(t *testing.T) {
	f := setupTestFixture(t)
	pair, err := f.manager.Issue(&f.admin.User)
	require.NoError(t, err)

	const n = 8
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, results[i] = f.manager.Refresh(pair.RefreshToken)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	}
	require.Equal(t, 1, succeeded)
}

func TestRefreshExpired(t *testing.T) {
	f := setupTestFixture(t)
	pair, err := f.manager.Issue(&f.admin.User)
	require.NoError(t, err)

	f.now = f.now.Add(25 * time.Hour)
	_, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)

	_, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefreshBlockedUser(t *testing.T) {
	f := setupTestFixture(t)
	pair, err := f.manager.Issue(&f.company.User)
	require.NoError(t, err)

	require.NoError(t, f.userRepo.SetBlocked(f.company.Email, true))
	_, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrUserBlocked)
}

func TestRevoke(t *testing.T) {
	f := setupTestFixture(t)
	pair, err := f.manager.Issue(&f.admin.User)
	require.NoError(t, err)
	other, err := f.manager.Issue(&f.admin.User)
	require.NoError(t, err)

	claims, err := f.manager.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.manager.Revoke(claims))

	_, err = f.manager.Authenticate(pair.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	_, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	_, err = f.manager.Authenticate(other.AccessToken)
	require.NoError(t, err, "other sessions of the same user are unaffected")

	f.now = f.now.Add(time.Hour)
	f.manager.CleanupRevokedSessions()
	_, err = f.manager.Authenticate(pair.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)

	require.Error(t, f.manager.Revoke(&jwt.Claims{}))
}

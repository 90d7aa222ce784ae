package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/rxadmin/auth"
	"github.com/jrsteele09/rxadmin/gateway"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/session"
	"github.com/jrsteele09/rxadmin/session/persisterfake"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "admin123"
)

type testFixture struct {
	server  *httptest.Server
	store   *session.Store
	service *auth.Service

	mu           sync.Mutex
	loginStatus  int
	logoutStatus int
	valid        bool
	requests     []string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{valid: true}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.record("login", r)
		var body auth.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		f.mu.Lock()
		status := f.loginStatus
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": "nope"})
			return
		}
		if body.Email != testEmail || body.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, auth.LoginResponse{
			User:         &users.User{ID: "u-1", Role: users.RoleSuperAdmin, Email: testEmail, FirstName: "Ada"},
			AccessToken:  "A1",
			RefreshToken: "R1",
			ExpiresIn:    900,
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.record("logout", r)
		f.mu.Lock()
		status := f.logoutStatus
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"code": gateway.CodeTokenExpired})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/validate", func(w http.ResponseWriter, r *http.Request) {
		f.record("validate", r)
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		valid := f.valid && body.Token == "A1"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.record("refresh", r)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh rejected"})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.store = session.NewStore(persisterfake.NewFakePersister(), session.DefaultKey)
	f.service = auth.NewService(gateway.New(f.server.URL, f.store), f.store)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *testFixture) record(name string, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, name+" "+r.Header.Get("Authorization"))
}

func (f *testFixture) set(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

func (f *testFixture) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func TestLogin(t *testing.T) {
	t.Run("stores the session", func(t *testing.T) {
		f := setupTestFixture(t)

		resp, err := f.service.Login(context.Background(), " "+testEmail+" ", testPassword)
		require.NoError(t, err)
		require.Equal(t, "A1", resp.AccessToken)
		require.Equal(t, 900, resp.ExpiresIn)

		require.True(t, f.store.IsAuthenticated())
		require.Equal(t, "u-1", f.store.User().ID)
		require.Equal(t, "A1", f.store.AccessToken())
		require.Equal(t, "R1", f.store.RefreshToken())
		require.Equal(t, []string{"login "}, f.seen())
	})

	t.Run("never sends a bearer token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.store.SetSession(&users.User{ID: "old"}, "stale", "stale-refresh")

		_, err := f.service.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		require.Equal(t, []string{"login "}, f.seen())
		require.Equal(t, "u-1", f.store.User().ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.Login(context.Background(), testEmail, "wrong")
		require.Error(t, err)
		require.Equal(t, http.StatusUnauthorized, gateway.StatusCode(err))
		require.Equal(t, "Invalid email or password. Please check your credentials and try again.", auth.FriendlyLoginError(err))
		require.False(t, f.store.IsAuthenticated())
		require.NotContains(t, f.seen(), "refresh ")
	})

	t.Run("missing credentials", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.Login(context.Background(), "", testPassword)
		require.True(t, apperrors.Is(err, apperrors.ErrInvalidArgs))
		require.Empty(t, f.seen())
	})
}

func TestLogout(t *testing.T) {
	t.Run("notifies the API and clears", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)

		f.service.Logout(context.Background())
		require.False(t, f.store.IsAuthenticated())
		require.Nil(t, f.store.User())
		require.Empty(t, f.store.AccessToken())
		require.Empty(t, f.store.RefreshToken())
		require.Equal(t, []string{"login ", "logout Bearer A1"}, f.seen())
	})

	t.Run("twice in a row", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)

		require.NotPanics(t, func() {
			f.service.Logout(context.Background())
			f.service.Logout(context.Background())
		})
		require.Nil(t, f.store.User())
		require.Empty(t, f.store.AccessToken())
		require.Equal(t, []string{"login ", "logout Bearer A1"}, f.seen())
	})

	t.Run("API failure still clears without refreshing", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		f.set(func() { f.logoutStatus = http.StatusUnauthorized })

		f.service.Logout(context.Background())
		require.False(t, f.store.IsAuthenticated())
		require.Equal(t, []string{"login ", "logout Bearer A1"}, f.seen())
	})

	t.Run("API unreachable", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		f.server.Close()

		f.service.Logout(context.Background())
		require.False(t, f.store.IsAuthenticated())
	})
}

func TestValidate(t *testing.T) {
	f := setupTestFixture(t)
	require.False(t, f.service.Validate(context.Background()), "no session")
	require.Empty(t, f.seen())

	_, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.True(t, f.service.Validate(context.Background()))

	f.set(func() { f.valid = false })
	require.False(t, f.service.Validate(context.Background()))

	f.server.Close()
	require.False(t, f.service.Validate(context.Background()))
}

func TestFriendlyLoginError(t *testing.T) {
	for _, tt := range []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "Invalid email or password. Please check your credentials and try again."},
		{http.StatusNotFound, "Account not found. Please check your email address or create a new account."},
		{http.StatusTooManyRequests, "Too many login attempts. Please wait a moment before trying again."},
		{http.StatusInternalServerError, "Our servers are experiencing issues. Please try again later."},
		{http.StatusBadRequest, "nope"},
	} {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := setupTestFixture(t)
			f.set(func() { f.loginStatus = tt.status })

			_, err := f.service.Login(context.Background(), testEmail, testPassword)
			require.Equal(t, tt.want, auth.FriendlyLoginError(err))
		})
	}

	require.Equal(t, "dial tcp: refused", auth.FriendlyLoginError(errors.New("dial tcp: refused")))
	require.Empty(t, auth.FriendlyLoginError(nil))
}

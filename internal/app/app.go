// Package app wires the admin client together: one session store, one gateway, one
// inactivity monitor and the services built on them, shared by every command.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/rxadmin/auth"
	"github.com/jrsteele09/rxadmin/dashboard"
	"github.com/jrsteele09/rxadmin/gateway"
	"github.com/jrsteele09/rxadmin/inactivity"
	"github.com/jrsteele09/rxadmin/internal/config"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/session"
	"github.com/jrsteele09/rxadmin/session/filepersister"
	"github.com/jrsteele09/rxadmin/session/sqlitepersister"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/token/jwt"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

const sqliteFile = "session.db"

type App struct {
	Config    config.Config
	Store     *session.Store
	Gateway   *gateway.Client
	Monitor   *inactivity.Monitor
	Auth      *auth.Service
	Tenants   *tenants.Service
	Orders    *orders.Service
	Dashboard *dashboard.Service

	nowFunc     func() time.Time
	persister   session.Persister
	unsubscribe []func()
}

type Option func(*App)

// WithPersister replaces the persister chosen from config.
func WithPersister(p session.Persister) Option {
	return func(a *App) {
		a.persister = p
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(a *App) {
		a.nowFunc = now
	}
}

func New(cfg config.Config, opts ...Option) (*App, error) {
	a := &App{
		Config:  cfg,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.persister == nil {
		p, err := newPersister(cfg)
		if err != nil {
			return nil, err
		}
		a.persister = p
	}

	a.Store = session.NewStore(a.persister, cfg.GetSessionStorageKey())
	a.Gateway = gateway.New(cfg.GetAPIBaseURL(), a.Store, gateway.WithTimeout(cfg.GetRequestTimeout()))
	a.Auth = auth.NewService(a.Gateway, a.Store)
	a.Tenants = tenants.NewService(a.Gateway)
	a.Orders = orders.NewService(a.Gateway)
	a.Dashboard = dashboard.NewService(a.Gateway)
	a.Monitor = inactivity.New(a.Auth, cfg.GetIdleTimeout(), inactivity.WithClock(a.nowFunc))

	a.unsubscribe = append(a.unsubscribe, a.Gateway.OnSessionExpired(a.Monitor.SessionExpired))
	return a, nil
}

func newPersister(cfg config.Config) (session.Persister, error) {
	folder := cfg.GetDataFolder()
	switch cfg.GetSessionBackend() {
	case config.SessionBackendSQLite:
		if err := os.MkdirAll(folder, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data folder: %w", err)
		}
		return sqlitepersister.New(filepath.Join(folder, sqliteFile))
	default:
		return filepersister.New(folder, cfg.GetSessionSecret())
	}
}

// Login signs in and arms the idle deadline.
func (a *App) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	resp, err := a.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.Store.Touch(a.nowFunc())
	a.Monitor.Arm()
	return resp, nil
}

// Resume picks up a persisted session. A session idle for longer than the timeout is
// logged out and reported as ErrSessionExpired.
func (a *App) Resume(ctx context.Context) (*users.User, error) {
	if !a.Store.IsAuthenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}

	if last := a.Store.LastActiveAt(); !last.IsZero() {
		if idle := a.nowFunc().Sub(last); idle >= a.Monitor.Timeout() {
			log.Info().Dur("idle", idle).Msg("Persisted session is past the idle timeout")
			a.Auth.Logout(ctx)
			return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "idle for %s", idle.Round(time.Second))
		}
	}

	a.Monitor.Arm()
	a.Store.Touch(a.nowFunc())
	return a.Store.User(), nil
}

// Observe records an interaction: it pushes back the idle deadline and the persisted
// last-activity time.
func (a *App) Observe(event inactivity.Event) {
	if !a.Monitor.Armed() {
		return
	}
	a.Monitor.Observe(event)
	a.Store.Touch(a.nowFunc())
}

// Logout ends the session whether or not the monitor is armed.
func (a *App) Logout(ctx context.Context) {
	a.Monitor.Logout(ctx)
}

// RequireRole fails with ErrForbiddenRole unless the signed in user has role.
func (a *App) RequireRole(role users.Role) error {
	user := a.Store.User()
	if user == nil {
		return apperrors.ErrNotAuthenticated
	}
	if user.Role != role {
		return apperrors.Wrapf(apperrors.ErrForbiddenRole, "%s requires %s", user.Role, role)
	}
	return nil
}

// Status describes the current session for display.
type Status struct {
	User          *users.User `json:"user,omitempty" yaml:"user,omitempty"`
	Authenticated bool        `json:"authenticated" yaml:"authenticated"`
	TokenExpires  time.Time   `json:"tokenExpires,omitempty" yaml:"tokenExpires,omitempty"`
	LastActiveAt  time.Time   `json:"lastActiveAt,omitempty" yaml:"lastActiveAt,omitempty"`
	IdleRemaining string      `json:"idleRemaining,omitempty" yaml:"idleRemaining,omitempty"`
	Sections      []string    `json:"sections,omitempty" yaml:"sections,omitempty"`
	// Verified is set only when the server was asked whether the access token is valid.
	Verified *bool `json:"verified,omitempty" yaml:"verified,omitempty"`
}

func (a *App) Status() Status {
	snapshot := a.Store.Snapshot()
	st := Status{
		User:          snapshot.User,
		Authenticated: a.Store.IsAuthenticated(),
		LastActiveAt:  snapshot.LastActiveAt,
	}
	if !st.Authenticated {
		return st
	}

	// Display only; the server decides whether the token is still good.
	if claims, err := jwt.Inspect(snapshot.AccessToken); err == nil {
		st.TokenExpires = claims.ExpiresAt
	}
	if remaining := a.Monitor.Remaining(); remaining > 0 {
		st.IdleRemaining = remaining.Round(time.Second).String()
	}
	for _, section := range snapshot.User.Role.Sections() {
		st.Sections = append(st.Sections, string(section))
	}
	return st
}

// Close stops the monitor without logging out and releases the persister.
func (a *App) Close() error {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.Monitor.Stop()
	if closer, ok := a.persister.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

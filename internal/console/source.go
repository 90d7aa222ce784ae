package console

import (
	"context"
	"time"

	"github.com/jrsteele09/rxadmin/dashboard"
	"github.com/jrsteele09/rxadmin/inactivity"
	"github.com/jrsteele09/rxadmin/internal/app"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/users"
	"golang.org/x/sync/errgroup"
)

// Snapshot is everything one screen refresh shows.
type Snapshot struct {
	Stats     *dashboard.Stats
	Companies []tenants.Tenant
	Orders    []orders.Order
}

// Source is what the console needs from the running app.
type Source interface {
	User() *users.User
	Load(ctx context.Context) (Snapshot, error)
	Observe(event inactivity.Event)
	IdleRemaining() time.Duration
	Logout(ctx context.Context)
}

type appSource struct {
	a *app.App
}

func (s appSource) User() *users.User { return s.a.Store.User() }

func (s appSource) Observe(event inactivity.Event) { s.a.Observe(event) }

func (s appSource) IdleRemaining() time.Duration { return s.a.Monitor.Remaining() }

func (s appSource) Logout(ctx context.Context) { s.a.Logout(ctx) }

// Load fetches the dashboard and the role's list view concurrently. Super admins see
// every company; company admins see their own orders.
func (s appSource) Load(ctx context.Context) (Snapshot, error) {
	user := s.User()
	if user == nil {
		return Snapshot{}, nil
	}

	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.a.Dashboard.Stats(ctx, user.Role)
		snap.Stats = stats
		return err
	})
	if user.IsSuperAdmin() {
		g.Go(func() error {
			list, err := s.a.Tenants.List(ctx)
			snap.Companies = list
			return err
		})
	} else if tenant := user.Tenant(); tenant != "" {
		g.Go(func() error {
			list, err := s.a.Tenants.Orders(ctx, tenant)
			snap.Orders = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

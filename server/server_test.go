package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/rxadmin/auth"
	"github.com/jrsteele09/rxadmin/dashboard"
	"github.com/jrsteele09/rxadmin/gateway"
	"github.com/jrsteele09/rxadmin/internal/config"
	"github.com/jrsteele09/rxadmin/internal/utils"
	"github.com/jrsteele09/rxadmin/orders"
	fakeorderrepo "github.com/jrsteele09/rxadmin/orders/repofake"
	"github.com/jrsteele09/rxadmin/server"
	"github.com/jrsteele09/rxadmin/session"
	"github.com/jrsteele09/rxadmin/session/persisterfake"
	"github.com/jrsteele09/rxadmin/tenants"
	tenantrepofakes "github.com/jrsteele09/rxadmin/tenants/repofakes"
	"github.com/jrsteele09/rxadmin/token/jwt"
	"github.com/jrsteele09/rxadmin/token/refresh"
	fakerefreshrepo "github.com/jrsteele09/rxadmin/token/refresh/repofake"
	"github.com/jrsteele09/rxadmin/users"
	fakeuserrepo "github.com/jrsteele09/rxadmin/users/repofake"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	config.Config
}

func (testConfig) GetSeedCompanies() int { return 2 }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testFixture struct {
	clock  *clock
	repos  server.Repos
	server *httptest.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	clk := &clock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}

	prevJWT, prevRefresh := jwt.NowTimeFunc, refresh.NowTimeFunc
	jwt.NowTimeFunc = clk.Now
	refresh.NowTimeFunc = clk.Now
	t.Cleanup(func() {
		jwt.NowTimeFunc = prevJWT
		refresh.NowTimeFunc = prevRefresh
	})

	repos := server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Tenants:       tenantrepofakes.NewFakeTenantRepo(),
		Orders:        fakeorderrepo.NewFakeOrderRepo(),
		RefreshTokens: fakerefreshrepo.NewFakeRefreshTokenRepo(),
	}
	srv, err := server.New(testConfig{Config: config.New()}, repos, server.WithNowFunc(clk.Now))
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testFixture{clock: clk, repos: repos, server: ts}
}

type client struct {
	store   *session.Store
	gw      *gateway.Client
	auth    *auth.Service
	tenants *tenants.Service
	orders  *orders.Service
	stats   *dashboard.Service
	expired atomic.Int32
}

func (f *testFixture) newClient(t *testing.T) *client {
	t.Helper()
	store := session.NewStore(persisterfake.NewFakePersister(), "test-session")
	gw := gateway.New(f.server.URL+"/dev", store)
	c := &client{
		store:   store,
		gw:      gw,
		auth:    auth.NewService(gw, store),
		tenants: tenants.NewService(gw),
		orders:  orders.NewService(gw),
		stats:   dashboard.NewService(gw),
	}
	gw.OnSessionExpired(func() { c.expired.Add(1) })
	return c
}

func (f *testFixture) login(t *testing.T, email, password string) *client {
	t.Helper()
	c := f.newClient(t)
	_, err := c.auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return c
}

func (f *testFixture) addOrder(t *testing.T, companyID string, status orders.Status, amount float64) string {
	t.Helper()
	order := &orders.Order{CompanyID: companyID, PatientID: "p1", Status: status, Amount: amount, CreatedAt: f.clock.Now()}
	require.NoError(t, f.repos.Orders.Upsert(order))
	return order.ID
}

func TestBootstrap(t *testing.T) {
	f := setupTestFixture(t)

	list, err := f.repos.Tenants.List(0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)

	demo, err := f.repos.Tenants.Get(server.DemoCompanyID)
	require.NoError(t, err)
	require.Equal(t, tenants.StatusActive, demo.Status)

	admin, err := f.repos.Users.GetByEmail(server.DemoSuperAdminEmail)
	require.NoError(t, err)
	require.True(t, admin.IsSuperAdmin())

	company, err := f.repos.Users.GetByEmail(server.DemoCompanyAdminEmail)
	require.NoError(t, err)
	require.Equal(t, server.DemoCompanyID, company.Tenant())
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		c := f.newClient(t)
		resp, err := c.auth.Login(ctx, server.DemoSuperAdminEmail, server.DemoSuperAdminPassword)
		require.NoError(t, err)
		require.Equal(t, server.DemoSuperAdminEmail, resp.User.Email)
		require.Equal(t, 900, resp.ExpiresIn)
		require.True(t, c.store.IsAuthenticated())
		require.True(t, c.auth.Validate(ctx))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.newClient(t).auth.Login(ctx, "nobody@example.com", "x")
		require.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
		require.Contains(t, auth.FriendlyLoginError(err), "Account not found")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.newClient(t).auth.Login(ctx, server.DemoCompanyAdminEmail, "wrong")
		require.Equal(t, http.StatusUnauthorized, gateway.StatusCode(err))
	})

	t.Run("blocked account", func(t *testing.T) {
		require.NoError(t, f.repos.Users.SetBlocked(server.DemoCompanyAdminEmail, true))
		t.Cleanup(func() { _ = f.repos.Users.SetBlocked(server.DemoCompanyAdminEmail, false) })

		_, err := f.newClient(t).auth.Login(ctx, server.DemoCompanyAdminEmail, server.DemoCompanyAdminPassword)
		require.Equal(t, http.StatusForbidden, gateway.StatusCode(err))
		require.Equal(t, "account is blocked", auth.FriendlyLoginError(err))
	})

	t.Run("too many attempts", func(t *testing.T) {
		c := f.newClient(t)
		for i := 0; i < 5; i++ {
			_, err := c.auth.Login(ctx, "limited@example.com", "x")
			require.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
		}
		_, err := c.auth.Login(ctx, "limited@example.com", "x")
		require.Equal(t, http.StatusTooManyRequests, gateway.StatusCode(err))

		f.clock.Advance(16 * time.Minute)
		_, err = c.auth.Login(ctx, "limited@example.com", "x")
		require.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
	})
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	c := f.login(t, server.DemoSuperAdminEmail, server.DemoSuperAdminPassword)
	firstAccess, firstRefresh := c.store.AccessToken(), c.store.RefreshToken()

	f.clock.Advance(16 * time.Minute)
	require.False(t, c.auth.Validate(ctx))

	list, err := c.tenants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NotEqual(t, firstAccess, c.store.AccessToken())
	require.NotEqual(t, firstRefresh, c.store.RefreshToken())
	require.Zero(t, c.expired.Load())

	t.Run("concurrent callers share one refresh", func(t *testing.T) {
		f.clock.Advance(16 * time.Minute)
		before := c.store.RefreshToken()

		var wg sync.WaitGroup
		errs := make([]error, 10)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = c.stats.Stats(ctx, users.RoleSuperAdmin)
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}
		require.NotEqual(t, before, c.store.RefreshToken())
		require.Zero(t, c.expired.Load())
	})
}

func TestExpiredRefreshTokenEndsSession(t *testing.T) {
	f := setupTestFixture(t)
	c := f.login(t, server.DemoSuperAdminEmail, server.DemoSuperAdminPassword)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err := c.tenants.List(context.Background())
	require.Error(t, err)
	require.EqualValues(t, 1, c.expired.Load())
}

func TestLogoutRevokesSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	c := f.login(t, server.DemoSuperAdminEmail, server.DemoSuperAdminPassword)
	user, access, refreshToken := c.store.User(), c.store.AccessToken(), c.store.RefreshToken()

	c.auth.Logout(ctx)
	require.False(t, c.store.IsAuthenticated())

	stale := f.newClient(t)
	stale.store.SetSession(user, access, refreshToken)

	_, err := stale.tenants.List(ctx)
	require.True(t, gateway.IsForbidden(err))
	require.EqualValues(t, 1, stale.expired.Load())

	// Once the access token has aged out the refresh is attempted, and refused.
	f.clock.Advance(16 * time.Minute)
	_, err = stale.tenants.List(ctx)
	require.Error(t, err)
	require.EqualValues(t, 2, stale.expired.Load())
}

func TestDashboard(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.addOrder(t, server.DemoCompanyID, orders.StatusPending, 100)

	t.Run("super admin", func(t *testing.T) {
		c := f.login(t, server.DemoSuperAdminEmail, server.DemoSuperAdminPassword)
		stats, err := c.stats.Stats(ctx, users.RoleSuperAdmin)
		require.NoError(t, err)
		require.NotNil(t, stats.Companies)
		require.Equal(t, 3, stats.Companies.Total)
		require.Equal(t, 2, stats.Users.Total)
		require.GreaterOrEqual(t, stats.Orders.Pending, 1)
	})

	t.Run("company admin", func(t *testing.T) {
		c := f.login(t, server.DemoCompanyAdminEmail, server.DemoCompanyAdminPassword)
		stats, err := c.stats.Stats(ctx, users.RoleCompanyAdmin)
		require.NoError(t, err)
		require.Nil(t, stats.Companies)
		require.Equal(t, 1, stats.Users.Total)

		own, err := f.repos.Orders.ListByCompany(server.DemoCompanyID)
		require.NoError(t, err)
		require.Equal(t, len(own), stats.Orders.Total)
	})
}

func TestRoleGating(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	c := f.login(t, server.DemoCompanyAdminEmail, server.DemoCompanyAdminPassword)

	_, err := c.tenants.List(ctx)
	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "INSUFFICIENT_ROLE", apiErr.Code)
	require.Zero(t, c.expired.Load())

	own, err := c.tenants.Get(ctx, server.DemoCompanyID)
	require.NoError(t, err)
	require.Equal(t, "Demo Pharmacy", own.Name)

	all, err := f.repos.Tenants.List(0, 0)
	require.NoError(t, err)
	for _, other := range all {
		if other.ID == server.DemoCompanyID {
			continue
		}
		_, err := c.tenants.Get(ctx, other.ID)
		require.True(t, gateway.IsNotFound(err))

		_, err = c.tenants.Orders(ctx, other.ID)
		require.True(t, gateway.IsNotFound(err))
	}

	_, err = c.tenants.Update(ctx, server.DemoCompanyID, tenants.Update{Status: utils.Ptr(tenants.StatusSuspended)})
	require.Equal(t, http.StatusUnauthorized, gateway.StatusCode(err))

	updated, err := c.tenants.Update(ctx, server.DemoCompanyID, tenants.Update{Phone: utils.Ptr("555-0100")})
	require.NoError(t, err)
	require.Equal(t, "555-0100", updated.Phone)
}

func TestTenantLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	c := f.login(t, server.DemoSuperAdminEmail, server.DemoSuperAdminPassword)

	created, err := c.tenants.Create(ctx, tenants.CreateRequest{
		Name:  "Northside Rx",
		Owner: tenants.Owner{Name: "Nora North", Email: "nora@northside.example", Password: "Northside1"},
	})
	require.NoError(t, err)
	require.Equal(t, tenants.StatusActive, created.Status)

	owner := f.login(t, "nora@northside.example", "Northside1")
	require.Equal(t, created.ID, owner.store.User().Tenant())

	_, err = c.tenants.Create(ctx, tenants.CreateRequest{
		Name:  "Duplicate",
		Owner: tenants.Owner{Name: "Nora North", Email: "nora@northside.example", Password: "Northside1"},
	})
	require.Equal(t, http.StatusConflict, gateway.StatusCode(err))

	cfg := tenants.IntegrationConfig{Stripe: tenants.StripeConfig{PublishableKey: "pk_test", SecretKey: "sk_test_1234"}}
	withKeys, err := owner.tenants.SetIntegrationConfig(ctx, created.ID, cfg)
	require.NoError(t, err)
	require.Equal(t, cfg, *withKeys.APIKeys)

	require.NoError(t, c.tenants.Delete(ctx, created.ID))
	_, err = c.tenants.Get(ctx, created.ID)
	require.True(t, gateway.IsNotFound(err))
	require.True(t, gateway.IsNotFound(c.tenants.Delete(ctx, created.ID)))
}

func TestOrderActions(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	c := f.login(t, server.DemoCompanyAdminEmail, server.DemoCompanyAdminPassword)

	t.Run("cancel", func(t *testing.T) {
		id := f.addOrder(t, server.DemoCompanyID, orders.StatusProcessing, 80)
		order, err := c.orders.Cancel(ctx, id, "patient request")
		require.NoError(t, err)
		require.Equal(t, orders.StatusCancelled, order.Status)

		_, err = c.orders.Cancel(ctx, id, "again")
		require.Equal(t, http.StatusConflict, gateway.StatusCode(err))

		_, err = c.orders.Refund(ctx, id, nil, "")
		require.Equal(t, http.StatusConflict, gateway.StatusCode(err))
	})

	t.Run("partial then full refund", func(t *testing.T) {
		id := f.addOrder(t, server.DemoCompanyID, orders.StatusDelivered, 100)

		_, err := c.orders.Refund(ctx, id, utils.Ptr(150.0), "too much")
		require.Equal(t, http.StatusBadRequest, gateway.StatusCode(err))

		order, err := c.orders.Refund(ctx, id, utils.Ptr(40.0), "damaged")
		require.NoError(t, err)
		require.Equal(t, orders.StatusDelivered, order.Status)
		require.InDelta(t, 40.0, order.RefundedAmount, 0.001)

		order, err = c.orders.Refund(ctx, id, nil, "rest")
		require.NoError(t, err)
		require.Equal(t, orders.StatusRefunded, order.Status)
		require.InDelta(t, 100.0, order.RefundedAmount, 0.001)

		_, err = c.orders.Refund(ctx, id, nil, "")
		require.Equal(t, http.StatusConflict, gateway.StatusCode(err))
	})

	t.Run("other company's order", func(t *testing.T) {
		id := f.addOrder(t, "someone-else", orders.StatusPending, 10)
		_, err := c.orders.Get(ctx, id)
		require.True(t, gateway.IsNotFound(err))
	})

	t.Run("active orders count follows cancellations", func(t *testing.T) {
		id := f.addOrder(t, server.DemoCompanyID, orders.StatusPending, 10)
		_, err := c.orders.Cancel(ctx, id, "")
		require.NoError(t, err)

		list, err := f.repos.Orders.ListByCompany(server.DemoCompanyID)
		require.NoError(t, err)
		active := 0
		for _, o := range list {
			if o.Status == orders.StatusPending || o.Status == orders.StatusProcessing || o.Status == orders.StatusShipped {
				active++
			}
		}

		company, err := c.tenants.Get(ctx, server.DemoCompanyID)
		require.NoError(t, err)
		require.Equal(t, active, company.ActiveOrders)
	})
}

func TestHTTPSurface(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("base path", func(t *testing.T) {
		resp, err := http.Get(f.server.URL + "/dev/health")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		resp, err = http.Get(f.server.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, f.server.URL+"/dev/admin/tenants", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
		require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("missing bearer", func(t *testing.T) {
		resp, err := http.Get(f.server.URL + "/dev/admin/dashboard")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

package tenants_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/rxadmin/gateway"
	"github.com/jrsteele09/rxadmin/gateway/doerfake"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/internal/utils"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	doer    *doerfake.FakeDoer
	service *tenants.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	doer := doerfake.NewFakeDoer()
	return &testFixture{doer: doer, service: tenants.NewService(doer)}
}

func TestList(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodGet, "/admin/tenants", []tenants.Tenant{{ID: "t-1", Name: "Acme Pharmacy"}, {ID: "t-2", Name: "Bolt Rx"}})

	list, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Bolt Rx", list[1].Name)
}

func TestGet(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodGet, "/admin/tenants/t-1", tenants.Tenant{
		ID:   "t-1",
		Name: "Acme Pharmacy",
		APIKeys: &tenants.IntegrationConfig{
			Stripe: tenants.StripeConfig{PublishableKey: "pk_test", SecretKey: "sk_test_123456"},
		},
	})

	tenant, err := f.service.Get(context.Background(), "t-1")
	require.NoError(t, err)
	require.Equal(t, "sk_test_123456", tenant.APIKeys.Stripe.SecretKey)

	_, err = f.service.Get(context.Background(), "missing")
	require.True(t, gateway.IsNotFound(err))

	_, err = f.service.Get(context.Background(), " ")
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidArgs))
}

func TestCreate(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodPost, "/admin/tenants", tenants.Tenant{ID: "t-9", Name: "New Co"})

	req := tenants.CreateRequest{
		Name:  "New Co",
		Owner: tenants.Owner{Name: "Owner One", Email: "owner@newco.test", Password: "s3cret!"},
	}
	tenant, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "t-9", tenant.ID)
	require.JSONEq(t, `{"name":"New Co","owner":{"name":"Owner One","email":"owner@newco.test","password":"s3cret!"}}`, f.doer.BodyJSON(0))

	t.Run("rejects incomplete requests locally", func(t *testing.T) {
		for _, bad := range []tenants.CreateRequest{
			{Owner: req.Owner},
			{Name: "x", Owner: tenants.Owner{Email: "a@b.c", Password: "p"}},
			{Name: "x", Owner: tenants.Owner{Name: "o", Email: "nope", Password: "p"}},
			{Name: "x", Owner: tenants.Owner{Name: "o", Email: "a@b.c"}},
		} {
			_, err := f.service.Create(context.Background(), bad)
			require.True(t, apperrors.Is(err, apperrors.ErrInvalidArgs))
		}
		require.Len(t, f.doer.Requests(), 1)
	})
}

func TestUpdate(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodPatch, "/admin/tenants/t-1", tenants.Tenant{ID: "t-1", Name: "Renamed"})

	suspended := tenants.StatusSuspended
	tenant, err := f.service.Update(context.Background(), "t-1", tenants.Update{Name: utils.Ptr("Renamed"), Status: &suspended})
	require.NoError(t, err)
	require.Equal(t, "Renamed", tenant.Name)
	require.JSONEq(t, `{"name":"Renamed","status":"SUSPENDED"}`, f.doer.BodyJSON(0))

	_, err = f.service.Update(context.Background(), "t-1", tenants.Update{})
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidArgs))
}

func TestUpdateApply(t *testing.T) {
	tenant := &tenants.Tenant{Name: "Acme", City: "Austin", Status: tenants.StatusActive}
	tenants.Update{City: utils.Ptr("Boston")}.Apply(tenant)

	require.Equal(t, "Acme", tenant.Name)
	require.Equal(t, "Boston", tenant.City)
	require.Equal(t, tenants.StatusActive, tenant.Status)
}

func TestDelete(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodDelete, "/admin/tenants/t-1", nil)

	require.NoError(t, f.service.Delete(context.Background(), "t-1"))
	reqs := f.doer.Requests()
	require.Len(t, reqs, 1)
	require.Nil(t, reqs[0].Body)
}

func TestOrders(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodGet, "/admin/tenants/t-1/orders", []orders.Order{{ID: "o-1", CompanyID: "t-1", Status: orders.StatusShipped}})

	list, err := f.service.Orders(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, orders.StatusShipped, list[0].Status)
}

func TestSetIntegrationConfig(t *testing.T) {
	f := setupTestFixture(t)
	f.doer.On(http.MethodPost, "/admin/tenants/t-1/integration-configuration", tenants.Tenant{ID: "t-1"})

	cfg := tenants.IntegrationConfig{
		Curexa: tenants.CurexaConfig{ClientKey: "ck", ClientSecret: "cs"},
		MDI:    tenants.MDIConfig{ClientID: "mi", ClientSecret: "ms"},
		Stripe: tenants.StripeConfig{PublishableKey: "pk", SecretKey: "sk"},
	}
	_, err := f.service.SetIntegrationConfig(context.Background(), "t-1", cfg)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"curexa": {"clientKey": "ck", "clientSecret": "cs"},
		"mdi": {"clientId": "mi", "clientSecret": "ms"},
		"stripe": {"publishableKey": "pk", "secretKey": "sk"}
	}`, f.doer.BodyJSON(0))
}

func TestRedacted(t *testing.T) {
	cfg := tenants.IntegrationConfig{
		Curexa: tenants.CurexaConfig{ClientKey: "key", ClientSecret: "abcdefgh"},
		Stripe: tenants.StripeConfig{SecretKey: "abc"},
	}
	redacted := cfg.Redacted()
	require.Equal(t, "****efgh", redacted.Curexa.ClientSecret)
	require.Equal(t, "key", redacted.Curexa.ClientKey)
	require.Equal(t, "***", redacted.Stripe.SecretKey)
	require.Equal(t, "abcdefgh", cfg.Curexa.ClientSecret)
}

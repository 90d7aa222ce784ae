package dashboard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/rxadmin/dashboard"
	"github.com/jrsteele09/rxadmin/gateway"
	"github.com/jrsteele09/rxadmin/gateway/doerfake"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/stretchr/testify/require"
)

func sampleStats() dashboard.Stats {
	return dashboard.Stats{
		Companies: &dashboard.CompanyStats{Total: 12, Active: 10, Suspended: 2, NewThisMonth: 1},
		Users:     dashboard.CountStats{Total: 40, NewThisMonth: 4},
		Orders:    dashboard.OrderStats{Total: 300, ThisMonth: 25, Pending: 3},
		Patients:  dashboard.CountStats{Total: 220, NewThisMonth: 9},
		Revenue:   dashboard.RevenueStats{Total: 51234.5, ThisMonth: 4200},
		Intakes:   dashboard.IntakeStats{Total: 90, Completed: 70, Abandoned: 20},
	}
}

func TestStats(t *testing.T) {
	t.Run("super admin sees companies", func(t *testing.T) {
		doer := doerfake.NewFakeDoer().On(http.MethodGet, dashboard.AdminDashboardPath, sampleStats())

		stats, err := dashboard.NewService(doer).Stats(context.Background(), users.RoleSuperAdmin)
		require.NoError(t, err)
		require.NotNil(t, stats.Companies)
		require.Equal(t, 12, stats.Companies.Total)
		require.Equal(t, 4200.0, stats.Revenue.ThisMonth)
		require.Len(t, doer.Requests(), 1)
	})

	t.Run("company admin does not", func(t *testing.T) {
		doer := doerfake.NewFakeDoer().On(http.MethodGet, dashboard.AdminDashboardPath, sampleStats())

		stats, err := dashboard.NewService(doer).Stats(context.Background(), users.RoleCompanyAdmin)
		require.NoError(t, err)
		require.Nil(t, stats.Companies)
		require.Equal(t, 220, stats.Patients.Total)
	})

	t.Run("falls back to legacy stats", func(t *testing.T) {
		doer := doerfake.NewFakeDoer().On(http.MethodGet, dashboard.LegacyStatsPath, sampleStats())

		stats, err := dashboard.NewService(doer).Stats(context.Background(), users.RoleSuperAdmin)
		require.NoError(t, err)
		require.Equal(t, 300, stats.Orders.Total)

		reqs := doer.Requests()
		require.Len(t, reqs, 2)
		require.Equal(t, dashboard.AdminDashboardPath, reqs[0].Path)
		require.Equal(t, dashboard.LegacyStatsPath, reqs[1].Path)
	})

	t.Run("other failures do not fall back", func(t *testing.T) {
		doer := doerfake.NewFakeDoer().
			Fail(http.MethodGet, dashboard.AdminDashboardPath, &gateway.APIError{StatusCode: http.StatusInternalServerError}).
			On(http.MethodGet, dashboard.LegacyStatsPath, sampleStats())

		_, err := dashboard.NewService(doer).Stats(context.Background(), users.RoleSuperAdmin)
		require.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
		require.Len(t, doer.Requests(), 1)
	})
}

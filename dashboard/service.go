// Package dashboard fetches the aggregate figures shown on the admin landing page.
package dashboard

import (
	"context"
	"net/http"

	"github.com/jrsteele09/rxadmin/gateway"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

const (
	AdminDashboardPath = "/admin/dashboard"
	LegacyStatsPath    = "/dashboard/stats"
)

type Service struct {
	gw gateway.Doer
}

func NewService(gw gateway.Doer) *Service {
	return &Service{gw: gw}
}

// Stats returns the dashboard for role. Deployments without /admin/dashboard answer
// 404 and are asked for /dashboard/stats instead. Company admins never see the
// platform-wide company figures.
func (s *Service) Stats(ctx context.Context, role users.Role) (*Stats, error) {
	var stats Stats
	err := s.gw.Do(ctx, gateway.NewRequest(http.MethodGet, AdminDashboardPath, nil), &stats)
	if gateway.IsNotFound(err) {
		log.Debug().Str("path", LegacyStatsPath).Msg("Admin dashboard not available, using legacy stats")
		stats = Stats{}
		err = s.gw.Do(ctx, gateway.NewRequest(http.MethodGet, LegacyStatsPath, nil), &stats)
	}
	if err != nil {
		return nil, err
	}

	if role != users.RoleSuperAdmin {
		stats.Companies = nil
	}
	return &stats, nil
}

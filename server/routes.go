package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	public := s.APIMiddleware()
	authed := s.APIMiddleware(s.RequireAuth())
	superAdmin := s.APIMiddleware(s.RequireAuth(), s.RequireSuperAdmin())

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), public...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteAuthValidate, ChainMiddleware(s.ValidateHandler(), public...))

	// DASHBOARD
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.DashboardHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteDashboardStats, ChainMiddleware(s.DashboardHandler(), authed...))

	// COMPANIES
	s.RegisterRouteHandler("GET "+RouteAdminTenants, ChainMiddleware(s.TenantsListHandler(), superAdmin...))
	s.RegisterRouteHandler("POST "+RouteAdminTenants, ChainMiddleware(s.TenantCreateHandler(), superAdmin...))
	s.RegisterRouteHandler("GET "+RouteAdminTenant, ChainMiddleware(s.TenantGetHandler(), authed...))
	s.RegisterRouteHandler("PATCH "+RouteAdminTenant, ChainMiddleware(s.TenantUpdateHandler(), authed...))
	s.RegisterRouteHandler("DELETE "+RouteAdminTenant, ChainMiddleware(s.TenantDeleteHandler(), superAdmin...))
	s.RegisterRouteHandler("GET "+RouteAdminTenantOrders, ChainMiddleware(s.TenantOrdersHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteAdminTenantIntegration, ChainMiddleware(s.TenantIntegrationHandler(), authed...))

	// ORDERS
	s.RegisterRouteHandler("GET "+RouteAdminOrder, ChainMiddleware(s.OrderGetHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteAdminOrderRefund, ChainMiddleware(s.OrderRefundHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteAdminOrderCancel, ChainMiddleware(s.OrderCancelHandler(), authed...))

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, public...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": s.env})
	}
}

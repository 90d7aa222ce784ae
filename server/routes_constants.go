package server

// Route path constants, relative to the configured base path ("/dev").
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthValidate = "/auth/validate"

	// Dashboard Routes
	RouteAdminDashboard = "/admin/dashboard"
	RouteDashboardStats = "/dashboard/stats" // Older deployments

	// Company Routes
	RouteAdminTenants           = "/admin/tenants"
	RouteAdminTenant            = "/admin/tenants/{id}"
	RouteAdminTenantOrders      = "/admin/tenants/{id}/orders"
	RouteAdminTenantIntegration = "/admin/tenants/{id}/integration-configuration"

	// Order Routes
	RouteAdminOrder       = "/admin/orders/{id}"
	RouteAdminOrderRefund = "/admin/orders/{id}/refund"
	RouteAdminOrderCancel = "/admin/orders/{id}/cancel"

	RouteHealth = "/health"
)

package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/rxadmin/dashboard"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/token/jwt"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

// DashboardHandler returns the stats for the caller's role. Company admins only see their
// own company and get no companies block.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		stats, err := s.dashboardStats(claims)
		if err != nil {
			log.Err(err).Msg("Failed to build dashboard stats")
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to build dashboard stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) TenantsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := s.repos.Tenants.List(offset, limit)
		if err != nil {
			log.Err(err).Msg("Failed to list companies")
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to list companies")
			return
		}
		if list == nil {
			list = []*tenants.Tenant{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// TenantCreateHandler creates a company together with its first company admin.
func (s *Server) TenantCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenants.CreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		if _, err := s.repos.Users.GetByEmail(req.Owner.Email); err == nil {
			writeError(w, http.StatusConflict, codeConflict, "an account already exists for "+req.Owner.Email)
			return
		}

		hash, err := users.HashPassword(req.Owner.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to hash password")
			return
		}

		now := s.nowFunc()
		tenant := &tenants.Tenant{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(req.Name),
			Status:    tenants.StatusActive,
			Email:     req.Owner.Email,
			CreatedAt: now,
		}
		if err := s.repos.Tenants.Upsert(tenant); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to store company")
			return
		}

		firstName, lastName, _ := strings.Cut(strings.TrimSpace(req.Owner.Name), " ")
		owner := &users.Account{
			User: users.User{
				Role:      users.RoleCompanyAdmin,
				FirstName: firstName,
				LastName:  strings.TrimSpace(lastName),
				Email:     req.Owner.Email,
				CompanyID: tenant.ID,
				TenantID:  tenant.ID,
			},
			PasswordHash: hash,
			DateJoined:   now,
		}
		if err := s.repos.Users.Upsert(owner); err != nil {
			_ = s.repos.Tenants.Delete(tenant.ID)
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to store company owner")
			return
		}

		log.Info().Str("tenant", tenant.ID).Str("owner", owner.Email).Msg("Company created")
		writeJSON(w, http.StatusCreated, tenant)
	}
}

func (s *Server) TenantGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := s.accessibleTenant(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

func (s *Server) TenantUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := s.accessibleTenant(w, r)
		if !ok {
			return
		}
		var update tenants.Update
		if !decodeJSON(w, r, &update) {
			return
		}
		if update.Empty() {
			writeError(w, http.StatusBadRequest, codeBadRequest, "no fields to update")
			return
		}
		if update.Status != nil && !claimsFromContext(r.Context()).User().IsSuperAdmin() {
			writeError(w, http.StatusUnauthorized, codeInsufficientRole, "only a super admin can change a company's status")
			return
		}

		update.Apply(tenant)
		if err := s.repos.Tenants.Upsert(tenant); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to store company")
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

func (s *Server) TenantDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.repos.Tenants.Delete(id); err != nil {
			if apperrors.IsNotFound(err) {
				writeError(w, http.StatusNotFound, codeNotFound, "company not found")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to delete company")
			return
		}
		log.Info().Str("tenant", id).Msg("Company deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TenantOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := s.accessibleTenant(w, r)
		if !ok {
			return
		}
		list, err := s.repos.Orders.ListByCompany(tenant.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to list orders")
			return
		}
		if list == nil {
			list = []*orders.Order{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// TenantIntegrationHandler replaces the company's Curexa, MDI and Stripe credentials.
func (s *Server) TenantIntegrationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := s.accessibleTenant(w, r)
		if !ok {
			return
		}
		var cfg tenants.IntegrationConfig
		if !decodeJSON(w, r, &cfg) {
			return
		}
		tenant.APIKeys = &cfg
		if err := s.repos.Tenants.Upsert(tenant); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to store integration configuration")
			return
		}
		log.Info().Str("tenant", tenant.ID).Msg("Integration configuration updated")
		writeJSON(w, http.StatusOK, tenant)
	}
}

func (s *Server) OrderGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, ok := s.accessibleOrder(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// OrderRefundHandler refunds part or, without an amount, all of what is left on an order.
func (s *Server) OrderRefundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, ok := s.accessibleOrder(w, r)
		if !ok {
			return
		}
		var req orders.RefundRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !order.Refundable() {
			writeError(w, http.StatusConflict, codeInvalidOrderState, "order cannot be refunded in status "+string(order.Status))
			return
		}

		remaining := roundCents(order.Amount - order.RefundedAmount)
		amount := remaining
		if req.Amount != nil {
			amount = roundCents(*req.Amount)
		}
		if amount <= 0 || amount > remaining {
			writeError(w, http.StatusBadRequest, codeBadRequest, "refund amount must be between 0 and "+strconv.FormatFloat(remaining, 'f', 2, 64))
			return
		}

		order.RefundedAmount = roundCents(order.RefundedAmount + amount)
		if order.RefundedAmount >= order.Amount {
			order.Status = orders.StatusRefunded
		}
		if !s.storeOrder(w, order) {
			return
		}
		log.Info().Str("order", order.ID).Float64("amount", amount).Str("reason", req.Reason).Msg("Order refunded")
		writeJSON(w, http.StatusOK, order)
	}
}

func (s *Server) OrderCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, ok := s.accessibleOrder(w, r)
		if !ok {
			return
		}
		var req orders.CancelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !order.Cancellable() {
			writeError(w, http.StatusConflict, codeInvalidOrderState, "order cannot be cancelled in status "+string(order.Status))
			return
		}

		order.Status = orders.StatusCancelled
		if !s.storeOrder(w, order) {
			return
		}
		log.Info().Str("order", order.ID).Str("reason", req.Reason).Msg("Order cancelled")
		writeJSON(w, http.StatusOK, order)
	}
}

// accessibleTenant loads the {id} company. A company admin asking for another company
// gets the same 404 as for a company that does not exist.
func (s *Server) accessibleTenant(w http.ResponseWriter, r *http.Request) (*tenants.Tenant, bool) {
	id := r.PathValue("id")
	if !canAccessTenant(claimsFromContext(r.Context()), id) {
		writeError(w, http.StatusNotFound, codeNotFound, "company not found")
		return nil, false
	}
	tenant, err := s.repos.Tenants.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "company not found")
		return nil, false
	}
	return tenant, true
}

func (s *Server) accessibleOrder(w http.ResponseWriter, r *http.Request) (*orders.Order, bool) {
	order, err := s.repos.Orders.Get(r.PathValue("id"))
	if err != nil || !canAccessTenant(claimsFromContext(r.Context()), order.CompanyID) {
		writeError(w, http.StatusNotFound, codeNotFound, "order not found")
		return nil, false
	}
	return order, true
}

func (s *Server) storeOrder(w http.ResponseWriter, order *orders.Order) bool {
	order.UpdatedAt = s.nowFunc()
	if err := s.repos.Orders.Upsert(order); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to store order")
		return false
	}
	if err := s.updateTenantCounts(order.CompanyID); err != nil {
		log.Warn().Err(err).Str("tenant", order.CompanyID).Msg("Failed to update company counts")
	}
	return true
}

func canAccessTenant(claims *jwt.Claims, tenantID string) bool {
	if claims == nil {
		return false
	}
	user := claims.User()
	return user.IsSuperAdmin() || (tenantID != "" && user.Tenant() == tenantID)
}

// updateTenantCounts recomputes the order derived counters shown on a company.
func (s *Server) updateTenantCounts(tenantID string) error {
	tenant, err := s.repos.Tenants.Get(tenantID)
	if err != nil {
		return err
	}
	list, err := s.repos.Orders.ListByCompany(tenantID)
	if err != nil {
		return err
	}
	patients := make(map[string]struct{})
	tenant.ActiveOrders = 0
	for _, o := range list {
		patients[o.PatientID] = struct{}{}
		switch o.Status {
		case orders.StatusPending, orders.StatusProcessing, orders.StatusShipped:
			tenant.ActiveOrders++
		}
	}
	tenant.PatientsCount = len(patients)
	return s.repos.Tenants.Upsert(tenant)
}

func (s *Server) dashboardStats(claims *jwt.Claims) (*dashboard.Stats, error) {
	now := s.nowFunc()
	user := claims.User()
	stats := &dashboard.Stats{Orders: dashboard.OrderStats{ByStatus: make(map[string]int)}}

	var (
		list []*orders.Order
		err  error
	)
	if user.IsSuperAdmin() {
		list, err = s.repos.Orders.List()
	} else {
		list, err = s.repos.Orders.ListByCompany(user.Tenant())
	}
	if err != nil {
		return nil, err
	}

	if user.IsSuperAdmin() {
		all, err := s.repos.Tenants.List(0, 0)
		if err != nil {
			return nil, err
		}
		companies := &dashboard.CompanyStats{Total: len(all)}
		for _, t := range all {
			switch t.Status {
			case tenants.StatusActive:
				companies.Active++
			case tenants.StatusSuspended:
				companies.Suspended++
			}
			if sameMonth(t.CreatedAt, now) {
				companies.NewThisMonth++
			}
		}
		stats.Companies = companies
	}

	accounts, err := s.repos.Users.List(0, 0)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if !user.IsSuperAdmin() && a.Tenant() != user.Tenant() {
			continue
		}
		stats.Users.Total++
		if sameMonth(a.DateJoined, now) {
			stats.Users.NewThisMonth++
		}
	}

	firstOrder := make(map[string]time.Time)
	for _, o := range list {
		thisMonth := sameMonth(o.CreatedAt, now)
		stats.Orders.Total++
		stats.Orders.ByStatus[string(o.Status)]++
		switch o.Status {
		case orders.StatusPending:
			stats.Orders.Pending++
		case orders.StatusProcessing:
			stats.Orders.Processing++
		}
		if thisMonth {
			stats.Orders.ThisMonth++
			stats.Intakes.NewThisMonth++
		}

		stats.Intakes.Total++
		if o.Status == orders.StatusCancelled {
			stats.Intakes.Abandoned++
		} else {
			stats.Intakes.Completed++
			net := o.Amount - o.RefundedAmount
			stats.Revenue.Total += net
			if thisMonth {
				stats.Revenue.ThisMonth += net
			}
		}

		if first, ok := firstOrder[o.PatientID]; !ok || o.CreatedAt.Before(first) {
			firstOrder[o.PatientID] = o.CreatedAt
		}
	}
	stats.Revenue.Total = roundCents(stats.Revenue.Total)
	stats.Revenue.ThisMonth = roundCents(stats.Revenue.ThisMonth)

	stats.Patients.Total = len(firstOrder)
	for _, first := range firstOrder {
		if sameMonth(first, now) {
			stats.Patients.NewThisMonth++
		}
	}
	return stats, nil
}

func sameMonth(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	y1, m1, _ := t.Date()
	y2, m2, _ := now.Date()
	return y1 == y2 && m1 == m2
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package tenants manages pharmacy companies through the admin API.
package tenants

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/rxadmin/gateway"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/orders"
)

const adminTenantsPath = "/admin/tenants"

type Service struct {
	gw gateway.Doer
}

func NewService(gw gateway.Doer) *Service {
	return &Service{gw: gw}
}

func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	var list []Tenant
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodGet, adminTenantsPath, nil), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	path, err := tenantPath(tenantID, "")
	if err != nil {
		return nil, err
	}
	var tenant Tenant
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodGet, path, nil), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Create registers a company together with its owner account.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var tenant Tenant
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodPost, adminTenantsPath, req), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) Update(ctx context.Context, tenantID string, update Update) (*Tenant, error) {
	if update.Empty() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgs, "nothing to update")
	}
	path, err := tenantPath(tenantID, "")
	if err != nil {
		return nil, err
	}
	var tenant Tenant
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodPatch, path, update), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) Delete(ctx context.Context, tenantID string) error {
	path, err := tenantPath(tenantID, "")
	if err != nil {
		return err
	}
	return s.gw.Do(ctx, gateway.NewRequest(http.MethodDelete, path, nil), nil)
}

// Orders lists the orders placed with a company.
func (s *Service) Orders(ctx context.Context, tenantID string) ([]orders.Order, error) {
	path, err := tenantPath(tenantID, "orders")
	if err != nil {
		return nil, err
	}
	var list []orders.Order
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodGet, path, nil), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) SetIntegrationConfig(ctx context.Context, tenantID string, cfg IntegrationConfig) (*Tenant, error) {
	path, err := tenantPath(tenantID, "integration-configuration")
	if err != nil {
		return nil, err
	}
	var tenant Tenant
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodPost, path, cfg), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func tenantPath(tenantID, action string) (string, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidArgs, "company id is required")
	}
	path := adminTenantsPath + "/" + url.PathEscape(tenantID)
	if action != "" {
		path += "/" + action
	}
	return path, nil
}

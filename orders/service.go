// Package orders relays order lookups, refunds and cancellations to the admin API.
package orders

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/rxadmin/gateway"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
)

const adminOrdersPath = "/admin/orders"

type Service struct {
	gw gateway.Doer
}

func NewService(gw gateway.Doer) *Service {
	return &Service{gw: gw}
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	path, err := orderPath(orderID, "")
	if err != nil {
		return nil, err
	}
	var order Order
	if err := s.gw.Do(ctx, gateway.NewRequest(http.MethodGet, path, nil), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Refund refunds amount, or the full remaining balance when amount is nil.
func (s *Service) Refund(ctx context.Context, orderID string, amount *float64, reason string) (*Order, error) {
	if amount != nil && *amount <= 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgs, "refund amount must be positive")
	}
	path, err := orderPath(orderID, "refund")
	if err != nil {
		return nil, err
	}
	var order Order
	req := gateway.NewRequest(http.MethodPost, path, RefundRequest{Amount: amount, Reason: reason})
	if err := s.gw.Do(ctx, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) Cancel(ctx context.Context, orderID string, reason string) (*Order, error) {
	path, err := orderPath(orderID, "cancel")
	if err != nil {
		return nil, err
	}
	var order Order
	req := gateway.NewRequest(http.MethodPost, path, CancelRequest{Reason: reason})
	if err := s.gw.Do(ctx, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func orderPath(orderID, action string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidArgs, "order id is required")
	}
	path := adminOrdersPath + "/" + url.PathEscape(orderID)
	if action != "" {
		path += "/" + action
	}
	return path, nil
}

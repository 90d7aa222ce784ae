package fakeorderrepo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/orders"
)

var _ orders.Repo = (*FakeOrderRepo)(nil)

type FakeOrderRepo struct {
	orders map[string]*orders.Order
	lock   sync.RWMutex
}

func NewFakeOrderRepo() *FakeOrderRepo {
	return &FakeOrderRepo{
		orders: make(map[string]*orders.Order),
	}
}

func (or *FakeOrderRepo) Upsert(order *orders.Order) error {
	or.lock.Lock()
	defer or.lock.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	stored := *order
	or.orders[order.ID] = &stored
	return nil
}

func (or *FakeOrderRepo) Get(orderID string) (*orders.Order, error) {
	or.lock.RLock()
	defer or.lock.RUnlock()
	order, ok := or.orders[orderID]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	found := *order
	return &found, nil
}

func (or *FakeOrderRepo) ListByCompany(companyID string) ([]*orders.Order, error) {
	return or.filter(func(o *orders.Order) bool { return o.CompanyID == companyID }), nil
}

func (or *FakeOrderRepo) List() ([]*orders.Order, error) {
	return or.filter(func(*orders.Order) bool { return true }), nil
}

// filter returns copies of the matching orders, newest first.
func (or *FakeOrderRepo) filter(keep func(*orders.Order) bool) []*orders.Order {
	or.lock.RLock()
	defer or.lock.RUnlock()

	list := make([]*orders.Order, 0)
	for _, o := range or.orders {
		if keep(o) {
			found := *o
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

package orders

// Repo is the mock API's order storage.
type Repo interface {
	Upsert(order *Order) error
	Get(orderID string) (*Order, error)
	ListByCompany(companyID string) ([]*Order, error)
	List() ([]*Order, error)
}

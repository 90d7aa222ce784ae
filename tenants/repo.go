package tenants

// Repo is the mock API's company storage.
type Repo interface {
	Upsert(tenant *Tenant) error
	Delete(tenantID string) error
	Get(tenantID string) (*Tenant, error)
	List(offset, limit int) ([]*Tenant, error)
}

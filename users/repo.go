package users

// Repo stores accounts for the mock API.
type Repo interface {
	Upsert(account *Account) error
	GetByEmail(email string) (*Account, error)
	GetByID(ID string) (*Account, error)
	List(offset, limit int) ([]*Account, error)
	SetBlocked(email string, blocked bool) error
}

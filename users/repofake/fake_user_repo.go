package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // lower-cased email to account id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.Repo {
	return &FakeUserRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	stored := *account
	ur.accounts[account.ID] = &stored
	ur.emailIds[strings.ToLower(account.Email)] = account.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	found := *ur.accounts[id]
	return &found, nil
}

func (ur *FakeUserRepo) GetByID(ID string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	account, ok := ur.accounts[ID]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	found := *account
	return &found, nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	accounts := make([]*users.Account, 0, len(ur.accounts))
	for _, a := range ur.accounts {
		found := *a
		accounts = append(accounts, &found)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Email < accounts[j].Email
	})

	if offset >= len(accounts) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(accounts) {
		end = len(accounts)
	}
	return accounts[offset:end], nil
}

func (ur *FakeUserRepo) SetBlocked(email string, blocked bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return errors.ErrUserNotFound
	}
	ur.accounts[id].Blocked = blocked
	return nil
}

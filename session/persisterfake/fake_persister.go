package persisterfake

import (
	"sync"

	"github.com/jrsteele09/rxadmin/session"
)

var _ session.Persister = (*FakePersister)(nil)

// FakePersister keeps records in memory. SaveErr, when set, is returned by every Save.
type FakePersister struct {
	records map[string][]byte
	saves   int
	SaveErr error
	lock    sync.RWMutex
}

func NewFakePersister() *FakePersister {
	return &FakePersister{
		records: make(map[string][]byte),
	}
}

func (fp *FakePersister) Load(key string) ([]byte, error) {
	fp.lock.RLock()
	defer fp.lock.RUnlock()
	data, ok := fp.records[key]
	if !ok {
		return nil, session.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (fp *FakePersister) Save(key string, data []byte) error {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	fp.saves++
	if fp.SaveErr != nil {
		return fp.SaveErr
	}
	fp.records[key] = append([]byte(nil), data...)
	return nil
}

func (fp *FakePersister) Remove(key string) error {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	if _, ok := fp.records[key]; !ok {
		return session.ErrNotFound
	}
	delete(fp.records, key)
	return nil
}

// Saves counts Save calls, including failed ones.
func (fp *FakePersister) Saves() int {
	fp.lock.RLock()
	defer fp.lock.RUnlock()
	return fp.saves
}

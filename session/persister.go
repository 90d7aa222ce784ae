package session

import "errors"

// ErrNotFound is returned by a Persister when no record exists under the key.
var ErrNotFound = errors.New("session record not found")

// Persister is a durable key-value medium for the serialized session record.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Remove(key string) error
}

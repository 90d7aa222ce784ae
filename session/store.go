package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

// DefaultKey is the storage key of the persisted session record.
const DefaultKey = "auth-storage"

// Store is the single source of truth for the current identity and token pair.
// Writes go through to the Persister on a best-effort basis.
type Store struct {
	mu        sync.RWMutex
	writeMu   sync.Mutex // orders writes to the persister with writes to record
	record    Record
	persister Persister
	key       string
}

// NewStore restores any session persisted under key.
func NewStore(persister Persister, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{persister: persister, key: key}
	s.restore()
	return s
}

func (s *Store) restore() {
	data, err := s.persister.Load(s.key)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		log.Err(err).Str("key", s.key).Msg("Failed to load persisted session")
		return
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		log.Err(err).Str("key", s.key).Msg("Discarding unreadable session record")
		s.remove()
		return
	}
	if !record.complete() {
		log.Warn().Str("key", s.key).Msg("Discarding partial session record")
		s.remove()
		return
	}
	s.record = record
}

func (s *Store) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.User == nil {
		return nil
	}
	u := *s.record.User
	return &u
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.RefreshToken
}

func (s *Store) LastActiveAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.LastActiveAt
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.User != nil && s.record.AccessToken != ""
}

// SetSession replaces user and both tokens in one step.
func (s *Store) SetSession(user *users.User, accessToken, refreshToken string) {
	var u *users.User
	if user != nil {
		copied := *user
		u = &copied
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.record = Record{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		LastActiveAt: time.Now(),
	}
	record := s.record
	s.mu.Unlock()

	s.persist(record)
}

// SetTokens replaces the token pair after a refresh, leaving the user untouched.
// A store cleared while the refresh was in flight stays cleared.
func (s *Store) SetTokens(accessToken, refreshToken string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.record.User == nil {
		s.mu.Unlock()
		log.Debug().Msg("Dropping refreshed tokens, no session to attach them to")
		return
	}
	s.record.AccessToken = accessToken
	s.record.RefreshToken = refreshToken
	record := s.record
	s.mu.Unlock()

	s.persist(record)
}

// Touch records user activity so an idle timeout can be enforced across restarts.
func (s *Store) Touch(at time.Time) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.record.empty() {
		s.mu.Unlock()
		return
	}
	s.record.LastActiveAt = at
	record := s.record
	s.mu.Unlock()

	s.persist(record)
}

// Clear forgets the session and removes the persisted record. Safe to call repeatedly.
func (s *Store) Clear() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.record = Record{}
	s.mu.Unlock()

	s.remove()
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record := s.record
	if record.User != nil {
		u := *record.User
		record.User = &u
	}
	return record
}

func (s *Store) persist(record Record) {
	data, err := json.Marshal(record)
	if err != nil {
		log.Err(err).Msg("Failed to encode session record")
		return
	}
	if err := s.persister.Save(s.key, data); err != nil {
		log.Err(err).Str("key", s.key).Msg("Failed to persist session")
	}
}

func (s *Store) remove() {
	if err := s.persister.Remove(s.key); err != nil && !errors.Is(err, ErrNotFound) {
		log.Err(err).Str("key", s.key).Msg("Failed to remove persisted session")
	}
}

package server

import (
	"strings"
	"sync"
	"time"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

// loginAttempts counts failed logins per email inside a sliding window.
type loginAttempts struct {
	lock     sync.Mutex
	max      int
	window   time.Duration
	nowFunc  func() time.Time
	failures map[string][]time.Time
}

func newLoginAttempts(max int, window time.Duration, nowFunc func() time.Time) *loginAttempts {
	return &loginAttempts{
		max:      max,
		window:   window,
		nowFunc:  nowFunc,
		failures: make(map[string][]time.Time),
	}
}

// Blocked reports whether email has used up its failed attempts.
func (l *loginAttempts) Blocked(email string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.pruneLocked(strings.ToLower(email))) >= l.max
}

func (l *loginAttempts) Failed(email string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	key := strings.ToLower(email)
	l.failures[key] = append(l.pruneLocked(key), l.nowFunc())
}

func (l *loginAttempts) Reset(email string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.failures, strings.ToLower(email))
}

func (l *loginAttempts) pruneLocked(key string) []time.Time {
	cutoff := l.nowFunc().Add(-l.window)
	kept := l.failures[key][:0]
	for _, at := range l.failures[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}

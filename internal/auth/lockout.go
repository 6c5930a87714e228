package auth

import (
	"strings"
	"sync"
	"time"
)

const (
	lockoutMaxAttempts = 5
	lockoutWindow      = 5 * time.Minute
)

type attemptRecord struct {
	count     int
	blockedAt time.Time
	lastSeen  time.Time
}

// LockoutTracker counts failed logins per account and blocks further
// attempts for a cooldown window once the limit is reached. State lives
// in process memory and resets on restart.
type LockoutTracker struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	now      func() time.Time
}

// NewLockoutTracker creates an empty tracker.
func NewLockoutTracker() *LockoutTracker {
	return &LockoutTracker{
		attempts: make(map[string]*attemptRecord),
		now:      time.Now,
	}
}

// RecordFailure registers a failed attempt and reports whether the
// account is now blocked.
func (t *LockoutTracker) RecordFailure(account string) bool {
	account = normalizeAccount(account)
	if account == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	rec, ok := t.attempts[account]
	if !ok || now.Sub(rec.lastSeen) > lockoutWindow {
		rec = &attemptRecord{}
		t.attempts[account] = rec
	}
	rec.count++
	rec.lastSeen = now
	if rec.count >= lockoutMaxAttempts && rec.blockedAt.IsZero() {
		rec.blockedAt = now
	}
	return !rec.blockedAt.IsZero()
}

// Blocked reports whether the account is currently blocked and, if so,
// how long until the block expires.
func (t *LockoutTracker) Blocked(account string) (bool, time.Duration) {
	account = normalizeAccount(account)
	if account == "" {
		return false, 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[account]
	if !ok || rec.blockedAt.IsZero() {
		return false, 0
	}
	remaining := lockoutWindow - t.now().Sub(rec.blockedAt)
	if remaining <= 0 {
		delete(t.attempts, account)
		return false, 0
	}
	return true, remaining
}

// Reset clears the failure counter after a successful login.
func (t *LockoutTracker) Reset(account string) {
	account = normalizeAccount(account)
	if account == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, account)
}

// PurgeExpired drops stale records. Intended to run on a schedule.
func (t *LockoutTracker) PurgeExpired() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	purged := 0
	for account, rec := range t.attempts {
		if now.Sub(rec.lastSeen) > lockoutWindow && (rec.blockedAt.IsZero() || now.Sub(rec.blockedAt) > lockoutWindow) {
			delete(t.attempts, account)
			purged++
		}
	}
	return purged
}

func normalizeAccount(account string) string {
	return strings.TrimSpace(strings.ToLower(account))
}

package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	DefaultReplayLedgerTTL        = 10 * time.Minute
	DefaultReplayLedgerMaxEntries = 8192
)

// MemoryReplayLedger remembers claimed report keys in process memory. When
// full, the claim expiring soonest is evicted first.
type MemoryReplayLedger struct {
	mu         sync.Mutex
	defaultTTL time.Duration
	maxEntries int
	expiries   map[string]time.Time
	Now        func() time.Time
}

func NewMemoryReplayLedger(defaultTTL time.Duration, maxEntries int) *MemoryReplayLedger {
	if defaultTTL <= 0 {
		defaultTTL = DefaultReplayLedgerTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultReplayLedgerMaxEntries
	}
	return &MemoryReplayLedger{
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		expiries:   map[string]time.Time{},
	}
}

// Claim returns false when key was already claimed and has not expired.
func (l *MemoryReplayLedger) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if l == nil {
		return false, fmt.Errorf("core: replay ledger is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("core: replay key is required")
	}
	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.expiries == nil {
		l.expiries = map[string]time.Time{}
	}
	l.dropExpiredLocked(now)
	if _, seen := l.expiries[key]; seen {
		return false, nil
	}
	for len(l.expiries) >= l.limit() {
		l.evictSoonestLocked()
	}
	l.expiries[key] = now.Add(ttl)
	return true, nil
}

// Release forgets key. Releasing an unknown key is not an error.
func (l *MemoryReplayLedger) Release(_ context.Context, key string) error {
	if l == nil {
		return fmt.Errorf("core: replay ledger is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("core: replay key is required")
	}
	l.mu.Lock()
	delete(l.expiries, key)
	l.mu.Unlock()
	return nil
}

// Len reports the number of live claims.
func (l *MemoryReplayLedger) Len() int {
	if l == nil {
		return 0
	}
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropExpiredLocked(now)
	return len(l.expiries)
}

func (l *MemoryReplayLedger) clock() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l *MemoryReplayLedger) limit() int {
	if l.maxEntries <= 0 {
		return DefaultReplayLedgerMaxEntries
	}
	return l.maxEntries
}

func (l *MemoryReplayLedger) dropExpiredLocked(now time.Time) {
	for key, expiresAt := range l.expiries {
		if !now.Before(expiresAt) {
			delete(l.expiries, key)
		}
	}
}

func (l *MemoryReplayLedger) evictSoonestLocked() {
	var soonestKey string
	var soonest time.Time
	first := true
	for key, expiresAt := range l.expiries {
		if first || expiresAt.Before(soonest) {
			soonestKey, soonest, first = key, expiresAt, false
		}
	}
	if !first {
		delete(l.expiries, soonestKey)
	}
}

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMemoryMaxEntries caps the in-process store.
	DefaultMemoryMaxEntries = 10000
	memorySweepInterval     = time.Minute
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store used when Redis is not configured.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	now        func() time.Time
	maxEntries int
	lastSweep  time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
		maxEntries: DefaultMemoryMaxEntries,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists {
		m.makeRoomLocked()
	}
	m.entries[key] = e
	return nil
}

// makeRoomLocked drops expired entries at most once per sweep interval, and
// evicts the entry closest to expiry when the store is still full.
func (m *Memory) makeRoomLocked() {
	now := m.now()
	full := m.maxEntries > 0 && len(m.entries) >= m.maxEntries
	if full || now.Sub(m.lastSweep) >= memorySweepInterval {
		for k, e := range m.entries {
			if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}
	for m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		var victim string
		var soonest time.Time
		for k, e := range m.entries {
			if victim == "" || (!e.expiresAt.IsZero() && (soonest.IsZero() || e.expiresAt.Before(soonest))) {
				victim, soonest = k, e.expiresAt
			}
		}
		delete(m.entries, victim)
	}
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) InvalidatePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

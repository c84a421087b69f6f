package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/duodash/internal/models"
)

type memoryEntry struct {
	snap      models.Snapshot
	expiresAt time.Time
}

// Memory is an in-process Store with a TTL and a bound on entries. When full,
// the oldest inserted key is evicted.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]memoryEntry
	order      []string
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]memoryEntry),
	}
}

// SetClock replaces the time source. Tests only.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Get(_ context.Context, key string) (models.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return models.Snapshot{}, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.removeLocked(key)
		return models.Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

func (m *Memory) Set(_ context.Context, key string, snap models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; exists {
		m.removeLocked(key)
	}
	for len(m.order) >= m.maxEntries {
		m.removeLocked(m.order[0])
	}
	m.entries[key] = memoryEntry{snap: snap, expiresAt: m.now().Add(m.ttl)}
	m.order = append(m.order, key)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
	return nil
}

// Len returns the number of held entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) removeLocked(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

var _ Store = (*Memory)(nil)

package cache

import (
	"sync"
	"time"
)

type ttlEntry struct {
	value     string
	expiresAt time.Time
}

// TTLMap is a process-local string cache whose entries expire after ttl.
type TTLMap struct {
	mu   sync.RWMutex
	data map[string]ttlEntry
	ttl  time.Duration
	now  func() time.Time
}

func NewTTLMap(ttl time.Duration) *TTLMap {
	return &TTLMap{
		data: make(map[string]ttlEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *TTLMap) Get(key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		if current, ok := m.data[key]; ok && m.now().After(current.expiresAt) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set stores value for at most ttl, or the map default when ttl is zero.
func (m *TTLMap) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 || ttl > m.ttl {
		ttl = m.ttl
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = ttlEntry{value: value, expiresAt: m.now().Add(ttl)}
}

func (m *TTLMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *TTLMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
)

const cleanupInterval = 5 * time.Minute

// Memory хранит кэш в памяти процесса с TTL и фоновой очисткой просроченных записей.
type Memory struct {
	mu      sync.RWMutex
	cache   map[string]*cacheEntry
	version int64
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

var _ repository.MatchCache = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{
		cache: make(map[string]*cacheEntry),
		stop:  make(chan struct{}),
	}

	go m.cleanup(cleanupInterval)

	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.cache[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (m *Memory) Version(_ context.Context) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func (m *Memory) SetIfVersion(_ context.Context, key string, value []byte, ttl time.Duration, version int64) bool {
	if ttl <= 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.version != version {
		return false
	}
	m.cache[key] = &cacheEntry{
		data:      append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	}
	return true
}

func (m *Memory) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	for _, key := range keys {
		delete(m.cache, key)
	}
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	for key := range m.cache {
		if strings.HasPrefix(key, prefix) {
			delete(m.cache, key)
		}
	}
}

// Close останавливает фоновую очистку.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.purgeExpired(time.Now())
		}
	}
}

func (m *Memory) purgeExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.cache {
		if now.After(entry.expiresAt) {
			delete(m.cache, key)
		}
	}
}

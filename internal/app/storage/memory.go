package storage

import (
	"context"
	"maps"
	"sync"
	"time"

	"francoggm/vnpay-go-redis/internal/models"
)

type memoryItem[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlMap is a mutex guarded map whose entries disappear after their TTL.
// Expired entries are dropped lazily on read and on write.
type ttlMap[V any] struct {
	mu    sync.RWMutex
	items map[string]memoryItem[V]
	now   func() time.Time
}

func newTTLMap[V any]() *ttlMap[V] {
	return &ttlMap[V]{
		items: make(map[string]memoryItem[V]),
		now:   time.Now,
	}
}

func (m *ttlMap[V]) set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, k)
		}
	}

	m.items[key] = memoryItem[V]{value: value, expiresAt: now.Add(ttl)}
}

func (m *ttlMap[V]) get(key string) (V, bool) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(item.expiresAt) {
		var zero V
		return zero, false
	}

	return item.value, true
}

// MemoryCorrelationStore is the single instance variant of the correlation
// store. Callbacks landing on another instance will not find the entry.
type MemoryCorrelationStore struct {
	items *ttlMap[map[string]string]
}

func NewMemoryCorrelationStore() *MemoryCorrelationStore {
	return &MemoryCorrelationStore{items: newTTLMap[map[string]string]()}
}

func (s *MemoryCorrelationStore) Put(ctx context.Context, requestCode string, fields map[string]string, ttl time.Duration) error {
	s.items.set(requestCode, maps.Clone(fields), ttl)
	return nil
}

func (s *MemoryCorrelationStore) Fetch(ctx context.Context, requestCode string) (map[string]string, error) {
	fields, ok := s.items.get(requestCode)
	if !ok {
		return nil, nil
	}

	return maps.Clone(fields), nil
}

type MemoryResponseStore struct {
	items *ttlMap[models.PaymentResponse]
	ttl   time.Duration
}

func NewMemoryResponseStore(ttl time.Duration) *MemoryResponseStore {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}

	return &MemoryResponseStore{
		items: newTTLMap[models.PaymentResponse](),
		ttl:   ttl,
	}
}

func (s *MemoryResponseStore) SaveResponse(ctx context.Context, flow string, response *models.PaymentResponse) error {
	s.items.set(responseKey(flow, response.RequestCode), *response, s.ttl)
	return nil
}

func (s *MemoryResponseStore) GetResponse(ctx context.Context, flow, requestCode string) (*models.PaymentResponse, error) {
	response, ok := s.items.get(responseKey(flow, requestCode))
	if !ok {
		return nil, nil
	}

	return &response, nil
}

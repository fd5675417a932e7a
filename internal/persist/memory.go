package persist

import (
	"sync"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/schema"
)

// Memory is a StoreProvider that keeps buckets in process memory.
type Memory struct {
	mu      sync.Mutex
	buckets map[schema.UserID]*memoryBucket
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[schema.UserID]*memoryBucket)}
}

// Bucket returns the bucket of userID, creating it on first use.
func (m *Memory) Bucket(userID schema.UserID) (core.KeyValueStore, error) {
	if err := schema.ValidateUserID(userID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[userID]
	if !ok {
		b = &memoryBucket{values: make(map[string]string)}
		m.buckets[userID] = b
	}
	return b, nil
}

// DropBucket forgets the bucket of userID.
func (m *Memory) DropBucket(userID schema.UserID) error {
	m.mu.Lock()
	delete(m.buckets, userID)
	m.mu.Unlock()
	return nil
}

type memoryBucket struct {
	mu     sync.Mutex
	values map[string]string
}

func (b *memoryBucket) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *memoryBucket) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

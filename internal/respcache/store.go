package respcache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Store is a byte-oriented key/value backend with its own eviction policy.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Purge() error
	Close() error
}

// MemoryStore is a capacity-bounded in-process tier. Each entry costs its
// length in bytes; ristretto decides what to evict once the capacity is hit.
type MemoryStore struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemoryStore returns a memory tier holding at most capacity bytes.
func NewMemoryStore(capacity int64) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("memory capacity must be positive, got %d", capacity)
	}
	counters := capacity / 1024 * 10
	if counters < 1000 {
		counters = 1000
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        counters,
		MaxCost:            capacity,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (m *MemoryStore) Get(key string) ([]byte, bool) {
	return m.cache.Get(key)
}

// Set stores value and waits for ristretto's write buffer to drain so the
// entry is visible to the next Get.
func (m *MemoryStore) Set(key string, value []byte) {
	if m.cache.Set(key, value, int64(len(value))) {
		m.cache.Wait()
	}
}

func (m *MemoryStore) Delete(key string) {
	m.cache.Del(key)
}

func (m *MemoryStore) Purge() error {
	m.cache.Clear()
	return nil
}

func (m *MemoryStore) Close() error {
	m.cache.Close()
	return nil
}

// Tiered reads the memory tier first and falls back to disk, promoting disk
// hits into memory. Writes go to both tiers.
type Tiered struct {
	Memory Store
	Disk   Store
}

func (t *Tiered) Get(key string) ([]byte, bool) {
	if value, ok := t.Memory.Get(key); ok {
		return value, true
	}
	if t.Disk == nil {
		return nil, false
	}
	value, ok := t.Disk.Get(key)
	if ok {
		t.Memory.Set(key, value)
	}
	return value, ok
}

func (t *Tiered) Set(key string, value []byte) {
	t.Memory.Set(key, value)
	if t.Disk != nil {
		t.Disk.Set(key, value)
	}
}

func (t *Tiered) Delete(key string) {
	t.Memory.Delete(key)
	if t.Disk != nil {
		t.Disk.Delete(key)
	}
}

func (t *Tiered) Purge() error {
	if err := t.Memory.Purge(); err != nil {
		return err
	}
	if t.Disk != nil {
		return t.Disk.Purge()
	}
	return nil
}

func (t *Tiered) Close() error {
	memErr := t.Memory.Close()
	if t.Disk == nil {
		return memErr
	}
	if err := t.Disk.Close(); err != nil {
		return err
	}
	return memErr
}

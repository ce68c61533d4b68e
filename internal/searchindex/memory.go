package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dharsanguruparan/BillIndex/internal/sink"
)

// Memory is an in-process search index. Upserts stay invisible to Get until
// the collection is refreshed, the way a search engine's refresh interval
// behaves.
type Memory struct {
	mu      sync.RWMutex
	pending map[string]map[string][]byte
	visible map[string]map[string][]byte
}

var _ sink.SearchIndex = (*Memory)(nil)

// NewMemory constructs an empty index.
func NewMemory() *Memory {
	return &Memory{
		pending: make(map[string]map[string][]byte),
		visible: make(map[string]map[string][]byte),
	}
}

// Upsert stores doc as JSON, replacing any pending value for key.
func (m *Memory) Upsert(_ context.Context, collection, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[collection] == nil {
		m.pending[collection] = make(map[string][]byte)
	}
	m.pending[collection][key] = data
	return nil
}

// Refresh publishes pending writes.
func (m *Memory) Refresh(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.visible[collection] == nil {
		m.visible[collection] = make(map[string][]byte)
	}
	for key, data := range m.pending[collection] {
		m.visible[collection][key] = data
	}
	delete(m.pending, collection)
	return nil
}

// Get decodes a refreshed document into out.
func (m *Memory) Get(_ context.Context, collection, key string, out any) error {
	m.mu.RLock()
	data, ok := m.visible[collection][key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, out)
}

// Raw returns the refreshed JSON for key.
func (m *Memory) Raw(collection, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.visible[collection][key]
	return data, ok
}

// Len counts refreshed documents in a collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visible[collection])
}

package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

type memoryTable struct {
	order []string
	items map[string][]byte
}

// MemoryStore keeps items in process memory. Scans return items in the order
// their keys were first written.
type MemoryStore struct {
	schema Schema

	mu     sync.RWMutex
	tables map[string]*memoryTable
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore(schema Schema) *MemoryStore {
	return &MemoryStore{schema: schema, tables: make(map[string]*memoryTable)}
}

func (m *MemoryStore) Get(_ context.Context, table, key string, dest any) (found bool, err error) {
	defer metrics.ObserveStore("memory", "get", table, time.Now(), &err)

	if _, err = m.schema.KeyAttr(table); err != nil {
		return false, err
	}

	m.mu.RLock()
	var body []byte
	if t, ok := m.tables[table]; ok {
		body, found = t.items[key]
	}
	m.mu.RUnlock()

	if !found {
		return false, nil
	}
	if err = json.Unmarshal(body, dest); err != nil {
		return false, fmt.Errorf("recordstore/memory: get %s: %w", table, err)
	}
	return true, nil
}

func (m *MemoryStore) Put(_ context.Context, table string, item any) (err error) {
	defer metrics.ObserveStore("memory", "put", table, time.Now(), &err)

	key, body, err := m.schema.keyOf(table, item)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		t = &memoryTable{items: make(map[string][]byte)}
		m.tables[table] = t
	}
	if _, exists := t.items[key]; !exists {
		t.order = append(t.order, key)
	}
	t.items[key] = body
	return nil
}

func (m *MemoryStore) Scan(_ context.Context, table string, dest any) (err error) {
	defer metrics.ObserveStore("memory", "scan", table, time.Now(), &err)

	if _, err = m.schema.KeyAttr(table); err != nil {
		return err
	}

	m.mu.RLock()
	var bodies [][]byte
	if t, ok := m.tables[table]; ok {
		bodies = make([][]byte, 0, len(t.order))
		for _, k := range t.order {
			bodies = append(bodies, t.items[k])
		}
	}
	m.mu.RUnlock()

	if err = decodeBodies(bodies, dest); err != nil {
		return fmt.Errorf("recordstore/memory: scan %s: %w", table, err)
	}
	return nil
}

// Len reports how many items table holds.
func (m *MemoryStore) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tables[table]; ok {
		return len(t.order)
	}
	return 0
}

package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Memory is a mutex-guarded in-memory KV for tests and development.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]map[string]string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]string)}
}

// Get returns the stored value or "" when absent.
func (m *Memory) Get(_ context.Context, table, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables[table][key], nil
}

// Set overwrites the value, creating the table and record if needed.
func (m *Memory) Set(_ context.Context, table, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(table, key, value)
	return nil
}

// Increment parses the stored value as an integer and writes back n+1.
func (m *Memory) Increment(_ context.Context, table, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw := m.tables[table][key]
	var n int64
	if raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s/%s=%q", ErrNotNumeric, table, key, raw)
		}
		n = parsed
	}
	n++
	m.set(table, key, strconv.FormatInt(n, 10))
	return n, nil
}

// Append adds one item to the stored sequence.
func (m *Memory) Append(_ context.Context, table, key, item string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.tables[table][key]
	if current == "" {
		m.set(table, key, item)
		return nil
	}
	m.set(table, key, current+ListSeparator+item)
	return nil
}

// ScanTable copies out every record of a table.
func (m *Memory) ScanTable(_ context.Context, table string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.tables[table]))
	for k, v := range m.tables[table] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) set(table, key, value string) {
	records, ok := m.tables[table]
	if !ok {
		records = make(map[string]string)
		m.tables[table] = records
	}
	records[key] = value
}

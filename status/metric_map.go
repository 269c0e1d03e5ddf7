package status

import (
	"sync"

	"golang.org/x/exp/slices"
)

// MetricMap holds named metrics of one type
// Get takes the lock only to register; values are read and written through the returned pointer
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, registering a zero value on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	p := m.items[key]
	m.mu.RUnlock()
	if p != nil {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p = m.items[key]; p == nil {
		p = new(T)
		m.items[key] = p
	}
	return p
}

func (m *MetricMap[T]) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key] != nil
}

// Keys returns the registered names sorted
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Range visits metrics in key order; fn runs without the lock held, so it may call Get
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	view := make(map[string]*T, len(m.items))
	keys := make([]string, 0, len(m.items))
	for k, p := range m.items {
		view[k] = p
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	slices.Sort(keys)
	for _, k := range keys {
		fn(k, view[k])
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

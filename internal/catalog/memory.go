package catalog

import (
	"context"
	"sync"
)

// MemoryCatalog keeps manifests in a map. Manifests are copied on the way
// in and out.
type MemoryCatalog struct {
	mu   sync.RWMutex
	days map[int]Manifest
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{days: make(map[int]Manifest)}
}

func (c *MemoryCatalog) Put(_ context.Context, m *Manifest) error {
	if err := validate(m); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.days[m.Day] = *m
	return nil
}

func (c *MemoryCatalog) Get(_ context.Context, day int) (*Manifest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.days[day]
	if !ok {
		return nil, notFound(day)
	}
	return &m, nil
}

func (c *MemoryCatalog) List(_ context.Context) ([]*Manifest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Manifest, 0, len(c.days))
	for _, m := range c.days {
		m := m
		out = append(out, &m)
	}
	sortByDay(out)
	return out, nil
}

func (c *MemoryCatalog) Delete(_ context.Context, day int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.days[day]; !ok {
		return notFound(day)
	}
	delete(c.days, day)
	return nil
}

func (c *MemoryCatalog) Close() error { return nil }

package catalog

import (
	"context"
	"sync"
)

// MemBackend holds the snapshot in memory. SaveErr and LoadErr let tests
// simulate a failing disk.
type MemBackend struct {
	mu       sync.Mutex
	snapshot []Product
	saves    int

	SaveErr error
	LoadErr error
}

func NewMemBackend(seed ...Product) *MemBackend {
	b := &MemBackend{}
	if seed != nil {
		b.snapshot = append([]Product(nil), seed...)
	}
	return b
}

func (b *MemBackend) Load(_ context.Context) ([]Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	if b.snapshot == nil {
		return nil, nil
	}
	return append([]Product(nil), b.snapshot...), nil
}

func (b *MemBackend) Save(_ context.Context, products []Product) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.snapshot = append([]Product{}, products...)
	b.saves++
	return nil
}

func (b *MemBackend) Ping(_ context.Context) error { return nil }

// Snapshot returns what was last saved.
func (b *MemBackend) Snapshot() []Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Product(nil), b.snapshot...)
}

func (b *MemBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

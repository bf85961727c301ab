package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"MiniPOS/internal/pos"
	"MiniPOS/pkg/kit"
)

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Backend persists the whole catalog as one snapshot.
type Backend interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
}

// Store owns the catalog. Products keep insertion order and ids are not
// required to be unique; lookups resolve to the first match. Every mutation
// writes the full catalog to the backend. A failed write is logged and
// returned wrapped in pos.ErrPersistence but the in-memory change stays.
type Store struct {
	mu       sync.RWMutex
	products []Product

	backend Backend
	log     *zap.Logger
	metrics *Metrics
}

type Option func(*Store)

func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func NewStore(ctx context.Context, backend Backend, log *zap.Logger, opts ...Option) *Store {
	s := &Store{backend: backend, log: kit.OrNop(log)}
	for _, o := range opts {
		o(s)
	}
	s.Load(ctx)
	return s
}

// Load replaces the in-memory catalog with the backend snapshot. Any load
// error leaves an empty catalog.
func (s *Store) Load(ctx context.Context) {
	products, err := s.backend.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Info("no catalog snapshot, starting empty")
		products = nil
	case err != nil:
		s.log.Warn("catalog snapshot unreadable, starting empty", zap.Error(err))
		products = nil
	}

	s.products = products
	if s.products == nil {
		s.products = []Product{}
	}
	s.metrics.setProducts(len(s.products))
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Add(ctx context.Context, p Product) error {
	if err := validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, p)
	return s.save(ctx)
}

// Delete removes every product with the given id. It persists even when
// nothing matched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	clear(s.products[len(kept):])
	s.products = kept

	return s.save(ctx)
}

// UpdateQuantity sets the stock of the first product with the given id. An
// unknown id still persists and then reports pos.ErrNotFound.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int) error {
	if qty < 0 {
		return pos.Invalid("quantity must not be negative, got %d", qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i >= 0 {
		s.products[i].Quantity = qty
	}

	if err := s.save(ctx); err != nil {
		return err
	}
	if i < 0 {
		return fmt.Errorf("product %q: %w", id, pos.ErrNotFound)
	}
	return nil
}

// ReduceStock takes qty units from the first product with the given id and
// returns the product as it is after the reduction. Stock is left untouched
// when the id is unknown or fewer than qty units are on hand.
func (s *Store) ReduceStock(ctx context.Context, id string, qty int) (Product, error) {
	if qty <= 0 {
		return Product{}, pos.Invalid("quantity must be positive, got %d", qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, fmt.Errorf("product %q: %w", id, pos.ErrNotFound)
	}

	p := &s.products[i]
	if p.Quantity < qty {
		return Product{}, &pos.InsufficientStockError{ProductID: id, Requested: qty, Available: p.Quantity}
	}

	p.Quantity -= qty
	return *p, s.save(ctx)
}

func (s *Store) Get(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.products[i], true
	}
	return Product{}, false
}

// GetAll returns a copy of the catalog in insertion order.
func (s *Store) GetAll() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (s *Store) save(ctx context.Context) error {
	snapshot := make([]Product, len(s.products))
	copy(snapshot, s.products)

	s.metrics.setProducts(len(snapshot))

	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.log.Error("catalog save failed", zap.Int("products", len(snapshot)), zap.Error(err))
		s.metrics.persistFailed()
		return fmt.Errorf("save catalog: %w: %w", pos.ErrPersistence, err)
	}
	return nil
}

func validate(p Product) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return pos.Invalid("product id required")
	case p.Quantity < 0:
		return pos.Invalid("quantity must not be negative, got %d", p.Quantity)
	case math.IsNaN(p.Price) || math.IsInf(p.Price, 0):
		return pos.Invalid("price must be a finite number, got %v", p.Price)
	case p.Price < 0:
		return pos.Invalid("price must not be negative, got %v", p.Price)
	}
	return nil
}

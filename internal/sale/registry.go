package sale

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniPOS/internal/pos"
	"MiniPOS/pkg/kit"
)

// Registry tracks the sales currently open. Completed and abandoned
// sessions are dropped from it. With a max age set, sales left open longer
// than that are abandoned the next time a sale is opened.
type Registry struct {
	deps   Deps
	maxAge time.Duration
	now    func() time.Time

	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	s      *Session
	opened time.Time
}

type RegistryOption func(*Registry)

// WithMaxAge expires open sales older than d. Zero keeps them forever.
func WithMaxAge(d time.Duration) RegistryOption {
	return func(r *Registry) { r.maxAge = d }
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(deps Deps, opts ...RegistryOption) *Registry {
	r := &Registry{deps: deps, now: time.Now, m: map[string]entry{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Open() *Session {
	s := NewSession("s_"+uuid.NewString(), r.deps)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	r.m[s.ID()] = entry{s: s, opened: now}
	r.deps.Metrics.setOpen(len(r.m))
	return s
}

// sweep must be called with mu held.
func (r *Registry) sweep(now time.Time) {
	if r.maxAge <= 0 {
		return
	}
	for id, e := range r.m {
		if now.Sub(e.opened) < r.maxAge {
			continue
		}
		kit.OrNop(r.deps.Log).Info("expiring idle sale",
			zap.String("sale_id", id),
			zap.Duration("age", now.Sub(e.opened)),
		)
		e.s.Abandon()
		delete(r.m, id)
	}
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.m[id]
	if !ok {
		return nil, fmt.Errorf("sale %q: %w", id, pos.ErrNotFound)
	}
	return e.s, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	r.deps.Metrics.setOpen(len(r.m))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

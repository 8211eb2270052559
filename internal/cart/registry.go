package cart

import (
	"context"
	"fmt"
	"sync"
)

// SlotKeyFor names the persistence slot of a session. The anonymous session
// uses SlotKey itself.
func SlotKeyFor(session string) string {
	if session == "" {
		return SlotKey
	}
	return SlotKey + ":" + session
}

// Registry keeps one Store per session and creates them on first use.
type Registry struct {
	deps Deps
	opts []Option

	mu       sync.Mutex
	stores   map[string]*Store
	onCreate []func(session string, s *Store)
}

func NewRegistry(d Deps, opts ...Option) *Registry {
	return &Registry{
		deps:   d,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// OnCreate registers fn to run for every Store created after the call.
func (r *Registry) OnCreate(fn func(session string, s *Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = append(r.onCreate, fn)
}

// Get returns the session's Store, loading it from its slot on first use.
// A Store whose slot could not be read is not kept; the next call retries.
func (r *Registry) Get(ctx context.Context, session string) (*Store, error) {
	r.mu.Lock()
	s, ok := r.stores[session]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	d := r.deps
	d.Key = SlotKeyFor(session)
	s, err := New(ctx, d, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("open cart %s: %w", d.Key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request may have loaded the same session meanwhile
	if existing, ok := r.stores[session]; ok {
		return existing, nil
	}
	r.stores[session] = s
	for _, fn := range r.onCreate {
		fn(session, s)
	}
	return s, nil
}

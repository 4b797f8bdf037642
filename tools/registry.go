package tools

import (
	"context"
	"sync"
)

// Handler executes one named capability. Execute returns serialized
// result text and must not fail: implementations fold their own errors
// into the result envelope.
type Handler interface {
	Name() string
	Execute(ctx context.Context, rawArgs string) string
}

// Registry keeps the mapping between capability names and handlers.
// The capability set is small and closed; unrecognized names fall to
// the caller's default branch rather than an open-ended dispatch.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry(hs ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range hs {
		r.Register(h)
	}
	return r
}

// Register inserts a handler, replacing any previous one of that name.
func (r *Registry) Register(h Handler) {
	if h == nil || h.Name() == "" {
		return
	}
	r.mu.Lock()
	r.handlers[h.Name()] = h
	r.mu.Unlock()
}

// Lookup fetches a handler by name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	return h, ok
}

package nodeapi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry maps stable node identifiers to their descriptors
type Registry struct {
	nodes map[string]*Descriptor
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor. Identifiers are globally unique, and a node emitting a context
// must consume one unless it is the context source.
func (r *Registry) Register(d *Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("node without an identifier")
	}
	if d.Execute == nil {
		return fmt.Errorf("node %s has no execute function", d.ID)
	}
	if emitsContext(d) && !d.ContextSource && !consumesContext(d) {
		return fmt.Errorf("node %s emits a %s without consuming one", d.ID, TypeContext)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[d.ID]; exists {
		return fmt.Errorf("node '%s' is already registered", d.ID)
	}
	r.nodes[d.ID] = d
	return nil
}

// MustRegister registers a descriptor, panicking on error
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func emitsContext(d *Descriptor) bool {
	for _, o := range d.Outputs {
		if o.Type == TypeContext {
			return true
		}
	}
	return false
}

func consumesContext(d *Descriptor) bool {
	for _, in := range d.Inputs.Required {
		if in.Type == TypeContext {
			return true
		}
	}
	return false
}

// Get retrieves a descriptor by identifier
func (r *Registry) Get(id string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.nodes[id]
	return d, ok
}

// IDs returns every registered identifier, sorted
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descriptors returns every descriptor sorted by identifier
func (r *Registry) Descriptors() []*Descriptor {
	ids := r.IDs()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.nodes[id])
	}
	return out
}

// DisplayNames maps every identifier to its human readable name
func (r *Registry) DisplayNames() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make(map[string]string, len(r.nodes))
	for id, d := range r.nodes {
		names[id] = d.DisplayName
	}
	return names
}

// ObjectInfo returns the host facing metadata of every node
func (r *Registry) ObjectInfo() map[string]*NodeObject {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info := make(map[string]*NodeObject, len(r.nodes))
	for id, d := range r.nodes {
		info[id] = d.Object()
	}
	return info
}

// Count returns the number of registered nodes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Execute runs the node registered under id
func (r *Registry) Execute(ctx context.Context, id string, args Args) (Result, error) {
	d, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	start := time.Now()
	res, err := d.Run(ctx, args)
	if err != nil {
		slog.Error("node execution failed", "node", id, "error", err)
		return nil, err
	}
	slog.Debug("node executed", "node", id, "duration", time.Since(start))
	return res, nil
}

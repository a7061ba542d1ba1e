package command

import "sync"

// Registry maps command names to definitions. It is populated once at
// startup and read-only afterwards; re-registration replaces the published
// map wholesale so concurrent readers never observe a partial update.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
	}
}

// Register adds or replaces the definition for def.Name.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]Definition, len(r.defs)+1)
	for name, d := range r.defs {
		next[name] = d
	}
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	next[def.Name] = def

	r.defs = next
}

// Get resolves a command name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// All returns definitions in registration order, for help generation.
func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.defs[name])
	}
	return defs
}

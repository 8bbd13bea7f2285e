package action

import "sync"

// Registry maps action names to Actions. It preserves registration order,
// which is the order actions are rendered into prompts, so identical setups
// produce identical prompts.
//
// Registration happens once during initialization; the loop only reads. A
// Registry may therefore be shared read-only across concurrent sessions. The
// RWMutex guards against the occasional host that registers late.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Action
	ordered []Action
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Action)}
}

// Register adds an action under its name. Names are unique; registering a
// name twice returns a *DuplicateActionError.
func (r *Registry) Register(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Name()]; exists {
		return &DuplicateActionError{Name: a.Name()}
	}
	r.byName[a.Name()] = a
	r.ordered = append(r.ordered, a)
	return nil
}

// MustRegister registers actions and panics on the first failure. Intended
// for startup wiring where a duplicate name is a programming error.
func (r *Registry) MustRegister(actions ...Action) {
	for _, a := range actions {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
}

// Get returns the action registered under name or a *UnknownActionError.
func (r *Registry) Get(name string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	if !ok {
		return nil, &UnknownActionError{Name: name}
	}
	return a, nil
}

// Actions returns registered actions in registration order. With tags given,
// only actions carrying at least one of them are included. The returned slice
// is a copy; callers may range over it repeatedly or mutate it freely.
func (r *Registry) Actions(tags ...string) []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(tags) == 0 {
		out := make([]Action, len(r.ordered))
		copy(out, r.ordered)
		return out
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}

	var out []Action
	for _, a := range r.ordered {
		for _, t := range a.Tags() {
			if _, ok := wanted[t]; ok {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

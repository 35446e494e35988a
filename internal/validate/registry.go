package validate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ppiankov/cmdgate/internal/mode"
	"github.com/ppiankov/cmdgate/internal/policy"
)

// Registry resolves validator IDs to implementations.
type Registry struct {
	mu         sync.RWMutex
	validators map[policy.ValidatorID]Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[policy.ValidatorID]Validator)}
}

// Register binds id to v. Registering an ID twice is an error.
func (r *Registry) Register(id policy.ValidatorID, v Validator) error {
	if id == "" {
		return fmt.Errorf("validator id is empty")
	}
	if v == nil {
		return fmt.Errorf("validator %s is nil", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.validators[id]; exists {
		return fmt.Errorf("validator already registered: %s", id)
	}
	r.validators[id] = v
	return nil
}

// Replace binds id to v, overwriting any existing binding.
func (r *Registry) Replace(id policy.ValidatorID, v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[id] = v
}

// Get returns the implementation registered for id.
func (r *Registry) Get(id policy.ValidatorID) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[id]
	return v, ok
}

// IDs returns the registered validator IDs in sorted order.
func (r *Registry) IDs() []policy.ValidatorID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]policy.ValidatorID, 0, len(r.validators))
	for id := range r.validators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Lookup returns the validator for command name in mode m. ok is false when
// the command has no validator in that mode, which callers treat as allowed
// by default.
//
// A command bound to an ID with no registered implementation resolves to a
// validator that rejects everything.
func (r *Registry) Lookup(name string, m mode.Mode) (Validator, policy.ValidatorID, bool) {
	id, ok := policy.ValidatorFor(name, m)
	if !ok {
		return nil, "", false
	}
	if v, ok := r.Get(id); ok {
		return v, id, true
	}
	return missing(id), id, true
}

func missing(id policy.ValidatorID) Validator {
	return Func(func(string) Result {
		return Reject(fmt.Sprintf("validator %s is not available", id))
	})
}

package param

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownParameter is returned when a lookup by name or id fails.
var ErrUnknownParameter = errors.New("unknown parameter")

// Registry holds an instrument's parameters in declaration order.
type Registry struct {
	params map[uint32]*Parameter
	order  []uint32
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		order:  make([]uint32, 0),
	}
}

// Add registers parameters. Duplicate ids are an error.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter id %d (%s) already registered", p.ID, p.Name)
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return nil
}

// Get returns the parameter with the given id, or nil
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// Lookup finds a parameter by name or short name, ignoring case.
func (r *Registry) Lookup(name string) (*Parameter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		p := r.params[id]
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.ShortName, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownParameter)
}

// Set parses value with the named parameter's parser and stores it.
func (r *Registry) Set(name, value string) error {
	p, err := r.Lookup(name)
	if err != nil {
		return err
	}
	return p.SetFromString(value)
}

func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}
	return r.params[r.order[index]]
}

// Count returns the number of registered parameters
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int32(len(r.order))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}
	return result
}

// ResetToDefaults stores every parameter's default value.
func (r *Registry) ResetToDefaults() {
	for _, p := range r.All() {
		p.SetValue(p.DefaultValue)
	}
}

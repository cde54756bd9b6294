package decorator

import (
	"fmt"
	"slices"
	"sync"
)

// Discoverer yields decorators. A value may implement ClassDecorator,
// MethodDecorator, or both.
type Discoverer interface {
	Discover() ([]any, error)
}

// DiscovererFunc adapts a function to Discoverer.
type DiscovererFunc func() ([]any, error)

// Discover calls f.
func (f DiscovererFunc) Discover() ([]any, error) {
	return f()
}

// Providers is an explicit, ordered list of decorator instances.
type Providers []any

// Discover returns the list as is.
func (p Providers) Discover() ([]any, error) {
	return slices.Clone([]any(p)), nil
}

// Factory creates a decorator instance.
type Factory func() any

var (
	registeredMu sync.Mutex
	registered   []registration
)

type registration struct {
	name    string
	factory Factory
}

// Register makes a decorator factory available to Registered. It is meant
// to be called from init functions. Registering the same name twice, or a
// nil factory, panics.
func Register(name string, factory Factory) {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	if factory == nil {
		panic("decorator: Register factory is nil")
	}
	for _, r := range registered {
		if r.name == name {
			panic(fmt.Sprintf("decorator: Register called twice for %q", name))
		}
	}
	registered = append(registered, registration{name: name, factory: factory})
}

// Registered returns a Discoverer over every factory passed to Register, in
// registration order. Factories run when the registry discovers.
func Registered() Discoverer {
	return DiscovererFunc(func() ([]any, error) {
		registeredMu.Lock()
		regs := slices.Clone(registered)
		registeredMu.Unlock()

		out := make([]any, 0, len(regs))
		for _, r := range regs {
			out = append(out, r.factory())
		}
		return out, nil
	})
}

// RegisteredNames lists registered factory names in registration order.
func RegisteredNames() []string {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	names := make([]string, len(registered))
	for i, r := range registered {
		names[i] = r.name
	}
	return names
}

// unregisterAll clears the init-time list. Tests only.
func unregisterAll() {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	registered = nil
}

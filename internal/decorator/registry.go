package decorator

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the decorators found by its discoverers. Discovery runs
// once on first access; the result, error included, is then fixed for the
// registry's lifetime.
type Registry struct {
	discoverers []Discoverer

	once   sync.Once
	class  []ClassDecorator
	method []MethodDecorator
	err    error
}

// NewRegistry creates a registry over discoverers, consulted in order.
func NewRegistry(discoverers ...Discoverer) *Registry {
	return &Registry{discoverers: discoverers}
}

func (r *Registry) discover() {
	r.once.Do(func() {
		for i, d := range r.discoverers {
			if d == nil {
				continue
			}
			found, err := d.Discover()
			if err != nil {
				r.class, r.method = nil, nil
				r.err = fmt.Errorf("decorator discovery (source %d): %w", i, err)
				return
			}
			for _, v := range found {
				cd, isClass := v.(ClassDecorator)
				md, isMethod := v.(MethodDecorator)
				if !isClass && !isMethod {
					r.class, r.method = nil, nil
					r.err = fmt.Errorf("decorator discovery (source %d): %T is neither a class nor a method decorator", i, v)
					return
				}
				if isClass {
					r.class = append(r.class, cd)
				}
				if isMethod {
					r.method = append(r.method, md)
				}
			}
		}
	})
}

// ClassDecorators returns every discovered class decorator in discovery
// order. The slice is a copy.
func (r *Registry) ClassDecorators() ([]ClassDecorator, error) {
	r.discover()
	if r.err != nil {
		return nil, r.err
	}
	return slices.Clone(r.class), nil
}

// MethodDecorators returns every discovered method decorator in discovery
// order. The slice is a copy.
func (r *Registry) MethodDecorators() ([]MethodDecorator, error) {
	r.discover()
	if r.err != nil {
		return nil, r.err
	}
	return slices.Clone(r.method), nil
}

package execution

import (
	"maps"
	"slices"
	"sync"

	"github.com/roach88/decorum/internal/suite"
	"github.com/roach88/decorum/internal/unit"
)

// Context is the shared state of one test class run. It is created once per
// class by a Registry and handed to every decorator invocation of that class.
//
// The descriptors and merged properties are fixed at construction. The
// attribute store is the only mutable part and is safe for concurrent use.
type Context struct {
	id          string
	class       suite.Class
	descriptors []*unit.Descriptor
	properties  map[string]any

	mu    sync.RWMutex
	attrs map[string]any
}

func newContext(id string, class suite.Class, descriptors []*unit.Descriptor) *Context {
	props := make(map[string]any)
	for _, d := range descriptors {
		maps.Copy(props, d.Properties())
	}
	return &Context{
		id:          id,
		class:       class,
		descriptors: descriptors,
		properties:  props,
		attrs:       make(map[string]any),
	}
}

// ID returns the context identifier.
func (c *Context) ID() string { return c.id }

// Class returns the test class this context belongs to.
func (c *Context) Class() suite.Class { return c.class }

// Descriptors returns the configuration units loaded for this context, in
// discovery order.
func (c *Context) Descriptors() []*unit.Descriptor {
	return slices.Clone(c.descriptors)
}

// Descriptor returns the first unit whose name matches.
func (c *Context) Descriptor(name string) (*unit.Descriptor, bool) {
	for _, d := range c.descriptors {
		if n, ok := d.UnitName(); ok && n == name {
			return d, true
		}
	}
	return nil, false
}

// Properties returns a copy of the properties of all descriptors folded in
// discovery order. A later unit wins on key collision.
func (c *Context) Properties() map[string]any {
	return maps.Clone(c.properties)
}

// Property returns a single merged property.
func (c *Context) Property(key string) (any, bool) {
	v, ok := c.properties[key]
	return v, ok
}

// Get returns the attribute stored under key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.attrs[key]
	return v, ok
}

// Set stores an attribute, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attrs[key] = value
}

// Contains reports whether an attribute is stored under key.
func (c *Context) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.attrs[key]
	return ok
}

// Delete removes an attribute and returns the value it held.
func (c *Context) Delete(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.attrs[key]
	delete(c.attrs, key)
	return v, ok
}

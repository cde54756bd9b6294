// Package feature resolves the effective set of declared features for a
// test class and, optionally, one of its methods.
//
// Method-level declarations override class-level declarations with the same
// key; keys only declared on the class remain visible.
//
//	set := feature.NewBuilder(class).WithTestMethod(method).Build()
//	if set.Has("transactional") { ... }
package feature

import (
	"fmt"
	"slices"

	"github.com/roach88/decorum/internal/suite"
)

// Builder accumulates declarations. It is a value type; each With call
// returns a new builder and leaves the receiver untouched.
type Builder struct {
	class  suite.Class
	method *suite.Method
}

// NewBuilder seeds a builder with a test class.
func NewBuilder(class suite.Class) Builder {
	return Builder{class: class}
}

// WithTestMethod adds a test method whose features take precedence.
func (b Builder) WithTestMethod(m suite.Method) Builder {
	b.method = &m
	return b
}

// Build resolves the declarations into an immutable Set.
func (b Builder) Build() Set {
	values := make(map[string]suite.Feature, len(b.class.Features))
	for _, f := range b.class.Features {
		values[f.Key] = f
	}
	if b.method != nil {
		for _, f := range b.method.Features {
			values[f.Key] = f
		}
	}
	return Set{values: values}
}

// Set is the resolved, read-only feature set.
type Set struct {
	values map[string]suite.Feature
}

// Has reports whether key was declared on the class or the method.
func (s Set) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Get returns the winning declaration for key.
func (s Set) Get(key string) (suite.Feature, bool) {
	f, ok := s.values[key]
	return f, ok
}

// String returns the feature value formatted as a string, or "" if the
// feature is absent or has no value.
func (s Set) String(key string) string {
	f, ok := s.values[key]
	if !ok || f.Value == nil {
		return ""
	}
	if str, ok := f.Value.(string); ok {
		return str
	}
	return fmt.Sprint(f.Value)
}

// Bool reports a boolean feature. Flag-style features (nil value) count as
// true; non-bool values count as false.
func (s Set) Bool(key string) bool {
	f, ok := s.values[key]
	if !ok {
		return false
	}
	if f.Value == nil {
		return true
	}
	b, _ := f.Value.(bool)
	return b
}

// Keys returns the declared keys in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of resolved features.
func (s Set) Len() int {
	return len(s.values)
}

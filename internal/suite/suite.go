// Package suite models the identity of test classes and test methods.
//
// Go has no test classes or annotations, so a test class is identified by a
// stable name (usually the Go type of a test fixture) and carries a list of
// declared features. Test methods carry their own features, which the feature
// resolver layers on top of the class-level ones.
package suite

import (
	"errors"
	"reflect"
	"strings"
)

// ErrMissingClass is returned when a test class reference is required but
// none was supplied (empty name).
var ErrMissingClass = errors.New("suite: missing test class")

// Feature is a declared capability tag, e.g. {"seed-data", "users.yaml"}.
// A nil Value marks a flag-style feature.
type Feature struct {
	Key   string
	Value any
}

// Flag returns a feature with no value.
func Flag(key string) Feature {
	return Feature{Key: key}
}

// With returns a feature carrying a value.
func With(key string, value any) Feature {
	return Feature{Key: key, Value: value}
}

// Class identifies a test class. Name is the identity; two Class values with
// the same Name refer to the same test class.
type Class struct {
	Name     string
	Features []Feature
}

// NewClass creates a class with the given identity and features.
func NewClass(name string, features ...Feature) Class {
	return Class{Name: name, Features: features}
}

// Validate reports ErrMissingClass for a class without identity.
func (c Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingClass
	}
	return nil
}

// String returns the class name.
func (c Class) String() string {
	return c.Name
}

// Method identifies a test method inside a class.
type Method struct {
	Name     string
	Features []Feature
}

// NewMethod creates a method with the given name and features.
func NewMethod(name string, features ...Feature) Method {
	return Method{Name: name, Features: features}
}

// Declarer is implemented by test fixtures that declare class-level features.
type Declarer interface {
	DeclareFeatures() []Feature
}

// ClassOf derives a Class from a test fixture value. The name is the
// package-qualified Go type name (pointer indirections stripped); features
// come from a Declarer implementation when present.
//
// Returns a Class with an empty name when fixture is nil.
func ClassOf(fixture any) Class {
	if fixture == nil {
		return Class{}
	}

	t := reflect.TypeOf(fixture)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		name = pkg + "." + name
	} else if name == "" {
		name = t.String()
	}

	c := Class{Name: name}
	if d, ok := fixture.(Declarer); ok {
		c.Features = d.DeclareFeatures()
	}
	return c
}

package execution

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/decorum/internal/suite"
	"github.com/roach88/decorum/internal/unit"
)

// DescriptorLoader loads configuration units for a new context.
// *unit.Loader satisfies it.
type DescriptorLoader interface {
	LoadDescriptors(overrides map[string]any) ([]*unit.Descriptor, error)
}

// Registry caches one Context per test class name.
//
// The first successful GetInstance for a class wins; later calls return the
// cached context and ignore their overrides. Building is exclusive per
// class while different classes build concurrently. A failed build caches
// nothing so the next call tries again.
type Registry struct {
	loader DescriptorLoader
	ids    IDGenerator
	logger *slog.Logger

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	once  sync.Once
	ready atomic.Bool
	ctx   *Context
	err   error
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithIDGenerator sets the context id source. Defaults to UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) RegistryOption {
	return func(r *Registry) {
		r.ids = gen
	}
}

// NewRegistry creates a registry backed by loader. A nil loader builds
// contexts without descriptors.
func NewRegistry(loader DescriptorLoader, opts ...RegistryOption) *Registry {
	r := &Registry{
		loader: loader,
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		slots:  make(map[string]*slot),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetInstance returns the context for class, creating it on first use.
// overrides are layered on top of every loaded unit's properties and only
// matter to the call that builds the context.
func (r *Registry) GetInstance(class suite.Class, overrides map[string]any) (*Context, error) {
	if err := class.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	s, ok := r.slots[class.Name]
	if !ok {
		s = &slot{}
		r.slots[class.Name] = s
	}
	r.mu.Unlock()

	s.once.Do(func() {
		// A panic still consumes the Once; record it as a failed build.
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("execution context creation panicked", "class", class.Name, "panic", p)
				s.ctx, s.err = nil, &CreateError{Class: class.Name, Err: fmt.Errorf("panic: %v", p)}
			}
			s.ready.Store(s.err == nil)
		}()
		s.ctx, s.err = r.build(class, overrides)
	})
	if s.err != nil {
		r.mu.Lock()
		if r.slots[class.Name] == s {
			delete(r.slots, class.Name)
		}
		r.mu.Unlock()
		return nil, s.err
	}
	return s.ctx, nil
}

func (r *Registry) build(class suite.Class, overrides map[string]any) (*Context, error) {
	var descriptors []*unit.Descriptor
	if r.loader != nil {
		loaded, err := r.loader.LoadDescriptors(overrides)
		if err != nil {
			r.logger.Error("execution context creation failed", "class", class.Name, "error", err)
			return nil, &CreateError{Class: class.Name, Err: err}
		}
		descriptors = loaded
	}

	ctx := newContext(r.ids.Generate(), class, descriptors)
	r.logger.Debug("execution context created",
		"class", class.Name,
		"context_id", ctx.ID(),
		"units", len(descriptors),
	)
	return ctx, nil
}

// Lookup returns the context cached for className without creating one.
// A context still being built is not reported.
func (r *Registry) Lookup(className string) (*Context, bool) {
	r.mu.Lock()
	s, ok := r.slots[className]
	r.mu.Unlock()
	if !ok || !s.ready.Load() {
		return nil, false
	}
	return s.ctx, true
}

// Drop releases the context cached for class. It returns false if none was
// cached.
func (r *Registry) Drop(class suite.Class) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[class.Name]; !ok {
		return false
	}
	delete(r.slots, class.Name)
	return true
}

// Len returns the number of cached slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

package unit

import (
	"io"
	"log/slog"
	"maps"
)

// Loader discovers configuration sources and turns them into descriptors.
type Loader struct {
	discoverer Discoverer
	base       map[string]any
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithBaseProperties sets properties every descriptor starts from. Unit
// properties and overrides both take precedence over them.
func WithBaseProperties(props map[string]any) Option {
	return func(l *Loader) {
		l.base = maps.Clone(props)
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader. A nil discoverer yields no descriptors.
func NewLoader(d Discoverer, opts ...Option) *Loader {
	l := &Loader{
		discoverer: d,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDescriptors scans every discoverable source and returns one
// descriptor per declared unit, in discovery order. overrides are layered
// on top of each unit's properties.
//
// The first failure aborts the load; no partial result is returned.
func (l *Loader) LoadDescriptors(overrides map[string]any) ([]*Descriptor, error) {
	descriptors := []*Descriptor{}
	if l.discoverer == nil {
		return descriptors, nil
	}

	resources, err := l.discoverer.Discover()
	if err != nil {
		return nil, err
	}

	for _, res := range resources {
		decls, err := Parse(res)
		if err != nil {
			l.logger.Error("configuration source rejected", "resource", res.Path, "error", err)
			return nil, err
		}
		for _, decl := range decls {
			descriptors = append(descriptors, buildDescriptor(res.Path, decl, l.base, overrides))
		}
		l.logger.Debug("configuration source loaded", "resource", res.Path, "format", res.Format, "units", len(decls))
	}

	return descriptors, nil
}

package unit

import (
	"maps"
	"strings"
)

// Descriptor is a parsed configuration unit with its merged properties.
// It is immutable; accessors return copies.
type Descriptor struct {
	name            string
	named           bool
	transactionType string
	provider        string
	source          string
	properties      map[string]any
}

// NewDescriptor merges a declaration with caller overrides. Overrides win
// on key collision and add keys the declaration lacks.
func NewDescriptor(decl Declaration, overrides map[string]any) *Descriptor {
	return buildDescriptor("", decl, nil, overrides)
}

func buildDescriptor(source string, decl Declaration, base, overrides map[string]any) *Descriptor {
	props := make(map[string]any, len(base)+len(decl.Properties)+len(overrides))
	maps.Copy(props, base)
	for _, p := range decl.Properties {
		props[p.Name] = p.Value
	}
	maps.Copy(props, overrides)

	d := &Descriptor{
		name:            decl.Name,
		named:           decl.Named,
		transactionType: decl.TransactionType,
		source:          source,
		properties:      props,
	}
	if len(decl.Providers) > 0 {
		d.provider = strings.TrimSpace(decl.Providers[0])
	}
	return d
}

// UnitName returns the declared unit name; ok is false when the unit
// declares no name.
func (d *Descriptor) UnitName() (name string, ok bool) {
	return d.name, d.named
}

// Provider returns the first declared provider, or "".
func (d *Descriptor) Provider() string {
	return d.provider
}

// TransactionType returns the declared transaction type marker.
func (d *Descriptor) TransactionType() string {
	return d.transactionType
}

// Source returns the path of the resource the unit was declared in.
func (d *Descriptor) Source() string {
	return d.source
}

// Properties returns a copy of the merged property map.
func (d *Descriptor) Properties() map[string]any {
	return maps.Clone(d.properties)
}

// Property returns a single merged property.
func (d *Descriptor) Property(key string) (any, bool) {
	v, ok := d.properties[key]
	return v, ok
}

// Len returns the number of merged properties.
func (d *Descriptor) Len() int {
	return len(d.properties)
}

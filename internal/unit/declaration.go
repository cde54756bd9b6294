package unit

import "fmt"

// Property is one name/value entry of a unit's properties block.
type Property struct {
	Name  string
	Value string
}

// Declaration is a unit as written in its source, before merging.
type Declaration struct {
	// Name is the declared unit name; meaningful only if Named is true.
	Name  string
	Named bool

	// TransactionType is carried through verbatim.
	TransactionType string

	// Providers lists the provider entries in declaration order.
	Providers []string

	// Properties holds the properties block in declaration order,
	// duplicates included.
	Properties []Property
}

// Parse decodes every unit declared in a resource.
func Parse(res Resource) ([]Declaration, error) {
	var (
		decls []Declaration
		err   error
	)
	switch res.Format {
	case FormatXML:
		decls, err = parseXML(res)
	case FormatYAML:
		decls, err = parseYAML(res)
	case FormatCUE:
		decls, err = parseCUE(res)
	default:
		return nil, &LoadError{Code: ErrCodeParseFailed, Resource: res.Path, Message: fmt.Sprintf("unknown format %q", res.Format)}
	}
	if err != nil {
		return nil, err
	}

	for i, d := range decls {
		for _, p := range d.Properties {
			if p.Name == "" {
				return nil, invalidUnit(res.Path, i, "property without name")
			}
		}
	}
	return decls, nil
}

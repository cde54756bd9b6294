package unit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	Units []yamlUnit `yaml:"units"`
}

type yamlUnit struct {
	Name            *string        `yaml:"name"`
	TransactionType string         `yaml:"transactionType"`
	Provider        providerList   `yaml:"provider"`
	Properties      []yamlProperty `yaml:"properties"`
}

type yamlProperty struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// providerList accepts either a single scalar or a sequence of scalars.
type providerList []string

func (p *providerList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = providerList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: provider must be a string or a list of strings", node.Line)
	}
}

// parseYAML decodes a units document. Unknown fields are rejected to catch
// typos like "property:" vs "properties:". A file may hold several YAML
// documents; their units are concatenated in order.
func parseYAML(res Resource) ([]Declaration, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(res.Data))
	decoder.KnownFields(true)

	var decls []Declaration
	for {
		var doc yamlDocument
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(res.Path, err)
		}

		for _, u := range doc.Units {
			d := Declaration{
				TransactionType: u.TransactionType,
				Providers:       []string(u.Provider),
			}
			if u.Name != nil {
				d.Name = *u.Name
				d.Named = true
			}
			for _, p := range u.Properties {
				d.Properties = append(d.Properties, Property{Name: p.Name, Value: p.Value})
			}
			decls = append(decls, d)
		}
	}
	return decls, nil
}

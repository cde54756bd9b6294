package unit

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

type xmlPersistence struct {
	Units []xmlUnit `xml:"persistence-unit"`
}

type xmlUnit struct {
	Name            *string        `xml:"name,attr"`
	TransactionType string         `xml:"transaction-type,attr"`
	Providers       []string       `xml:"provider"`
	Properties      *xmlProperties `xml:"properties"`
}

type xmlProperties struct {
	Entries []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// parseXML accepts either a <persistence> document holding any number of
// <persistence-unit> elements, or a bare <persistence-unit> element.
// Namespaces are ignored.
func parseXML(res Resource) ([]Declaration, error) {
	dec := xml.NewDecoder(bytes.NewReader(res.Data))

	var root xml.StartElement
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, parseError(res.Path, errors.New("document has no root element"))
		}
		if err != nil {
			return nil, parseError(res.Path, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			root = se
			break
		}
	}

	var units []xmlUnit
	switch root.Name.Local {
	case "persistence":
		var doc xmlPersistence
		if err := dec.DecodeElement(&doc, &root); err != nil {
			return nil, parseError(res.Path, err)
		}
		units = doc.Units
	case "persistence-unit":
		var u xmlUnit
		if err := dec.DecodeElement(&u, &root); err != nil {
			return nil, parseError(res.Path, err)
		}
		units = []xmlUnit{u}
	default:
		return nil, &LoadError{Code: ErrCodeParseFailed, Resource: res.Path, Message: "unexpected root element <" + root.Name.Local + ">"}
	}

	decls := make([]Declaration, 0, len(units))
	for _, u := range units {
		d := Declaration{
			TransactionType: u.TransactionType,
			Providers:       u.Providers,
		}
		if u.Name != nil {
			d.Name = *u.Name
			d.Named = true
		}
		if u.Properties != nil {
			for _, p := range u.Properties.Entries {
				d.Properties = append(d.Properties, Property{Name: p.Name, Value: p.Value})
			}
		}
		decls = append(decls, d)
	}
	return decls, nil
}

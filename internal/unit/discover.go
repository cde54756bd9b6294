package unit

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// Format identifies the declarative syntax of a resource.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// PersistenceDocument is the file name recognised as a persistence document.
const PersistenceDocument = "persistence.xml"

// Resource is one discovered configuration source.
type Resource struct {
	Path   string
	Format Format
	Data   []byte
}

// Discoverer enumerates configuration sources. The returned order is the
// order descriptors are produced in.
type Discoverer interface {
	Discover() ([]Resource, error)
}

// DiscovererFunc adapts a function to the Discoverer interface.
type DiscovererFunc func() ([]Resource, error)

// Discover calls f.
func (f DiscovererFunc) Discover() ([]Resource, error) {
	return f()
}

// FormatOf maps a file name to its format:
//
//	persistence.xml          -> FormatXML
//	*.units.yaml, *.units.yml -> FormatYAML
//	*.units.cue              -> FormatCUE
func FormatOf(name string) (Format, bool) {
	base := path.Base(name)
	switch {
	case base == PersistenceDocument:
		return FormatXML, true
	case strings.HasSuffix(base, ".units.yaml"), strings.HasSuffix(base, ".units.yml"):
		return FormatYAML, true
	case strings.HasSuffix(base, ".units.cue"):
		return FormatCUE, true
	default:
		return "", false
	}
}

// FSDiscoverer walks a file system (lexical order) and reads every file
// FormatOf recognises.
type FSDiscoverer struct {
	FS   fs.FS
	Root string // defaults to "."
}

// Dir returns a discoverer rooted at a directory on disk.
func Dir(dir string) FSDiscoverer {
	return FSDiscoverer{FS: os.DirFS(dir), Root: "."}
}

// Discover implements Discoverer.
func (d FSDiscoverer) Discover() ([]Resource, error) {
	root := d.Root
	if root == "" {
		root = "."
	}

	var resources []Resource
	err := fs.WalkDir(d.FS, root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		format, ok := FormatOf(p)
		if !ok {
			return nil
		}
		data, err := fs.ReadFile(d.FS, p)
		if err != nil {
			return err
		}
		resources = append(resources, Resource{Path: p, Format: format, Data: data})
		return nil
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Resource: root, Message: "cannot scan configuration sources", Err: err}
	}
	return resources, nil
}

// Static is a fixed, in-memory list of resources.
type Static []Resource

// Discover implements Discoverer.
func (s Static) Discover() ([]Resource, error) {
	out := make([]Resource, len(s))
	copy(out, s)
	return out, nil
}

// Chain concatenates the results of several discoverers in order.
func Chain(ds ...Discoverer) Discoverer {
	return DiscovererFunc(func() ([]Resource, error) {
		var all []Resource
		for _, d := range ds {
			resources, err := d.Discover()
			if err != nil {
				return nil, err
			}
			all = append(all, resources...)
		}
		return all, nil
	})
}

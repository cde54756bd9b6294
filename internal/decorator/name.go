package decorator

import (
	"fmt"
	"strings"
)

// NameOf returns the decorator's Name if it implements Named, otherwise its
// Go type without the package path.
func NameOf(d any) string {
	if n, ok := d.(Named); ok {
		return n.Name()
	}
	name := fmt.Sprintf("%T", d)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

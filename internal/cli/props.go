package cli

import (
	"fmt"
	"strings"
)

// parseProperties turns repeated key=value flags into a property map.
// The value is split on the first "=", so it may itself contain "=".
// A repeated key keeps the last value.
func parseProperties(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	props := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", pair)
		}
		props[key] = value
	}
	return props, nil
}

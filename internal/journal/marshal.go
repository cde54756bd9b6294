package journal

import (
	"encoding/json"
	"fmt"
	"maps"
)

// marshalProperties stores merged properties as JSON. Values JSON cannot
// encode are stored as their fmt.Sprint text. encoding/json sorts map keys,
// so equal maps encode identically.
func marshalProperties(props map[string]any) (string, error) {
	safe := make(map[string]any, len(props))
	maps.Copy(safe, props)
	for k, v := range safe {
		if _, err := json.Marshal(v); err != nil {
			safe[k] = fmt.Sprint(v)
		}
	}
	if props == nil {
		safe = map[string]any{}
	}

	data, err := json.Marshal(safe)
	if err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}
	return string(data), nil
}

func unmarshalProperties(data string) (map[string]any, error) {
	props := map[string]any{}
	if err := json.Unmarshal([]byte(data), &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return props, nil
}

package store

import (
	"fmt"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
	"github.com/roach88/docbridge/internal/wire"
)

// marshalFields converts a resolved field map to tagged wire JSON TEXT.
// The map must not contain field transforms; they are applied before this.
func marshalFields(fields *value.Map) (string, error) {
	tagged, err := tagging.Tag(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	data, err := wire.JSON{}.Marshal(tagged)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// unmarshalFields parses stored TEXT back to a field map, resolving
// references against the store itself.
func (s *Store) unmarshalFields(data string) (*value.Map, error) {
	tagged, err := wire.JSON{}.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	v, err := tagging.Resolve(tagged, s)
	if err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	m, ok := v.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("unmarshal fields: stored document is %s, not a map", value.Kind(v))
	}
	return m, nil
}

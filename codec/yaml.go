package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/reshape"
)

// DecodeYAML decodes a single YAML document into plain data. Mappings become
// map[string]any (non-string keys are rendered with fmt), sequences []any.
func DecodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("codec: decode yaml: %w", err)
	}
	return NormalizeYAML(v), nil
}

// DecodeYAMLObject decodes a YAML mapping document into a mapping.
func DecodeYAMLObject(data []byte) (map[string]any, error) {
	v, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("codec: decode yaml: expected mapping, got %T", v)
	}
	return m, nil
}

// EncodeYAML serializes v to YAML, serializing instances first.
func EncodeYAML(v any) ([]byte, error) {
	if inst, ok := v.(reshape.Serializer); ok {
		v = inst.SerializeWith(reshape.SerializeOpt{})
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode yaml: %w", err)
	}
	return b, nil
}

// NormalizeYAML converts map[any]any nodes produced by YAML decoding into
// map[string]any, recursively.
func NormalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = NormalizeYAML(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = NormalizeYAML(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = NormalizeYAML(e)
		}
		return t
	}
	return v
}

package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the document shape of a definition file.
type File struct {
	Version  string              `yaml:"version"`
	Types    Ordered[TypeDef]    `yaml:"types"`
	Mappings Ordered[MappingDef] `yaml:"mappings"`
}

// TypeDef declares a record type.
type TypeDef struct {
	Extends string            `yaml:"extends,omitempty"`
	Fields  Ordered[FieldDef] `yaml:"fields"`
}

// FieldDef declares one field. Kind defaults to "record" when Type is set
// and to "any" otherwise. Of declares the element of a sequence.
type FieldDef struct {
	Kind     string    `yaml:"kind,omitempty"`
	Required *bool     `yaml:"required,omitempty"`
	Type     string    `yaml:"type,omitempty"`
	Of       *FieldDef `yaml:"of,omitempty"`
	Strict   bool      `yaml:"strict,omitempty"`
	ISO      bool      `yaml:"iso,omitempty"`
}

// MappingDef declares a mapping. Field values are node expressions, decoded
// lazily once every referenced type and mapping is known.
type MappingDef struct {
	Source  string             `yaml:"source,omitempty"`
	Target  string             `yaml:"target,omitempty"`
	Extends string             `yaml:"extends,omitempty"`
	Fields  Ordered[yaml.Node] `yaml:"fields"`
}

// Entry is one named item of an Ordered section.
type Entry[T any] struct {
	Name  string
	Value T
}

// Ordered decodes a YAML mapping while keeping the document order of its
// keys, which is the declaration order of fields.
type Ordered[T any] []Entry[T]

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*o = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node.Kind))
	}
	out := make(Ordered[T], 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if seen[k.Value] {
			return fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		var val T
		if err := v.Decode(&val); err != nil {
			return fmt.Errorf("line %d: %s: %w", v.Line, k.Value, err)
		}
		out = append(out, Entry[T]{Name: k.Value, Value: val})
	}
	*o = out
	return nil
}

// Get returns the value stored under name.
func (o Ordered[T]) Get(name string) (T, bool) {
	for _, e := range o {
		if e.Name == name {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

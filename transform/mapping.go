package transform

import (
	"fmt"
	"log/slog"

	"github.com/reoring/reshape"
)

// Mapping declares how to build a target record from a source value: an
// ordered table of target field name -> Node, with optional source and
// target record types. A Mapping is immutable once built and holds no state
// between applications.
type Mapping struct {
	name    string
	parent  *Mapping
	source  *reshape.RecordType
	target  *reshape.RecordType
	entries []entry
	index   map[string]int
	logger  *slog.Logger
}

type entry struct {
	name string
	node Node
}

// Option configures a mapping.
type Option func(*Mapping)

// WithLogger sets the logger used to trace applications at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapping) {
		m.logger = logger
	}
}

// MappingBuilder collects the declaration of a mapping.
type MappingBuilder struct {
	name   string
	parent *Mapping
	source *reshape.RecordType
	target *reshape.RecordType
	order  []string
	nodes  map[string]Node
	opts   []Option
	err    error
}

// NewMapping starts the declaration of a mapping.
func NewMapping(name string, opts ...Option) *MappingBuilder {
	return &MappingBuilder{name: name, nodes: map[string]Node{}, opts: opts}
}

// Extends inherits the entries, source, target and logger of parent.
func (b *MappingBuilder) Extends(parent *Mapping) *MappingBuilder {
	b.parent = parent
	return b
}

// Source declares the record type the source value is loaded into.
func (b *MappingBuilder) Source(t *reshape.RecordType) *MappingBuilder {
	b.source = t
	return b
}

// Target declares the record type that Apply constructs.
func (b *MappingBuilder) Target(t *reshape.RecordType) *MappingBuilder {
	b.target = t
	return b
}

// Field declares the node that computes the target field name.
func (b *MappingBuilder) Field(name string, n Node) *MappingBuilder {
	switch {
	case b.err != nil:
	case name == "":
		b.err = fmt.Errorf("%w: mapping %q: empty field name", ErrDefinition, b.name)
	case n == nil:
		b.err = fmt.Errorf("%w: mapping %q: field %q has no node", ErrDefinition, b.name, name)
	default:
		if _, dup := b.nodes[name]; dup {
			b.err = fmt.Errorf("%w: mapping %q: field %q declared twice", ErrDefinition, b.name, name)
			break
		}
		b.nodes[name] = n
		b.order = append(b.order, name)
	}
	return b
}

// Build freezes the mapping. Inherited entries keep their order, entries
// declared here replace inherited ones of the same name in place, and new
// entries follow in declaration order.
func (b *MappingBuilder) Build() (*Mapping, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, fmt.Errorf("%w: mapping needs a name", ErrDefinition)
	}
	m := &Mapping{name: b.name, parent: b.parent, source: b.source, target: b.target, index: map[string]int{}}
	if p := b.parent; p != nil {
		if m.source == nil {
			m.source = p.source
		}
		if m.target == nil {
			m.target = p.target
		}
		m.logger = p.logger
		for _, e := range p.entries {
			m.index[e.name] = len(m.entries)
			m.entries = append(m.entries, e)
		}
	}
	for _, n := range b.order {
		e := entry{name: n, node: b.nodes[n]}
		if i, ok := m.index[n]; ok {
			m.entries[i] = e
			continue
		}
		m.index[n] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	for _, opt := range b.opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m, nil
}

// MustBuild is like Build but panics on error.
func (b *MappingBuilder) MustBuild() *Mapping {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the declared mapping name.
func (m *Mapping) Name() string { return m.name }

// Parent returns the mapping this one extends, or nil.
func (m *Mapping) Parent() *Mapping { return m.parent }

// SourceType returns the declared (or inherited) source record type, or nil.
func (m *Mapping) SourceType() *reshape.RecordType { return m.source }

// TargetType returns the declared (or inherited) target record type, or nil.
func (m *Mapping) TargetType() *reshape.RecordType { return m.target }

// FieldNames returns the target field names in evaluation order.
func (m *Mapping) FieldNames() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.name
	}
	return out
}

// Node returns the node computing the target field name.
func (m *Mapping) Node(name string) (Node, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.entries[i].node, true
}

// Apply performs one transformation pass. The source is loaded into the
// source type (when declared), every node is evaluated against it, and the
// results construct the target type, or a GenericRecord when no target type
// is declared. The first failing node aborts the pass with its error. The
// result is not validated.
func (m *Mapping) Apply(src any) (reshape.Instance, error) {
	loaded, err := m.load(src)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(m.entries))
	for _, e := range m.entries {
		v, err := e.node.Eval(loaded)
		if err != nil {
			m.logger.Debug("field transformation failed", "mapping", m.name, "field", e.name, "error", err)
			return nil, err
		}
		m.logger.Debug("field transformed", "mapping", m.name, "field", e.name)
		values[e.name] = v
	}
	if m.target == nil {
		return reshape.NewGeneric(values, m.FieldNames()...), nil
	}
	return m.target.New(values), nil
}

// ApplyAll applies m to every item and returns the instances in order.
func (m *Mapping) ApplyAll(items []any) ([]reshape.Instance, error) {
	out := make([]reshape.Instance, 0, len(items))
	for _, it := range items {
		inst, err := m.Apply(it)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (m *Mapping) load(src any) (any, error) {
	if m.source == nil {
		return src, nil
	}
	switch t := src.(type) {
	case *reshape.Record:
		if t != nil && t.Type().Is(m.source) {
			return t, nil
		}
		if t != nil {
			return m.source.New(t.Values()), nil
		}
	case map[string]any:
		return m.source.New(t), nil
	case reshape.Instance:
		if !isNil(t) {
			return m.source.New(t.Values()), nil
		}
	}
	return nil, fmt.Errorf("%w: %T into %s", ErrSourceShape, src, m.source.Name())
}

package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/reshape"
	"github.com/reoring/reshape/transform"
)

// ErrDefinition marks a definition file that cannot be turned into types
// and mappings.
var ErrDefinition = errors.New("loader: invalid definition")

// Option configures loading.
type Option func(*config)

type config struct {
	funcs  map[string]any
	logger *slog.Logger
}

// WithFuncs registers functions callable from "do" nodes by name.
func WithFuncs(funcs map[string]any) Option {
	return func(c *config) {
		for k, v := range funcs {
			c.funcs[k] = v
		}
	}
}

// WithFunc registers a single function callable from "do" nodes.
func WithFunc(name string, fn any) Option {
	return func(c *config) { c.funcs[name] = fn }
}

// WithLogger sets the logger of the loader and of every mapping it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Definitions holds the record types and mappings declared by a file.
type Definitions struct {
	Version  string
	types    map[string]*reshape.RecordType
	mappings map[string]*transform.Mapping
}

// Type returns the record type declared as name.
func (d *Definitions) Type(name string) (*reshape.RecordType, bool) {
	t, ok := d.types[name]
	return t, ok
}

// Mapping returns the mapping declared as name.
func (d *Definitions) Mapping(name string) (*transform.Mapping, bool) {
	m, ok := d.mappings[name]
	return m, ok
}

// TypeNames returns the declared type names, sorted.
func (d *Definitions) TypeNames() []string { return sortedKeys(d.types) }

// MappingNames returns the declared mapping names, sorted.
func (d *Definitions) MappingNames() []string { return sortedKeys(d.mappings) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// LoadFile reads and parses the definition file at path.
func LoadFile(path string, opts ...Option) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse decodes a YAML definition document and builds every type and
// mapping it declares. Declarations may reference each other in any order.
func Parse(data []byte, opts ...Option) (*Definitions, error) {
	cfg := config{funcs: map[string]any{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinition, err)
	}
	if f.Version == "" {
		f.Version = "1"
	}
	if f.Version != "1" {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrDefinition, f.Version)
	}

	r := &resolver{
		cfg:      cfg,
		file:     &f,
		types:    map[string]*reshape.RecordType{},
		mappings: map[string]*transform.Mapping{},
		visiting: map[string]bool{},
	}
	for _, e := range f.Types {
		if _, err := r.typ(e.Name); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Mappings {
		if _, err := r.mapping(e.Name); err != nil {
			return nil, err
		}
	}
	return &Definitions{Version: f.Version, types: r.types, mappings: r.mappings}, nil
}

// resolver builds declarations on first reference. visiting holds the
// declarations under construction, so a reference back to one of them is a
// cycle.
type resolver struct {
	cfg      config
	file     *File
	types    map[string]*reshape.RecordType
	mappings map[string]*transform.Mapping
	visiting map[string]bool
}

func (r *resolver) typ(name string) (*reshape.RecordType, error) {
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	def, ok := r.file.Types.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrDefinition, name)
	}
	key := "type:" + name
	if r.visiting[key] {
		return nil, fmt.Errorf("%w: type %q references itself", ErrDefinition, name)
	}
	r.visiting[key] = true
	defer delete(r.visiting, key)

	b := reshape.NewType(name)
	if def.Extends != "" {
		p, err := r.typ(def.Extends)
		if err != nil {
			return nil, fmt.Errorf("type %q extends: %w", name, err)
		}
		b.Extends(p)
	}
	for _, e := range def.Fields {
		f, err := r.field(e.Value)
		if err != nil {
			return nil, fmt.Errorf("type %q field %q: %w", name, e.Name, err)
		}
		b.Field(e.Name, f)
	}
	t, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinition, err)
	}
	r.types[name] = t
	r.cfg.logger.Debug("type defined", "type", name, "fields", len(t.Fields()))
	return t, nil
}

var kindAliases = map[string]reshape.Kind{
	"int":    reshape.KindInt,
	"bool":   reshape.KindBool,
	"float":  reshape.KindNumber,
	"num":    reshape.KindNumber,
	"str":    reshape.KindText,
	"string": reshape.KindText,
	"date":   reshape.KindDatetime,
	"time":   reshape.KindDatetime,
	"list":   reshape.KindSequence,
	"dict":   reshape.KindMapping,
	"map":    reshape.KindMapping,
}

func parseKind(s string) (reshape.Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := reshape.ParseKind(s); ok {
		return k, nil
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return reshape.KindAny, fmt.Errorf("%w: unknown kind %q", ErrDefinition, s)
}

func (r *resolver) field(def FieldDef) (reshape.Field, error) {
	kind := reshape.KindAny
	switch {
	case def.Kind != "":
		k, err := parseKind(def.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	case def.Type != "":
		kind = reshape.KindRecord
	}

	var opts []reshape.FieldOption
	if def.Required != nil && !*def.Required {
		opts = append(opts, reshape.Optional())
	}
	if def.Strict {
		opts = append(opts, reshape.Strict())
	}
	if def.ISO {
		opts = append(opts, reshape.ISO())
	}

	switch kind {
	case reshape.KindBool:
		return reshape.Bool(opts...), nil
	case reshape.KindInt:
		return reshape.Int(opts...), nil
	case reshape.KindNumber:
		return reshape.Number(opts...), nil
	case reshape.KindText:
		return reshape.Text(opts...), nil
	case reshape.KindDatetime:
		return reshape.Datetime(opts...), nil
	case reshape.KindUUID:
		return reshape.UUID(opts...), nil
	case reshape.KindMapping:
		return reshape.Mapping(opts...), nil
	case reshape.KindRecord:
		if def.Type == "" {
			return nil, fmt.Errorf("%w: record field needs a type", ErrDefinition)
		}
		t, err := r.typ(def.Type)
		if err != nil {
			return nil, err
		}
		return reshape.Nested(t, opts...), nil
	case reshape.KindSequence:
		if def.Of == nil {
			return reshape.Sequence(opts...), nil
		}
		if def.Of.Kind == "" && def.Of.Type != "" {
			t, err := r.typ(def.Of.Type)
			if err != nil {
				return nil, err
			}
			return reshape.RecordSequence(t, opts...), nil
		}
		elem, err := r.field(*def.Of)
		if err != nil {
			return nil, fmt.Errorf("element: %w", err)
		}
		return reshape.SequenceOf(elem, opts...), nil
	}
	return reshape.Any(opts...), nil
}

func (r *resolver) mapping(name string) (*transform.Mapping, error) {
	if m, ok := r.mappings[name]; ok {
		return m, nil
	}
	def, ok := r.file.Mappings.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown mapping %q", ErrDefinition, name)
	}
	key := "mapping:" + name
	if r.visiting[key] {
		return nil, fmt.Errorf("%w: mapping %q references itself", ErrDefinition, name)
	}
	r.visiting[key] = true
	defer delete(r.visiting, key)

	b := transform.NewMapping(name, transform.WithLogger(r.cfg.logger))
	if def.Extends != "" {
		p, err := r.mapping(def.Extends)
		if err != nil {
			return nil, fmt.Errorf("mapping %q extends: %w", name, err)
		}
		b.Extends(p)
	}
	if def.Source != "" {
		t, err := r.typ(def.Source)
		if err != nil {
			return nil, fmt.Errorf("mapping %q source: %w", name, err)
		}
		b.Source(t)
	}
	if def.Target != "" {
		t, err := r.typ(def.Target)
		if err != nil {
			return nil, fmt.Errorf("mapping %q target: %w", name, err)
		}
		b.Target(t)
	}
	for _, e := range def.Fields {
		var raw any
		if err := e.Value.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: mapping %q field %q: %w", ErrDefinition, name, e.Name, err)
		}
		n, err := r.node(raw)
		if err != nil {
			return nil, fmt.Errorf("mapping %q field %q: %w", name, e.Name, err)
		}
		b.Field(e.Name, n)
	}
	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinition, err)
	}
	r.mappings[name] = m
	r.cfg.logger.Debug("mapping defined", "mapping", name, "fields", len(m.FieldNames()))
	return m, nil
}

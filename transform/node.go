package transform

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/reshape"
)

// Node is one unit of a transformation tree. Eval computes a value from the
// top-level source of the transformation; it must not mutate src.
type Node interface {
	Eval(src any) (any, error)
}

// NodeFunc adapts a plain function to Node.
type NodeFunc func(src any) (any, error)

func (f NodeFunc) Eval(src any) (any, error) { return f(src) }

var (
	// ErrDefinition marks a malformed mapping declaration.
	ErrDefinition = errors.New("transform: invalid definition")
	// ErrCoerce wraps type coercion failures.
	ErrCoerce = errors.New("transform: cannot coerce")
	// ErrNotCallable reports a Do whose first argument is not a function.
	ErrNotCallable = errors.New("transform: not callable")
	// ErrArguments reports Do arguments that do not fit the function signature.
	ErrArguments = errors.New("transform: arguments do not match function")
	// ErrManySubmap reports a Many whose constructor yields a sub-mapping node.
	ErrManySubmap = errors.New("transform: Many cannot apply sub-mappings, use ManySubmap")
	// ErrEmptyPath reports a Get without path segments.
	ErrEmptyPath = errors.New("transform: Get needs at least one path segment")
	// ErrSourceShape reports a source value that cannot load into the declared source type.
	ErrSourceShape = errors.New("transform: cannot load source")
)

// resolve evaluates every Node argument against the same source. Other
// arguments are returned as they are. Arguments are never threaded through
// each other.
func resolve(src any, args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		n, ok := a.(Node)
		if !ok {
			out[i] = a
			continue
		}
		v, err := n.Eval(src)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func resolveOne(src any, arg any) (any, error) {
	if n, ok := arg.(Node); ok {
		return n.Eval(src)
	}
	return arg, nil
}

// items applies the item-flattening rule of the repeated nodes: a single
// sequence argument is expanded, several arguments are the items, and no
// arguments yield no items.
func items(args []any) []any {
	switch len(args) {
	case 0:
		return []any{}
	case 1:
		if s, ok := args[0].([]any); ok {
			return s
		}
		rv := reflect.ValueOf(args[0])
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = rv.Index(i).Interface()
			}
			return out
		}
		if args[0] == nil {
			return []any{}
		}
	}
	return args
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// ---- leaves ----

// AllNode returns the source itself.
type AllNode struct{}

// All returns the source verbatim, or its serialized form when the source
// serializes itself.
func All() *AllNode { return &AllNode{} }

func (*AllNode) Eval(src any) (any, error) {
	if s, ok := src.(reshape.Serializer); ok && !isNil(src) {
		return s.SerializeWith(reshape.SerializeOpt{}), nil
	}
	return src, nil
}

// ConstNode ignores the source and returns a fixed value.
type ConstNode struct{ value any }

// Const returns v on every evaluation.
func Const(v any) *ConstNode { return &ConstNode{value: v} }

func (c *ConstNode) Eval(any) (any, error) { return c.value, nil }

// Value returns the constant.
func (c *ConstNode) Value() any { return c.value }

// GetNode extracts a value by walking a path of keys or attributes.
type GetNode struct {
	path     []string
	optional bool
}

// Get walks the source along path. Mappings are indexed by key; records and
// structs are read by attribute. A missing step fails with *reshape.Missing
// unless the node is Optional.
//
//	v, _ := Get("a", "b").Eval(map[string]any{"a": map[string]any{"b": 1}}) // 1
func Get(path ...string) *GetNode {
	p := make([]string, len(path))
	copy(p, path)
	return &GetNode{path: p}
}

// Optional returns a copy of g that yields nil, instead of failing, at the
// first missing step.
func (g *GetNode) Optional() *GetNode {
	c := *g
	c.optional = true
	return &c
}

// Path returns the path segments.
func (g *GetNode) Path() []string {
	out := make([]string, len(g.path))
	copy(out, g.path)
	return out
}

// IsOptional reports whether missing steps yield nil.
func (g *GetNode) IsOptional() bool { return g.optional }

func (g *GetNode) Eval(src any) (any, error) {
	if len(g.path) == 0 {
		return nil, ErrEmptyPath
	}
	cur := src
	for _, seg := range g.path {
		v, err := reshape.Lookup(cur, seg)
		if err != nil {
			if g.optional {
				return nil, nil
			}
			return nil, &reshape.Missing{Path: g.Path(), Segment: seg, Cause: err}
		}
		cur = v
	}
	return cur, nil
}

// ---- combinators ----

// ConcatNode joins its arguments as text.
type ConcatNode struct{ args []any }

// Concat joins every resolved argument as text, in order, without a separator.
func Concat(args ...any) *ConcatNode { return &ConcatNode{args: args} }

func (c *ConcatNode) Eval(src any) (any, error) {
	vals, err := resolve(src, c.args)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, v := range vals {
		s, err := toText(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return string(out), nil
}

// DoNode applies an arbitrary function.
type DoNode struct {
	fn   any
	args []any
}

// Do calls the resolved fn with the remaining resolved arguments. fn is any
// Go function (or a Node yielding one); errors it returns propagate as they are.
func Do(fn any, args ...any) *DoNode { return &DoNode{fn: fn, args: args} }

func (d *DoNode) Eval(src any) (any, error) {
	fn, err := resolveOne(src, d.fn)
	if err != nil {
		return nil, err
	}
	vals, err := resolve(src, d.args)
	if err != nil {
		return nil, err
	}
	return call(fn, vals)
}

// SubmapNode applies a mapping to a sub-source.
type SubmapNode struct {
	m    *Mapping
	from any
}

// Submap applies m to the resolved from and returns the constructed target
// instance (not its serialized form).
func Submap(m *Mapping, from any) *SubmapNode { return &SubmapNode{m: m, from: from} }

func (s *SubmapNode) Eval(src any) (any, error) {
	if s.m == nil {
		return nil, fmt.Errorf("%w: Submap without mapping", ErrDefinition)
	}
	v, err := resolveOne(src, s.from)
	if err != nil {
		return nil, err
	}
	return s.m.Apply(v)
}

// ManySubmapNode applies a mapping to every item of a sequence.
type ManySubmapNode struct {
	m     *Mapping
	items []any
}

// ManySubmap applies m to every item and returns the serialized results in
// item order. A single sequence argument is expanded into its items.
func ManySubmap(m *Mapping, items ...any) *ManySubmapNode {
	return &ManySubmapNode{m: m, items: items}
}

func (s *ManySubmapNode) Eval(src any) (any, error) {
	if s.m == nil {
		return nil, fmt.Errorf("%w: ManySubmap without mapping", ErrDefinition)
	}
	vals, err := resolve(src, s.items)
	if err != nil {
		return nil, err
	}
	list := items(vals)
	out := make([]any, 0, len(list))
	for _, it := range list {
		inst, err := s.m.Apply(it)
		if err != nil {
			return nil, err
		}
		out = append(out, inst.Serialize())
	}
	return out, nil
}

// Ctor builds a fresh node around a single argument.
type Ctor func(arg any) Node

// Each adapts a typed single-argument constructor, such as Int or ParseDate,
// to Ctor.
func Each[N Node](ctor func(arg any) N) Ctor {
	return func(arg any) Node { return ctor(arg) }
}

// ManyNode applies a node constructor to every item of a sequence.
type ManyNode struct {
	ctor  Ctor
	items []any
}

// Many builds ctor(item) for every item and collects the evaluated results.
// Constructors yielding sub-mapping nodes fail with ErrManySubmap.
//
//	Many(Each(Int), Get("ids")) // ["1", "2"] -> [1, 2]
func Many(ctor Ctor, items ...any) *ManyNode { return &ManyNode{ctor: ctor, items: items} }

func (m *ManyNode) Eval(src any) (any, error) {
	if m.ctor == nil {
		return nil, fmt.Errorf("%w: Many without constructor", ErrDefinition)
	}
	vals, err := resolve(src, m.items)
	if err != nil {
		return nil, err
	}
	list := items(vals)
	out := make([]any, 0, len(list))
	for _, it := range list {
		n := m.ctor(it)
		switch n.(type) {
		case *SubmapNode, *ManySubmapNode:
			return nil, ErrManySubmap
		case nil:
			return nil, fmt.Errorf("%w: Many constructor returned nil", ErrDefinition)
		}
		v, err := n.Eval(src)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

package loader

import (
	"fmt"
	"slices"

	"github.com/reoring/reshape/transform"
)

var coercions = map[string]func(arg any) *transform.CoerceNode{
	"int":  transform.Int,
	"num":  transform.Num,
	"str":  transform.Str,
	"bool": transform.Bool,
	"date": transform.ParseDate,
	"uuid": transform.UUID,
}

// opOf reports the operation named by a single-key mapping.
func opOf(raw any) (string, any, bool) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, false
	}
	for k, v := range m {
		switch k {
		case "all", "const", "get", "concat", "do", "submap", "many_submap", "many":
			return k, v, true
		}
		if _, ok := coercions[k]; ok {
			return k, v, true
		}
	}
	return "", nil, false
}

// node compiles a node expression. Anything that is not an operation is a
// constant.
func (r *resolver) node(raw any) (transform.Node, error) {
	op, body, ok := opOf(raw)
	if !ok {
		return transform.Const(raw), nil
	}
	switch op {
	case "all":
		return transform.All(), nil
	case "const":
		return transform.Const(body), nil
	case "get":
		return r.get(body)
	case "concat":
		args, err := r.args(body)
		if err != nil {
			return nil, fmt.Errorf("concat: %w", err)
		}
		return transform.Concat(args...), nil
	case "do":
		return r.do(body)
	case "submap":
		return r.submap(body)
	case "many_submap":
		return r.manySubmap(body)
	case "many":
		return r.many(body)
	}
	return r.coerce(op, body)
}

// arg compiles an argument: operations become nodes, other values stay
// constants.
func (r *resolver) arg(raw any) (any, error) {
	if _, _, ok := opOf(raw); ok {
		return r.node(raw)
	}
	return raw, nil
}

func (r *resolver) args(raw any) ([]any, error) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		list = []any{raw}
	}
	out := make([]any, len(list))
	for i, it := range list {
		a, err := r.arg(it)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func (r *resolver) get(body any) (transform.Node, error) {
	path, optional := body, false
	if m, ok := body.(map[string]any); ok {
		if err := onlyKeys(m, "path", "optional"); err != nil {
			return nil, fmt.Errorf("get: %w", err)
		}
		path = m["path"]
		if optional, ok = m["optional"].(bool); !ok && m["optional"] != nil {
			return nil, fmt.Errorf("%w: get: optional must be a boolean", ErrDefinition)
		}
	}
	segs, err := segments(path)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: get: empty path", ErrDefinition)
	}
	g := transform.Get(segs...)
	if optional {
		g = g.Optional()
	}
	return g, nil
}

func (r *resolver) coerce(op string, body any) (transform.Node, error) {
	value, optional := body, false
	if m, ok := body.(map[string]any); ok {
		if _, has := m["value"]; has {
			if err := onlyKeys(m, "value", "optional"); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			value = m["value"]
			if optional, ok = m["optional"].(bool); !ok && m["optional"] != nil {
				return nil, fmt.Errorf("%w: %s: optional must be a boolean", ErrDefinition, op)
			}
		}
	}
	a, err := r.arg(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	n := coercions[op](a)
	if optional {
		n = n.Optional()
	}
	return n, nil
}

func (r *resolver) do(body any) (transform.Node, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: do: expected {func, args}", ErrDefinition)
	}
	if err := onlyKeys(m, "func", "args"); err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	name, _ := m["func"].(string)
	fn, ok := r.cfg.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: do: unknown function %q", ErrDefinition, name)
	}
	args, err := r.args(m["args"])
	if err != nil {
		return nil, fmt.Errorf("do %s: %w", name, err)
	}
	return transform.Do(fn, args...), nil
}

func (r *resolver) target(op string, m map[string]any) (*transform.Mapping, error) {
	name, _ := m["mapping"].(string)
	if name == "" {
		return nil, fmt.Errorf("%w: %s: mapping name required", ErrDefinition, op)
	}
	sub, err := r.mapping(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

func (r *resolver) submap(body any) (transform.Node, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: submap: expected {mapping, from}", ErrDefinition)
	}
	if err := onlyKeys(m, "mapping", "from"); err != nil {
		return nil, fmt.Errorf("submap: %w", err)
	}
	sub, err := r.target("submap", m)
	if err != nil {
		return nil, err
	}
	from, err := r.arg(m["from"])
	if err != nil {
		return nil, fmt.Errorf("submap: %w", err)
	}
	return transform.Submap(sub, from), nil
}

// itemArgs reads the items of a repeated node: either a single "from"
// expression or an "items" list.
func (r *resolver) itemArgs(op string, m map[string]any) ([]any, error) {
	from, hasFrom := m["from"]
	items, hasItems := m["items"]
	switch {
	case hasFrom && hasItems:
		return nil, fmt.Errorf("%w: %s: from and items are exclusive", ErrDefinition, op)
	case hasFrom:
		a, err := r.arg(from)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return []any{a}, nil
	case hasItems:
		list, ok := items.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: items must be a list", ErrDefinition, op)
		}
		args, err := r.args(list)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return args, nil
	}
	return nil, nil
}

func (r *resolver) manySubmap(body any) (transform.Node, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: many_submap: expected {mapping, from | items}", ErrDefinition)
	}
	if err := onlyKeys(m, "mapping", "from", "items"); err != nil {
		return nil, fmt.Errorf("many_submap: %w", err)
	}
	sub, err := r.target("many_submap", m)
	if err != nil {
		return nil, err
	}
	args, err := r.itemArgs("many_submap", m)
	if err != nil {
		return nil, err
	}
	return transform.ManySubmap(sub, args...), nil
}

func (r *resolver) many(body any) (transform.Node, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: many: expected {op, from | items}", ErrDefinition)
	}
	if err := onlyKeys(m, "op", "from", "items"); err != nil {
		return nil, fmt.Errorf("many: %w", err)
	}
	op, _ := m["op"].(string)
	ctor, ok := coercions[op]
	if !ok {
		return nil, fmt.Errorf("%w: many: unknown op %q", ErrDefinition, op)
	}
	args, err := r.itemArgs("many", m)
	if err != nil {
		return nil, err
	}
	return transform.Many(transform.Each(ctor), args...), nil
}

func onlyKeys(m map[string]any, allowed ...string) error {
	for k := range m {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("%w: unexpected key %q", ErrDefinition, k)
		}
	}
	return nil
}

// segments reads a path: a single segment or a list of segments.
func segments(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, len(t))
		for i, s := range t {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("%w: path segment %v is not text", ErrDefinition, s)
			}
			out[i] = str
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: path must be text or a list of text", ErrDefinition)
}

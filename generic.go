package reshape

// GenericRecord wraps an arbitrary flat mapping when no record type is
// declared. It keeps key insertion order for serialization and never fails
// validation.
type GenericRecord struct {
	keys   []string
	values map[string]any
}

var _ Instance = (*GenericRecord)(nil)

// NewGeneric wraps m. Keys serialize in the order given by keys; keys of m
// missing from keys follow in no particular order.
func NewGeneric(m map[string]any, keys ...string) *GenericRecord {
	g := &GenericRecord{values: make(map[string]any, len(m))}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if _, seen := g.values[k]; !seen {
				g.keys = append(g.keys, k)
			}
			g.values[k] = v
		}
	}
	for k, v := range m {
		if _, seen := g.values[k]; !seen {
			g.keys = append(g.keys, k)
			g.values[k] = v
		}
	}
	return g
}

// Keys returns the wrapped keys in order.
func (g *GenericRecord) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get returns the value under name, or nil.
func (g *GenericRecord) Get(name string) any { return g.values[name] }

// Attr implements Instance; only wrapped keys are addressable.
func (g *GenericRecord) Attr(name string) (any, bool) {
	v, ok := g.values[name]
	return v, ok
}

// Values implements Instance.
func (g *GenericRecord) Values() map[string]any {
	out := make(map[string]any, len(g.values))
	for k, v := range g.values {
		out[k] = v
	}
	return out
}

// Validate is a no-op.
func (g *GenericRecord) Validate() error { return nil }

// Serialize renders g with implicit nulls.
func (g *GenericRecord) Serialize() map[string]any { return g.SerializeWith(SerializeOpt{}) }

// SerializeWith renders every wrapped key as plain data, serializing
// instances at any depth.
func (g *GenericRecord) SerializeWith(opt SerializeOpt) map[string]any {
	out := make(map[string]any, len(g.keys))
	for _, k := range g.keys {
		v := plain(g.values[k], opt)
		if !opt.ExplicitNulls && Nullish(v, opt) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsEmpty reports whether every wrapped value is nullish.
func (g *GenericRecord) IsEmpty() bool {
	for _, v := range g.values {
		if !Nullish(v, SerializeOpt{}) {
			return false
		}
	}
	return true
}

package reshape

import (
	"fmt"
)

// Record is an instance of a RecordType. Values live per instance and are
// addressed by field name; an unset field is distinct from one explicitly
// set to nil. A Record is not safe for concurrent mutation.
type Record struct {
	typ    *RecordType
	values map[string]any
}

var _ Instance = (*Record)(nil)

// Type returns the record type of r.
func (r *Record) Type() *RecordType { return r.typ }

// Get returns the current value of name, or nil when unset or undeclared.
func (r *Record) Get(name string) any { return r.values[name] }

// Lookup returns the current value of name and whether it is set.
func (r *Record) Lookup(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Attr implements Instance. Declared fields are addressable even when unset.
func (r *Record) Attr(name string) (any, bool) {
	if _, ok := r.typ.index[name]; !ok {
		return nil, false
	}
	return r.values[name], true
}

// Nested returns the record stored under name, or nil when the value is not
// a record.
func (r *Record) Nested(name string) *Record {
	n, _ := r.values[name].(*Record)
	return n
}

// Set assigns a declared field. Assignment does not validate.
func (r *Record) Set(name string, v any) error {
	i, ok := r.typ.index[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, r.typ.name, name)
	}
	r.values[name] = r.typ.fields[i].assign(v)
	return nil
}

// MustSet is like Set but panics on error.
func (r *Record) MustSet(name string, v any) *Record {
	if err := r.Set(name, v); err != nil {
		panic(err)
	}
	return r
}

// Unset removes the value of name so that it reads as absent again.
func (r *Record) Unset(name string) { delete(r.values, name) }

// Values implements Instance.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Validate checks every declared field in order and returns the first
// failure, with its path rebased under the failing field.
func (r *Record) Validate() error {
	for _, f := range r.typ.fields {
		if err := f.Validate(r.values[f.Name()]); err != nil {
			if inv, ok := err.(*Invalid); ok {
				return inv.rebase(f.Name())
			}
			return err
		}
	}
	return nil
}

// Serialize renders r with implicit nulls.
func (r *Record) Serialize() map[string]any { return r.SerializeWith(SerializeOpt{}) }

// SerializeWith renders r as a plain mapping in declaration order of fields.
// Instances held at any depth serialize themselves first, with opt; the
// field's own Serialize follows. Nullish results are dropped unless opt.ExplicitNulls is set.
func (r *Record) SerializeWith(opt SerializeOpt) map[string]any {
	out := make(map[string]any, len(r.typ.fields))
	for _, f := range r.typ.fields {
		v := f.Serialize(plain(r.values[f.Name()], opt))
		if !opt.ExplicitNulls && Nullish(v, opt) {
			continue
		}
		out[f.Name()] = v
	}
	return out
}

// IsEmpty reports whether every declared field currently holds a nullish value.
func (r *Record) IsEmpty() bool {
	for _, f := range r.typ.fields {
		if !Nullish(r.values[f.Name()], SerializeOpt{}) {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.typ.name, r.Serialize())
}

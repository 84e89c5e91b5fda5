package reshape

import (
	"fmt"
)

// RecordType is a named, ordered collection of fields. It is immutable once
// built; use NewType to declare one.
type RecordType struct {
	name   string
	parent *RecordType
	fields []Field
	index  map[string]int
}

// TypeBuilder collects field declarations for a record type.
type TypeBuilder struct {
	name   string
	parent *RecordType
	order  []string
	fields map[string]Field
	err    error
}

// NewType starts the declaration of a record type.
func NewType(name string) *TypeBuilder {
	return &TypeBuilder{name: name, fields: map[string]Field{}}
}

// Extends inherits every field of parent. Fields declared on the builder
// override inherited fields of the same name.
func (b *TypeBuilder) Extends(parent *RecordType) *TypeBuilder {
	b.parent = parent
	return b
}

// Field declares a field. Declaring the same name twice is a definition error.
func (b *TypeBuilder) Field(name string, f Field) *TypeBuilder {
	switch {
	case b.err != nil:
	case name == "":
		b.err = fmt.Errorf("%w: type %q: empty field name", ErrDefinition, b.name)
	case f == nil:
		b.err = fmt.Errorf("%w: type %q: field %q has no definition", ErrDefinition, b.name, name)
	default:
		if _, dup := b.fields[name]; dup {
			b.err = fmt.Errorf("%w: type %q: field %q declared twice", ErrDefinition, b.name, name)
			break
		}
		b.fields[name] = f
		b.order = append(b.order, name)
	}
	return b
}

// Build binds every field to its name and freezes the field table:
// inherited fields come first in ancestor order, overrides keep the
// inherited position, and new fields follow in declaration order.
func (b *TypeBuilder) Build() (*RecordType, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, fmt.Errorf("%w: record type needs a name", ErrDefinition)
	}
	for _, n := range b.order {
		if err := checkNested(b.name, b.fields[n]); err != nil {
			return nil, err
		}
	}
	t := &RecordType{name: b.name, parent: b.parent, index: map[string]int{}}
	if b.parent != nil {
		for _, f := range b.parent.fields {
			t.index[f.Name()] = len(t.fields)
			t.fields = append(t.fields, f)
		}
	}
	for _, n := range b.order {
		f := b.fields[n].named(n)
		if i, ok := t.index[n]; ok {
			t.fields[i] = f
			continue
		}
		t.index[n] = len(t.fields)
		t.fields = append(t.fields, f)
	}
	return t, nil
}

func checkNested(typeName string, f Field) error {
	switch t := f.(type) {
	case *RecordField:
		if t.typ == nil {
			return fmt.Errorf("%w: type %q: nested field has no record type", ErrDefinition, typeName)
		}
	case *SequenceField:
		if t.elem != nil && t.elemType != nil {
			return fmt.Errorf("%w: type %q: sequence declares two element types", ErrDefinition, typeName)
		}
	}
	return nil
}

// MustBuild is like Build but panics on error.
func (b *TypeBuilder) MustBuild() *RecordType {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the declared type name.
func (t *RecordType) Name() string { return t.name }

// Parent returns the type this one extends, or nil.
func (t *RecordType) Parent() *RecordType { return t.parent }

// Fields returns the fields in declaration order, inherited ones included.
func (t *RecordType) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// FieldNames returns the field names in declaration order.
func (t *RecordType) FieldNames() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name()
	}
	return out
}

// Field returns the field declared under name.
func (t *RecordType) Field(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i], true
}

// Is reports whether t is other or inherits from it.
func (t *RecordType) Is(other *RecordType) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// New constructs an instance. Each map is merged over the previous ones, so
// New(data, overrides) lets overrides win on key conflicts. Keys that are not
// declared fields are ignored. Nested record fields that are not supplied
// start as empty instances of their type.
func (t *RecordType) New(values ...map[string]any) *Record {
	r := &Record{typ: t, values: make(map[string]any, len(t.fields))}
	merged := map[string]any{}
	for _, m := range values {
		for k, v := range m {
			merged[k] = v
		}
	}
	for _, f := range t.fields {
		if rf, ok := f.(*RecordField); ok {
			if _, supplied := merged[f.Name()]; !supplied {
				r.values[f.Name()] = rf.typ.New()
			}
		}
	}
	for _, f := range t.fields {
		if v, ok := merged[f.Name()]; ok {
			r.values[f.Name()] = f.assign(v)
		}
	}
	return r
}

package reshape

import (
	"reflect"
)

// RecordField holds a nested record of a declared type. An unset nested
// field is instantiated empty at record construction so that dotted
// traversal always finds a record.
type RecordField struct {
	fieldBase
	typ *RecordType
}

// Nested declares a field holding an instance of t.
func Nested(t *RecordType, opts ...FieldOption) *RecordField {
	return &RecordField{fieldBase: newBase(buildOpts(opts)), typ: t}
}

func (f *RecordField) Kind() Kind              { return KindRecord }
func (f *RecordField) Type() *RecordType       { return f.typ }
func (f *RecordField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *RecordField) assign(v any) any {
	if m, ok := v.(map[string]any); ok {
		return f.typ.New(m)
	}
	return v
}

// Validate delegates to the nested value's own Validate. Errors keep the
// path relative to the nested record; the owning record rebases them.
func (f *RecordField) Validate(v any) error {
	if done, err := f.absent(KindRecord, v); done {
		return err
	}
	switch t := v.(type) {
	case Instance:
		return t.Validate()
	case map[string]any:
		return f.typ.New(t).Validate()
	}
	return invalid(f.name, KindRecord, CodeInvalidType, v)
}

// Serialize renders an absent nested record as an empty mapping.
func (f *RecordField) Serialize(v any) any {
	switch t := v.(type) {
	case nil:
		return map[string]any{}
	case Serializer:
		return t.SerializeWith(SerializeOpt{})
	}
	return v
}

// SequenceField holds a slice. An element type, when declared, is either a
// Field checked per element or a record type whose instances (or plain
// mappings convertible to it) must validate.
type SequenceField struct {
	fieldBase
	elem     Field
	elemType *RecordType
}

// Sequence declares an untyped sequence field.
func Sequence(opts ...FieldOption) *SequenceField {
	return &SequenceField{fieldBase: newBase(buildOpts(opts))}
}

// SequenceOf declares a sequence whose elements must satisfy elem.
func SequenceOf(elem Field, opts ...FieldOption) *SequenceField {
	return &SequenceField{fieldBase: newBase(buildOpts(opts)), elem: elem}
}

// RecordSequence declares a sequence of records of type t.
func RecordSequence(t *RecordType, opts ...FieldOption) *SequenceField {
	return &SequenceField{fieldBase: newBase(buildOpts(opts)), elemType: t}
}

func (f *SequenceField) Kind() Kind              { return KindSequence }
func (f *SequenceField) Elem() Field             { return f.elem }
func (f *SequenceField) ElemType() *RecordType   { return f.elemType }
func (f *SequenceField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *SequenceField) Validate(v any) error {
	if done, err := f.absent(KindSequence, v); done {
		return err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return invalid(f.name, KindSequence, CodeInvalidType, v)
	}
	if f.elem == nil && f.elemType == nil {
		return nil
	}
	for i := 0; i < rv.Len(); i++ {
		e := rv.Index(i).Interface()
		if err := f.validateElem(e); err != nil {
			kind := KindRecord
			if f.elem != nil {
				kind = f.elem.Kind()
			}
			return &Invalid{
				Field: f.name,
				Path:  "/" + itoa(i),
				Code:  CodeInvalidElement,
				Kind:  kind,
				Value: e,
				Index: i,
				Cause: err,
			}
		}
	}
	return nil
}

func (f *SequenceField) validateElem(e any) error {
	if f.elem != nil {
		return f.elem.Validate(e)
	}
	switch t := e.(type) {
	case *Record:
		if t == nil || !t.Type().Is(f.elemType) {
			return invalid("", KindRecord, CodeInvalidType, e)
		}
		return t.Validate()
	case map[string]any:
		return f.elemType.New(t).Validate()
	}
	return invalid("", KindRecord, CodeInvalidType, e)
}

// Serialize renders record elements, at any depth, through their own
// serialization and passes every other element through. An absent sequence
// is empty.
func (f *SequenceField) Serialize(v any) any {
	if v == nil {
		return []any{}
	}
	return plain(v, SerializeOpt{})
}

var serializerType = reflect.TypeOf((*Serializer)(nil)).Elem()

// plain renders v as plain data. Serializers are serialized, and slices,
// arrays and string-keyed maps that can hold them are copied with every
// element rendered, so no instance survives inside a container. Other
// values are returned as they are.
func plain(v any, opt SerializeOpt) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Serializer:
		if isNilPointer(v) {
			return nil
		}
		return t.SerializeWith(opt)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e, opt)
		}
		return out
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e, opt)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if (rv.Kind() == reflect.Slice && rv.IsNil()) || !canHoldSerializer(rv.Type().Elem()) {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = plain(rv.Index(i).Interface(), opt)
		}
		return out
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String || !canHoldSerializer(rv.Type().Elem()) {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = plain(iter.Value().Interface(), opt)
		}
		return out
	}
	return v
}

func canHoldSerializer(t reflect.Type) bool {
	switch {
	case t.Kind() == reflect.Interface, t.Implements(serializerType):
		return true
	case t.Kind() == reflect.Slice, t.Kind() == reflect.Array:
		return canHoldSerializer(t.Elem())
	case t.Kind() == reflect.Map:
		return t.Key().Kind() == reflect.String && canHoldSerializer(t.Elem())
	}
	return false
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// MappingField holds a plain mapping, or a record instance that is
// validated by delegation.
type MappingField struct{ fieldBase }

// Mapping declares a plain mapping field.
func Mapping(opts ...FieldOption) *MappingField { return &MappingField{newBase(buildOpts(opts))} }

func (f *MappingField) Kind() Kind              { return KindMapping }
func (f *MappingField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *MappingField) Validate(v any) error {
	if done, err := f.absent(KindMapping, v); done {
		return err
	}
	if inst, ok := v.(Instance); ok {
		return inst.Validate()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return nil
	}
	return invalid(f.name, KindMapping, CodeInvalidType, v)
}

func (f *MappingField) Serialize(v any) any { return plain(v, SerializeOpt{}) }

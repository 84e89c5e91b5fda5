package reshape

import (
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field is a typed slot definition on a record type. It owns the validation
// and serialization contract for the values stored under its name.
//
// The set of implementations is closed: BoolField, IntField, NumberField,
// TextField, DatetimeField, UUIDField, RecordField, SequenceField,
// MappingField and AnyField.
type Field interface {
	Name() string
	Kind() Kind
	Required() bool
	// Validate reports whether v satisfies the field. Failures are *Invalid.
	Validate(v any) error
	// Serialize returns the plain-data form of v. It never fails; values it
	// does not understand pass through unchanged.
	Serialize(v any) any

	// named returns a copy of the field bound to name.
	named(name string) Field
	// assign converts a value on its way into a record (setting is not validating).
	assign(v any) any
}

// FieldOption configures a field at construction time.
type FieldOption func(*fieldOpts)

type fieldOpts struct {
	optional bool
	strict   bool
	iso      bool
}

// Optional makes absent (nil or unset) values valid.
func Optional() FieldOption { return func(o *fieldOpts) { o.optional = true } }

// Strict requires text fields to hold an exact string value.
func Strict() FieldOption { return func(o *fieldOpts) { o.strict = true } }

// ISO makes datetime fields serialize to RFC 3339 text.
func ISO() FieldOption { return func(o *fieldOpts) { o.iso = true } }

func buildOpts(opts []FieldOption) fieldOpts {
	var o fieldOpts
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

type fieldBase struct {
	name     string
	required bool
}

func newBase(o fieldOpts) fieldBase { return fieldBase{required: !o.optional} }

func (b fieldBase) Name() string        { return b.name }
func (b fieldBase) Required() bool      { return b.required }
func (b fieldBase) assign(v any) any    { return v }
func (b fieldBase) Serialize(v any) any { return v }

// absent applies the shared required-ness rule; a nil pointer counts as
// absent. done reports that no structural check is needed.
func (b fieldBase) absent(kind Kind, v any) (done bool, err error) {
	if v != nil && !isNilPointer(v) {
		return false, nil
	}
	if b.required {
		return true, invalid(b.name, kind, CodeRequired, v)
	}
	return true, nil
}

// simpleCheck is the exact runtime type match shared by scalar kinds.
func (b fieldBase) simpleCheck(kind Kind, v any, ok func(any) bool) error {
	if done, err := b.absent(kind, v); done {
		return err
	}
	if !ok(v) {
		return invalid(b.name, kind, CodeInvalidType, v)
	}
	return nil
}

func reflectKindIn(v any, kinds ...reflect.Kind) bool {
	k := reflect.ValueOf(v).Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func isBool(v any) bool { return reflectKindIn(v, reflect.Bool) }

func isInt(v any) bool {
	return reflectKindIn(v,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64)
}

func isNumber(v any) bool { return reflectKindIn(v, reflect.Float32, reflect.Float64) }

func isString(v any) bool { return reflectKindIn(v, reflect.String) }

// ---- scalar kinds ----

// BoolField holds booleans.
type BoolField struct{ fieldBase }

// Bool declares a boolean field.
func Bool(opts ...FieldOption) *BoolField { return &BoolField{newBase(buildOpts(opts))} }

func (f *BoolField) Kind() Kind              { return KindBool }
func (f *BoolField) Validate(v any) error    { return f.simpleCheck(KindBool, v, isBool) }
func (f *BoolField) named(name string) Field { c := *f; c.name = name; return &c }

// IntField holds any Go integer type. Floats are rejected even when integral.
type IntField struct{ fieldBase }

// Int declares an integer field.
func Int(opts ...FieldOption) *IntField { return &IntField{newBase(buildOpts(opts))} }

func (f *IntField) Kind() Kind              { return KindInt }
func (f *IntField) Validate(v any) error    { return f.simpleCheck(KindInt, v, isInt) }
func (f *IntField) named(name string) Field { c := *f; c.name = name; return &c }

// NumberField holds float32 or float64 values.
type NumberField struct{ fieldBase }

// Number declares a floating point field.
func Number(opts ...FieldOption) *NumberField { return &NumberField{newBase(buildOpts(opts))} }

func (f *NumberField) Kind() Kind              { return KindNumber }
func (f *NumberField) Validate(v any) error    { return f.simpleCheck(KindNumber, v, isNumber) }
func (f *NumberField) named(name string) Field { c := *f; c.name = name; return &c }

// TextField holds text. Unless strict, valid UTF-8 byte slices are accepted
// and serialized as strings.
type TextField struct {
	fieldBase
	strict bool
}

// Text declares a text field. See Strict.
func Text(opts ...FieldOption) *TextField {
	o := buildOpts(opts)
	return &TextField{fieldBase: newBase(o), strict: o.strict}
}

func (f *TextField) Kind() Kind              { return KindText }
func (f *TextField) IsStrict() bool          { return f.strict }
func (f *TextField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *TextField) Validate(v any) error {
	if f.strict {
		return f.simpleCheck(KindText, v, isString)
	}
	return f.simpleCheck(KindText, v, func(v any) bool {
		_, ok := coerceText(v)
		return ok
	})
}

func (f *TextField) Serialize(v any) any {
	if f.strict {
		return v
	}
	if s, ok := coerceText(v); ok {
		return s
	}
	return v
}

// coerceText performs the lossless byte-to-text coercion.
func coerceText(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		if !utf8.Valid(t) {
			return nil, false
		}
		return string(t), true
	}
	if isString(v) {
		return v, true
	}
	return nil, false
}

// DatetimeField holds time.Time values.
type DatetimeField struct {
	fieldBase
	iso bool
}

// Datetime declares a time.Time field. See ISO.
func Datetime(opts ...FieldOption) *DatetimeField {
	o := buildOpts(opts)
	return &DatetimeField{fieldBase: newBase(o), iso: o.iso}
}

func (f *DatetimeField) Kind() Kind              { return KindDatetime }
func (f *DatetimeField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *DatetimeField) Validate(v any) error {
	return f.simpleCheck(KindDatetime, v, func(v any) bool {
		_, ok := v.(time.Time)
		return ok
	})
}

func (f *DatetimeField) Serialize(v any) any {
	if t, ok := v.(time.Time); ok && f.iso {
		return t.Format(time.RFC3339Nano)
	}
	return v
}

// UUIDField holds uuid.UUID values and serializes them to canonical text.
type UUIDField struct{ fieldBase }

// UUID declares a uuid.UUID field.
func UUID(opts ...FieldOption) *UUIDField { return &UUIDField{newBase(buildOpts(opts))} }

func (f *UUIDField) Kind() Kind              { return KindUUID }
func (f *UUIDField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *UUIDField) Validate(v any) error {
	return f.simpleCheck(KindUUID, v, func(v any) bool {
		_, ok := v.(uuid.UUID)
		return ok
	})
}

func (f *UUIDField) Serialize(v any) any {
	if id, ok := v.(uuid.UUID); ok {
		return id.String()
	}
	return v
}

// AnyField only enforces required-ness. Instances it holds, directly or
// inside containers, serialize to plain data.
type AnyField struct{ fieldBase }

// Any declares an untyped field.
func Any(opts ...FieldOption) *AnyField { return &AnyField{newBase(buildOpts(opts))} }

func (f *AnyField) Kind() Kind              { return KindAny }
func (f *AnyField) named(name string) Field { c := *f; c.name = name; return &c }

func (f *AnyField) Validate(v any) error {
	_, err := f.absent(KindAny, v)
	return err
}

func (f *AnyField) Serialize(v any) any { return plain(v, SerializeOpt{}) }

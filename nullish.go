package reshape

import "reflect"

// SerializeOpt controls how instances render to plain data. The zero value
// drops nullish keys.
type SerializeOpt struct {
	// ExplicitNulls keeps keys whose values are nullish.
	ExplicitNulls bool
}

// Serializer is implemented by values that know their plain-data form.
type Serializer interface {
	SerializeWith(opt SerializeOpt) map[string]any
}

// Emptier is implemented by values that define their own emptiness.
type Emptier interface {
	IsEmpty() bool
}

// Instance is the capability set shared by declared records and generic
// records: attribute lookup, validation and serialization.
type Instance interface {
	Serializer
	Emptier
	// Attr returns the current value of name and whether name is addressable.
	Attr(name string) (any, bool)
	// Values returns a copy of the values that are currently set.
	Values() map[string]any
	Validate() error
	Serialize() map[string]any
}

// Nullish reports whether v counts as absent when serializing. With
// implicit nulls (the default) absent values, empty mappings and
// sequences, and empty records are nullish. With ExplicitNulls only nil is.
func Nullish(v any, opt SerializeOpt) bool {
	if v == nil {
		return true
	}
	if opt.ExplicitNulls {
		return false
	}
	if e, ok := v.(Emptier); ok {
		if isNilPointer(v) {
			return true
		}
		return e.IsEmpty()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

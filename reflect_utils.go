package reshape

import (
	"fmt"
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key used by attribute lookup.
// Priority: reshape:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("reshape"); gt != "" {
		parts := strings.Split(gt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i > 0 {
			return jt[:i]
		} else if i < 0 {
			return jt
		}
	}
	return sf.Name
}

// Lookup performs one extraction step on src. Mappings with string keys are
// indexed by key; instances and structs are read by attribute. A failed
// lookup wraps ErrNoKey or ErrNoAttr.
func Lookup(src any, key string) (any, error) {
	switch t := src.(type) {
	case map[string]any:
		v, ok := t[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoKey, key)
		}
		return v, nil
	case Instance:
		if isNilPointer(src) {
			break
		}
		v, ok := t.Attr(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoAttr, key)
		}
		return v, nil
	}
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: %q on nil", ErrNoAttr, key)
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrNoKey, key)
		}
		return mv.Interface(), nil
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			if k := ResolveStructKey(sf); k == key || (k != "-" && sf.Name == key) {
				return rv.Field(i).Interface(), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q on %T", ErrNoAttr, key, src)
}

package transform

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/reshape"
	"github.com/reoring/reshape/codec"
)

// CoerceNode converts its single resolved argument to a target kind. It
// ignores the source.
type CoerceNode struct {
	kind     reshape.Kind
	arg      any
	optional bool
}

// Int converts to int. Text is parsed in base 10, floats truncate toward
// zero and booleans become 0 or 1.
func Int(arg any) *CoerceNode { return &CoerceNode{kind: reshape.KindInt, arg: arg} }

// Num converts to float64.
func Num(arg any) *CoerceNode { return &CoerceNode{kind: reshape.KindNumber, arg: arg} }

// Str converts to string. Floats render in their shortest form and
// fmt.Stringer values use String.
func Str(arg any) *CoerceNode { return &CoerceNode{kind: reshape.KindText, arg: arg} }

// Bool converts to bool: nil is false, numbers are true when non-zero, text
// goes through strconv.ParseBool ("" is false) and collections are true
// when non-empty.
func Bool(arg any) *CoerceNode { return &CoerceNode{kind: reshape.KindBool, arg: arg} }

// ParseDate converts an integer Unix timestamp or date text to time.Time,
// defaulting to UTC when the text has no zone. See codec.ParseDate.
func ParseDate(arg any) *CoerceNode { return &CoerceNode{kind: reshape.KindDatetime, arg: arg} }

// UUID converts text, bytes or a uuid.UUID to uuid.UUID.
func UUID(arg any) *CoerceNode { return &CoerceNode{kind: reshape.KindUUID, arg: arg} }

// Optional returns a copy of c that passes null-like arguments through
// unconverted. Only nil is null-like, except for Str where "" is as well.
func (c *CoerceNode) Optional() *CoerceNode {
	cp := *c
	cp.optional = true
	return &cp
}

// Kind returns the target kind.
func (c *CoerceNode) Kind() reshape.Kind { return c.kind }

// IsOptional reports whether null-like arguments pass through.
func (c *CoerceNode) IsOptional() bool { return c.optional }

func (c *CoerceNode) Eval(src any) (any, error) {
	v, err := resolveOne(src, c.arg)
	if err != nil {
		return nil, err
	}
	if c.optional && nullLike(c.kind, v) {
		return v, nil
	}
	return Coerce(c.kind, v)
}

func nullLike(kind reshape.Kind, v any) bool {
	if v == nil {
		return true
	}
	if kind == reshape.KindText {
		s, ok := v.(string)
		return ok && s == ""
	}
	return false
}

// Coerce applies the standard conversion for kind. Supported kinds are
// integer, number, text, boolean, datetime and uuid.
func Coerce(kind reshape.Kind, v any) (any, error) {
	switch kind {
	case reshape.KindInt:
		return toInt(v)
	case reshape.KindNumber:
		return toFloat(v)
	case reshape.KindText:
		return toText(v)
	case reshape.KindBool:
		return toBool(v)
	case reshape.KindDatetime:
		t, err := codec.ParseDate(v)
		if err != nil {
			return nil, coerceErr(v, kind, err)
		}
		return t, nil
	case reshape.KindUUID:
		return toUUID(v)
	}
	return nil, fmt.Errorf("%w: no conversion to %s", ErrCoerce, kind)
}

func coerceErr(v any, kind reshape.Kind, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %#v (%T) to %s: %w", ErrCoerce, v, v, kind, cause)
	}
	return fmt.Errorf("%w: %#v (%T) to %s", ErrCoerce, v, v, kind)
}

func toInt(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt || n > math.MaxInt {
			return nil, coerceErr(v, reshape.KindInt, strconv.ErrRange)
		}
		return int(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt {
			return nil, coerceErr(v, reshape.KindInt, strconv.ErrRange)
		}
		return int(n), nil
	case reflect.Float32, reflect.Float64:
		f := math.Trunc(rv.Float())
		if math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
			return nil, coerceErr(v, reshape.KindInt, strconv.ErrRange)
		}
		return int(f), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		n, err := strconv.Atoi(strings.TrimSpace(rv.String()))
		if err != nil {
			return nil, coerceErr(v, reshape.KindInt, err)
		}
		return n, nil
	}
	if b, ok := v.([]byte); ok {
		return toInt(string(b))
	}
	return nil, coerceErr(v, reshape.KindInt, nil)
}

func toFloat(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return nil, coerceErr(v, reshape.KindNumber, err)
		}
		return f, nil
	}
	if b, ok := v.([]byte); ok {
		return toFloat(string(b))
	}
	return nil, coerceErr(v, reshape.KindNumber, nil)
}

func toText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", coerceErr(v, reshape.KindText, nil)
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return t.String(), nil
	case error:
		return t.Error(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}
	return fmt.Sprint(v), nil
}

func toBool(v any) (any, error) {
	if v == nil {
		return false, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, coerceErr(v, reshape.KindBool, err)
		}
		return b, nil
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0, nil
	case reflect.Pointer:
		return !rv.IsNil(), nil
	}
	return nil, coerceErr(v, reshape.KindBool, nil)
}

func toUUID(v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil {
			return nil, coerceErr(v, reshape.KindUUID, err)
		}
		return id, nil
	case []byte:
		id, err := uuid.ParseBytes(t)
		if err != nil {
			return nil, coerceErr(v, reshape.KindUUID, err)
		}
		return id, nil
	}
	return nil, coerceErr(v, reshape.KindUUID, nil)
}

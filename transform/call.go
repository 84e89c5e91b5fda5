package transform

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// call invokes fn with args. Common signatures are called directly; any
// other function goes through reflection, converting arguments to the
// parameter types. A trailing error result is returned as the error.
func call(fn any, args []any) (any, error) {
	switch f := fn.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotCallable)
	case func(...any) (any, error):
		return f(args...)
	case func(...any) any:
		return f(args...), nil
	case func(any) (any, error):
		if len(args) == 1 {
			return f(args[0])
		}
	case func(any) any:
		if len(args) == 1 {
			return f(args[0]), nil
		}
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}
	in, err := callArgs(fv.Type(), args)
	if err != nil {
		return nil, err
	}
	return callResults(fv.Call(in))
}

func callArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%w: %s wants at least %d arguments, got %d", ErrArguments, ft, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%w: %s wants %d arguments, got %d", ErrArguments, ft, n, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		v, err := argValue(a, pt)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d of %s: %v", ErrArguments, i, ft, err)
		}
		in[i] = v
	}
	return in, nil
}

func argValue(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch pt.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", pt)
	}
	av := reflect.ValueOf(a)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if numeric(av.Kind()) && numeric(pt.Kind()) || av.Kind() == pt.Kind() && av.Type().ConvertibleTo(pt) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", a, pt)
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func callResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			err, _ := out[0].Interface().(error)
			if isNil(err) {
				return nil, nil
			}
			return nil, err
		}
		return out[0].Interface(), nil
	case 2:
		if out[1].Type().Implements(errorType) {
			var err error
			if e, ok := out[1].Interface().(error); ok && !isNil(e) {
				err = e
			}
			return out[0].Interface(), err
		}
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}

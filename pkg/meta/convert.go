package meta

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrArity is wrapped by ArgumentError when the argument count is wrong.
var ErrArity = errors.New("wrong number of arguments")

var (
	objectType   = reflect.TypeOf((*Object)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	instanceType = reflect.TypeOf((*Instance)(nil))
	anyType      = reflect.TypeOf((*any)(nil)).Elem()
)

// AnyType is the reflect type of the empty interface, used for parameters
// that accept any value.
func AnyType() reflect.Type { return anyType }

// Box converts a typed value to the generic form. The dynamic value is kept
// as is, so numeric precision never changes.
func Box(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// BoxArgs boxes every value of in.
func BoxArgs(in []reflect.Value) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = Box(v)
	}
	return out
}

// Unbox converts a generic value to a value of type t. The dynamic type of
// x must be assignable to t. A nil x yields the zero value of t when t can
// hold nil (interface, pointer, slice, map, chan, func) and a
// ConversionError otherwise.
func Unbox(x any, t reflect.Type) (reflect.Value, error) {
	if x == nil {
		if !nilable(t) {
			return reflect.Value{}, &ConversionError{To: t}
		}
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(x)
	if v.Type() == t {
		return v, nil
	}
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, &ConversionError{From: v.Type(), To: t}
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out, nil
}

// Coerce checks x against t and returns it in generic form. It is the
// boxed counterpart of Unbox for callers that never leave the generic form.
func Coerce(x any, t reflect.Type) (any, error) {
	if t == nil {
		return nil, nil
	}
	v, err := Unbox(x, t)
	if err != nil {
		return nil, err
	}
	return Box(v), nil
}

// CoerceArgs validates args against the parameters of m.
func CoerceArgs(m *Method, args []any) ([]any, error) {
	if len(args) != len(m.params) {
		return nil, &ArgumentError{
			Method: m.String(),
			Index:  -1,
			Err:    fmt.Errorf("%w: want %d, got %d", ErrArity, len(m.params), len(args)),
		}
	}
	out := make([]any, len(args))
	for i, a := range args {
		c, err := Coerce(a, m.params[i])
		if err != nil {
			return nil, &ArgumentError{Method: m.String(), Index: i, Err: err}
		}
		out[i] = c
	}
	return out, nil
}

func unboxArgs(name string, params []reflect.Type, args []any) ([]reflect.Value, error) {
	if len(args) != len(params) {
		return nil, &ArgumentError{
			Method: name,
			Index:  -1,
			Err:    fmt.Errorf("%w: want %d, got %d", ErrArity, len(params), len(args)),
		}
	}
	out := make([]reflect.Value, len(args))
	for i, a := range args {
		v, err := Unbox(a, params[i])
		if err != nil {
			return nil, &ArgumentError{Method: name, Index: i, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// assignable reports whether x could be unboxed into t.
func assignable(x any, t reflect.Type) bool {
	if x == nil {
		return nilable(t)
	}
	return reflect.TypeOf(x).AssignableTo(t)
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

// receiver wraps self as a reflect value of the Object interface type.
func receiver(self Object) reflect.Value {
	v := reflect.New(objectType).Elem()
	if self != nil {
		v.Set(reflect.ValueOf(self))
	}
	return v
}

package meta

import (
	"fmt"
	"reflect"
)

// Bind returns a typed func that calls the method name of obj through
// virtual dispatch. F is the method type without the receiver, for example
// func(string) (string, error).
func Bind[F any](obj Object, name string) (F, error) {
	var zero F
	ft := reflect.TypeOf((*F)(nil)).Elem()
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return zero, fmt.Errorf("meta: Bind: %s is not a non-variadic func type", ft)
	}
	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	var result reflect.Type
	switch {
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		result = ft.Out(0)
	default:
		return zero, fmt.Errorf("meta: Bind: %s must return (R, error) or error", ft)
	}
	sig := SignatureOf(name, params...)
	m := obj.Type().Resolve(sig)
	if m == nil {
		return zero, &NoSuchMethodError{Type: obj.Type(), Method: sig.String()}
	}
	if m.result != result {
		return zero, &ConversionError{From: FuncOf(m.result, params...), To: ft}
	}
	fn := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		return m.ReturnValues(obj.Invoke(sig, BoxArgs(in)...))
	})
	return fn.Interface().(F), nil
}

// CallAs calls name on obj by name and asserts the result to R. A nil
// result yields the zero R.
func CallAs[R any](obj Object, name string, args ...any) (R, error) {
	var zero R
	res, err := obj.Call(name, args...)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	r, ok := res.(R)
	if !ok {
		return zero, &ConversionError{From: reflect.TypeOf(res), To: reflect.TypeOf((*R)(nil)).Elem()}
	}
	return r, nil
}

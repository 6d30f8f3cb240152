package meta

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Method describes a method of a Type. A method without a body is
// abstract.
type Method struct {
	name   string
	owner  *Type
	params []reflect.Type
	result reflect.Type // nil for methods without a result
	vis    Visibility
	flags  Flags
	body   reflect.Value
	fnType reflect.Type
	sig    Signature
}

func newMethod(name string, fnType reflect.Type, body reflect.Value, vis Visibility, flags Flags) (*Method, error) {
	params, result, err := shapeOf(fnType)
	if err != nil {
		return nil, err
	}
	if !body.IsValid() {
		flags |= Abstract
	} else {
		flags &^= Abstract
	}
	return &Method{
		name:   name,
		params: params,
		result: result,
		vis:    vis,
		flags:  flags,
		body:   body,
		fnType: fnType,
		sig:    SignatureOf(name, params...),
	}, nil
}

func (m *Method) Name() string             { return m.name }
func (m *Method) Owner() *Type             { return m.owner }
func (m *Method) Params() []reflect.Type   { return slices.Clone(m.params) }
func (m *Method) NumParams() int           { return len(m.params) }
func (m *Method) Param(i int) reflect.Type { return m.params[i] }
func (m *Method) Result() reflect.Type     { return m.result }
func (m *Method) IsVoid() bool             { return m.result == nil }
func (m *Method) Visibility() Visibility   { return m.vis }
func (m *Method) Flags() Flags             { return m.flags }
func (m *Method) IsStatic() bool           { return m.flags.Has(Static) }
func (m *Method) IsFinal() bool            { return m.flags.Has(Final) }
func (m *Method) IsBridge() bool           { return m.flags.Has(Bridge) }
func (m *Method) IsAbstract() bool         { return !m.body.IsValid() }
func (m *Method) Signature() Signature     { return m.sig }
func (m *Method) FuncType() reflect.Type   { return m.fnType }
func (m *Method) Body() reflect.Value      { return m.body }
func (m *Method) HasBody() bool            { return m.body.IsValid() }
func (m *Method) IsDefault() bool {
	return m.owner != nil && m.owner.kind == ContractKind && m.body.IsValid() && !m.IsStatic()
}

// String renders the method as Owner.name(params) result.
func (m *Method) String() string {
	var b strings.Builder
	if m.owner != nil {
		b.WriteString(m.owner.name)
		b.WriteByte('.')
	}
	b.WriteString(m.name)
	b.WriteByte('(')
	for i, p := range m.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if m.result != nil {
		b.WriteByte(' ')
		b.WriteString(m.result.String())
	}
	return b.String()
}

// CallBody runs the method body with self as the receiver, bypassing
// virtual dispatch. Arguments are unboxed into the declared parameter types
// and the result is boxed. Errors returned by the body come back as the
// same value; panics propagate.
func (m *Method) CallBody(self Object, args []any) (any, error) {
	if !m.body.IsValid() {
		return nil, &AbstractMethodError{Method: m}
	}
	in, err := unboxArgs(m.String(), m.params, args)
	if err != nil {
		return nil, err
	}
	return m.call(self, in)
}

func (m *Method) call(self Object, in []reflect.Value) (any, error) {
	full := make([]reflect.Value, 0, len(in)+1)
	full = append(full, receiver(self))
	full = append(full, in...)
	out := m.body.Call(full)
	var err error
	if e := out[len(out)-1]; !e.IsNil() {
		err = e.Interface().(error)
	}
	if m.result == nil {
		return nil, err
	}
	return Box(out[0]), err
}

// ReturnValues converts a generic result and error into the typed return
// values of the method body. A result that cannot be unboxed yields a
// ConversionError; err is passed through untouched.
func (m *Method) ReturnValues(res any, err error) []reflect.Value {
	errV := reflect.New(errorType).Elem()
	if m.result == nil {
		if err != nil {
			errV.Set(reflect.ValueOf(err))
		}
		return []reflect.Value{errV}
	}
	if err != nil {
		errV.Set(reflect.ValueOf(err))
		return []reflect.Value{reflect.Zero(m.result), errV}
	}
	v, cerr := Unbox(res, m.result)
	if cerr != nil {
		errV.Set(reflect.ValueOf(cerr))
		return []reflect.Value{reflect.Zero(m.result), errV}
	}
	return []reflect.Value{v, errV}
}

// FuncOf returns the body type of a method with the given result and
// parameters. A nil result describes a method without a result.
func FuncOf(result reflect.Type, params ...reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, len(params)+1)
	in = append(in, objectType)
	in = append(in, params...)
	out := []reflect.Type{errorType}
	if result != nil {
		out = []reflect.Type{result, errorType}
	}
	return reflect.FuncOf(in, out, false)
}

func shapeOf(ft reflect.Type) ([]reflect.Type, reflect.Type, error) {
	if ft == nil || ft.Kind() != reflect.Func {
		return nil, nil, fmt.Errorf("method body must be a func, got %v", ft)
	}
	if ft.IsVariadic() {
		return nil, nil, fmt.Errorf("variadic method body %s", ft)
	}
	if ft.NumIn() == 0 || ft.In(0) != objectType {
		return nil, nil, fmt.Errorf("method body %s: first parameter must be meta.Object", ft)
	}
	params := make([]reflect.Type, ft.NumIn()-1)
	for i := range params {
		params[i] = ft.In(i + 1)
	}
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) != errorType {
			return nil, nil, fmt.Errorf("method body %s: last result must be error", ft)
		}
		return params, nil, nil
	case 2:
		if ft.Out(1) != errorType {
			return nil, nil, fmt.Errorf("method body %s: last result must be error", ft)
		}
		return params, ft.Out(0), nil
	default:
		return nil, nil, fmt.Errorf("method body %s: want (R, error) or error results", ft)
	}
}

package meta

import (
	"errors"
	"fmt"
	"reflect"
)

// MethodOption configures a method or constructor declaration.
type MethodOption func(*methodSpec)

type methodSpec struct {
	vis   Visibility
	flags Flags
}

// Visible sets the visibility. Methods are public by default.
func Visible(v Visibility) MethodOption {
	return func(s *methodSpec) { s.vis = v }
}

// Modifiers adds modifier flags (Static, Final, Bridge, Synthetic).
func Modifiers(f Flags) MethodOption {
	return func(s *methodSpec) { s.flags |= f }
}

// Builder declares a class or a contract.
//
//	base, err := meta.NewClass("Greeter").
//		Method("Greet", func(self meta.Object, name string) (string, error) {
//			return "hello " + name, nil
//		}).
//		Build()
type Builder struct {
	t    *Type
	errs []error
}

// NewClass starts a class declaration. Without Extends the class extends
// Root.
func NewClass(name string) *Builder {
	return &Builder{t: &Type{name: name, kind: ClassKind}}
}

// NewContract starts a contract declaration.
func NewContract(name string) *Builder {
	return &Builder{t: &Type{name: name, kind: ContractKind}}
}

func (b *Builder) fail(format string, args ...any) *Builder {
	b.errs = append(b.errs, buildErrorf(b.t.name, format, args...))
	return b
}

// Extends sets the superclass of a class, or adds a super-contract to a
// contract.
func (b *Builder) Extends(super *Type) *Builder {
	if super == nil {
		return b.fail("nil supertype")
	}
	if b.t.kind == ContractKind {
		return b.Implements(super)
	}
	if b.t.super != nil {
		return b.fail("superclass already set to %s", b.t.super.name)
	}
	b.t.super = super
	return b
}

// Implements adds contracts. For contracts it is the same as Extends.
func (b *Builder) Implements(contracts ...*Type) *Builder {
	for _, c := range contracts {
		if c == nil {
			b.fail("nil contract")
			continue
		}
		b.t.contracts = append(b.t.contracts, c)
	}
	return b
}

// Final marks a class as not extensible.
func (b *Builder) Final() *Builder {
	b.t.flags |= Final
	return b
}

// Abstract marks a class as abstract: it cannot be instantiated and may
// leave abstract methods unimplemented.
func (b *Builder) Abstract() *Builder {
	b.t.flags |= Abstract
	return b
}

// Synthetic marks a generated type. Synthetic classes may leave abstract
// methods unimplemented; calling them fails at runtime.
func (b *Builder) Synthetic() *Builder {
	b.t.flags |= Synthetic
	return b
}

// Method declares a method with a body. body is a func value, or a
// reflect.Value holding one, of the shape
// func(self meta.Object, params...) (R, error) or func(self meta.Object, params...) error.
func (b *Builder) Method(name string, body any, opts ...MethodOption) *Builder {
	v, ok := body.(reflect.Value)
	if !ok {
		v = reflect.ValueOf(body)
	}
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return b.fail("method %s: body must be a non-nil func", name)
	}
	return b.declare(name, v.Type(), v, opts)
}

// Declare declares an abstract method. A nil result declares a method
// without a result.
func (b *Builder) Declare(name string, result reflect.Type, params ...reflect.Type) *Builder {
	return b.declare(name, FuncOf(result, params...), reflect.Value{}, nil)
}

func (b *Builder) declare(name string, ft reflect.Type, body reflect.Value, opts []MethodOption) *Builder {
	if name == "" {
		return b.fail("empty method name")
	}
	spec := methodSpec{vis: Public}
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.flags.Has(Abstract) {
		return b.fail("method %s: use Declare for abstract methods", name)
	}
	if b.t.kind == ContractKind && spec.vis != Public {
		return b.fail("method %s: contract methods must be public", name)
	}
	m, err := newMethod(name, ft, body, spec.vis, spec.flags)
	if err != nil {
		return b.fail("method %s: %v", name, err)
	}
	if m.IsAbstract() && (m.IsStatic() || m.IsFinal() || m.vis == Private) {
		return b.fail("abstract method %s cannot be static, final or private", name)
	}
	m.owner = b.t
	b.t.declared = append(b.t.declared, m)
	return b
}

// Constructor declares a constructor with body
// func(self *meta.Instance, params...) error.
func (b *Builder) Constructor(body any, opts ...MethodOption) *Builder {
	if b.t.kind == ContractKind {
		return b.fail("contracts have no constructors")
	}
	v, ok := body.(reflect.Value)
	if !ok {
		v = reflect.ValueOf(body)
	}
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return b.fail("constructor body must be a non-nil func")
	}
	ft := v.Type()
	if ft.IsVariadic() || ft.NumIn() == 0 || ft.In(0) != instanceType || ft.NumOut() != 1 || ft.Out(0) != errorType {
		return b.fail("constructor body %s: want func(*meta.Instance, ...) error", ft)
	}
	spec := methodSpec{vis: Public}
	for _, opt := range opts {
		opt(&spec)
	}
	params := make([]reflect.Type, ft.NumIn()-1)
	for i := range params {
		params[i] = ft.In(i + 1)
	}
	for _, c := range b.t.ctors {
		if typeListKey(c.params) == typeListKey(params) {
			return b.fail("duplicate constructor %s", ft)
		}
	}
	b.t.ctors = append(b.t.ctors, &Constructor{owner: b.t, params: params, vis: spec.vis, body: v})
	return b
}

// Build validates the declaration and links the virtual table.
func (b *Builder) Build() (*Type, error) {
	if b.t.name == "" {
		b.fail("empty type name")
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	t := b.t
	b.t = nil
	switch t.kind {
	case ClassKind:
		if t.super == nil && !t.flags.Has(rootFlag) {
			t.super = Root
		}
		if t.super != nil {
			if t.super.kind != ClassKind {
				return nil, buildErrorf(t.name, "cannot extend %s", t.super)
			}
			if t.super.IsFinal() {
				return nil, buildErrorf(t.name, "cannot extend final %s", t.super.name)
			}
		}
		if len(t.ctors) == 0 {
			t.ctors = []*Constructor{{owner: t, vis: Public}}
		}
	case ContractKind:
		if t.flags.Has(Final) {
			return nil, buildErrorf(t.name, "contracts cannot be final")
		}
	}
	seen := make(map[*Type]bool)
	for _, c := range t.contracts {
		if c.kind != ContractKind {
			return nil, buildErrorf(t.name, "%s is not a contract", c.name)
		}
		if seen[c] {
			return nil, buildErrorf(t.name, "duplicate contract %s", c.name)
		}
		seen[c] = true
	}
	if err := t.link(); err != nil {
		return nil, err
	}
	if t.kind == ClassKind && !t.IsAbstract() && !t.IsSynthetic() {
		for _, sig := range t.order {
			if m := t.vtable[sig]; m.IsAbstract() {
				return nil, buildErrorf(t.name, "does not implement %s", m)
			}
		}
	}
	t.flags &^= rootFlag
	return t, nil
}

// MustBuild is Build for package-level declarations; it panics on error.
func (b *Builder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("meta: %v", err))
	}
	return t
}

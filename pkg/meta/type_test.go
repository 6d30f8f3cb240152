package meta

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stringType = reflect.TypeOf("")
	intType    = reflect.TypeOf(0)
)

func greeter(t *testing.T) *Type {
	t.Helper()
	typ, err := NewClass("Greeter").
		Method("Greet", func(self Object, name string) (string, error) {
			return "hello " + name, nil
		}).
		Method("secret", func(self Object) (int, error) { return 42, nil }, Visible(Private)).
		Method("Tick", func(self Object) error { return nil }, Visible(Protected)).
		Build()
	require.NoError(t, err)
	return typ
}

func TestBuildClassDefaults(t *testing.T) {
	typ := greeter(t)

	assert.Equal(t, Root, typ.Super())
	assert.True(t, typ.IsClass())
	assert.False(t, typ.IsAbstract())
	require.NotNil(t, typ.DefaultConstructor())

	var names []string
	for _, m := range typ.Methods() {
		names = append(names, m.Name())
	}
	// own public first, then inherited public
	assert.Equal(t, []string{"Greet", "String", "Hash", "Equals"}, names)
	assert.Len(t, typ.DeclaredMethods(), 3)
	assert.Equal(t, 5, typ.NumVirtual())
}

func TestOverrideRules(t *testing.T) {
	base := NewClass("Base").
		Method("Sealed", func(self Object) error { return nil }, Modifiers(Final)).
		Method("Open", func(self Object) (string, error) { return "", nil }).
		Method("Guarded", func(self Object) error { return nil }, Visible(Protected)).
		MustBuild()

	tests := []struct {
		name string
		b    *Builder
	}{
		{"final", NewClass("A").Extends(base).Method("Sealed", func(self Object) error { return nil })},
		{"result", NewClass("B").Extends(base).Method("Open", func(self Object) (int, error) { return 0, nil })},
		{"visibility", NewClass("C").Extends(base).Method("Guarded", func(self Object) error { return nil }, Visible(Package))},
		{"static", NewClass("D").Extends(base).Method("Open", func(self Object) (string, error) { return "", nil }, Modifiers(Static))},
		{"private hides public", NewClass("P").Extends(base).Method("Open", func(self Object) (string, error) { return "", nil }, Visible(Private))},
		{"duplicate private", NewClass("Q").
			Method("x", func(self Object) error { return nil }, Visible(Private)).
			Method("x", func(self Object) error { return nil }, Visible(Private))},
		{"duplicate", NewClass("E").
			Method("X", func(self Object) error { return nil }).
			Method("X", func(self Object) error { return nil })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			var be *BuildError
			require.ErrorAs(t, err, &be)
		})
	}
}

func TestPrivateMethodsAreNotVirtual(t *testing.T) {
	typ := greeter(t)
	sig := SignatureOf("secret")
	assert.Nil(t, typ.Resolve(sig))

	inst, err := New(typ)
	require.NoError(t, err)
	var nsm *NoSuchMethodError
	_, err = inst.Invoke(sig)
	assert.ErrorAs(t, err, &nsm)
	_, err = inst.Call("secret")
	assert.ErrorAs(t, err, &nsm)

	priv := typ.Declared(sig)
	require.NotNil(t, priv)
	assert.Equal(t, Private, priv.Visibility())
	got, err := priv.CallBody(inst, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	// not inherited, so a subclass may reuse the signature freely
	sub, err := NewClass("Loud").Extends(typ).
		Method("secret", func(self Object) (string, error) { return "mine", nil }).
		Build()
	require.NoError(t, err)
	assert.Nil(t, sub.Declared(SignatureOf("Greet", stringType)))
	m := sub.Resolve(sig)
	require.NotNil(t, m)
	assert.Equal(t, sub, m.Owner())
	assert.Equal(t, stringType, m.Result())
}

func TestBuildRejectsInvalidDeclarations(t *testing.T) {
	final := NewClass("F").Final().MustBuild()
	contract := NewContract("C").Declare("Run", nil).MustBuild()

	_, err := NewClass("X").Extends(final).Build()
	assert.Error(t, err)

	_, err = NewClass("X").Extends(contract).Build()
	assert.Error(t, err)

	_, err = NewClass("X").Implements(contract).Build()
	assert.ErrorContains(t, err, "does not implement")

	_, err = NewClass("X").Implements(contract, contract).Build()
	assert.ErrorContains(t, err, "duplicate contract")

	_, err = NewClass("X").Method("Bad", func(s string) error { return nil }).Build()
	assert.ErrorContains(t, err, "first parameter")

	_, err = NewContract("Y").Method("Hidden", func(self Object) error { return nil }, Visible(Protected)).Build()
	assert.ErrorContains(t, err, "must be public")

	abstract, err := NewClass("Shape").Abstract().Declare("Area", intType).Build()
	require.NoError(t, err)
	assert.True(t, abstract.IsAbstract())
	_, err = New(abstract)
	assert.ErrorIs(t, err, ErrAbstractType)
}

func TestContractDefaults(t *testing.T) {
	c1 := NewContract("D1").
		Method("Calc", func(self Object, i int) (int, error) { return i * 2, nil }).
		MustBuild()
	c2 := NewContract("D2").
		Method("Calc", func(self Object, i int) (int, error) { return i * 3, nil }).
		MustBuild()
	plain := NewContract("Plain").Declare("Calc", intType, intType).MustBuild()

	impl, err := NewClass("Impl").Implements(plain, c1, c2).Build()
	require.NoError(t, err)

	inst, err := New(impl)
	require.NoError(t, err)
	got, err := inst.Invoke(SignatureOf("Calc", intType), 5)
	require.NoError(t, err)
	// a default replaces an abstract entry, later defaults do not replace it
	assert.Equal(t, 10, got)
	assert.True(t, impl.Resolve(SignatureOf("Calc", intType)).IsDefault())
	assert.True(t, impl.IsSubtypeOf(plain))
	assert.True(t, impl.IsSubtypeOf(Root))
	assert.False(t, plain.IsSubtypeOf(impl))
}

func TestConflictingContractResults(t *testing.T) {
	a := NewContract("A").Declare("Get", stringType).MustBuild()
	b := NewContract("B").Declare("Get", intType).MustBuild()
	_, err := NewClass("X").Abstract().Implements(a, b).Build()
	assert.ErrorContains(t, err, "conflicting results")
}

func TestLookup(t *testing.T) {
	typ := NewClass("Printer").
		Method("Print", func(self Object, s string) (string, error) { return "s:" + s, nil }).
		Method("Print", func(self Object, n int) (string, error) { return "n", nil }).
		Method("Print", func(self Object, xs []string) (string, error) { return "xs", nil }).
		Method("Print", func(self Object, v any) (string, error) { return "any", nil }).
		MustBuild()
	inst, err := New(typ)
	require.NoError(t, err)

	got, err := CallAs[string](inst, "Print", "x")
	require.NoError(t, err)
	assert.Equal(t, "s:x", got)

	got, err = CallAs[string](inst, "Print", 3.5)
	require.NoError(t, err)
	assert.Equal(t, "any", got)

	_, err = inst.Call("Print", nil)
	var amb *AmbiguousCallError
	assert.ErrorAs(t, err, &amb)
	// nil only fits the nilable overloads
	assert.Len(t, amb.Matches, 2)

	got, err = CallAs[string](inst, "Print", 7)
	require.NoError(t, err)
	assert.Equal(t, "n", got)

	_, err = inst.Call("Print")
	var nsm *NoSuchMethodError
	require.ErrorAs(t, err, &nsm)
	assert.Equal(t, "Print/0", nsm.Method)
}

func TestConstructorChain(t *testing.T) {
	var order []string
	base := NewClass("Base").
		Constructor(func(self *Instance) error {
			order = append(order, "base")
			self.Set("name", "anon")
			return nil
		}).
		MustBuild()
	derived := NewClass("Derived").Extends(base).
		Constructor(func(self *Instance, name string) error {
			order = append(order, "derived")
			self.Set("name", name)
			return nil
		}).
		MustBuild()

	inst, err := New(derived, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "derived"}, order)
	v, ok := inst.Get("name")
	require.True(t, ok)
	assert.Equal(t, "bob", v)

	// Derived has no no-argument constructor
	leaf := NewClass("Leaf").Extends(derived).MustBuild()
	_, err = New(leaf)
	assert.ErrorIs(t, err, ErrNoDefaultConstructor)

	boom := errors.New("boom")
	failing := NewClass("Failing").Constructor(func(self *Instance) error { return boom }).MustBuild()
	_, err = New(failing)
	assert.Same(t, boom, err)
}

func TestRootMethods(t *testing.T) {
	typ := greeter(t)
	a, err := New(typ)
	require.NoError(t, err)
	b, err := New(typ)
	require.NoError(t, err)

	eq, err := CallAs[bool](a, "Equals", a)
	require.NoError(t, err)
	assert.True(t, eq)
	eq, err = CallAs[bool](a, "Equals", b)
	require.NoError(t, err)
	assert.False(t, eq)

	h1, err := CallAs[uint32](a, "Hash")
	require.NoError(t, err)
	h2, err := CallAs[uint32](a, "Hash")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	s, err := CallAs[string](a, "String")
	require.NoError(t, err)
	assert.Equal(t, a.String(), s)
}

func TestBind(t *testing.T) {
	inst, err := New(greeter(t))
	require.NoError(t, err)

	greet, err := Bind[func(string) (string, error)](inst, "Greet")
	require.NoError(t, err)
	got, err := greet("ann")
	require.NoError(t, err)
	assert.Equal(t, "hello ann", got)

	_, err = Bind[func(int) (string, error)](inst, "Greet")
	var nsm *NoSuchMethodError
	assert.ErrorAs(t, err, &nsm)

	_, err = Bind[func(string) (int, error)](inst, "Greet")
	var ce *ConversionError
	assert.ErrorAs(t, err, &ce)

	_, err = Bind[func(string) string](inst, "Greet")
	assert.Error(t, err)
}

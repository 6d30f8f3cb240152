package meta

import (
	"fmt"
	"reflect"
	"slices"
)

// Type is a class or a contract. Types are immutable once built.
type Type struct {
	name      string
	kind      Kind
	flags     Flags
	super     *Type
	contracts []*Type
	declared  []*Method
	ctors     []*Constructor

	// resolved at build time
	vtable map[Signature]*Method
	own    map[Signature]*Method
	order  []Signature
	byName map[string][]*Method
	public []*Method
}

func (t *Type) Name() string       { return t.name }
func (t *Type) Kind() Kind         { return t.kind }
func (t *Type) Flags() Flags       { return t.flags }
func (t *Type) IsContract() bool   { return t.kind == ContractKind }
func (t *Type) IsClass() bool      { return t.kind == ClassKind }
func (t *Type) IsFinal() bool      { return t.flags.Has(Final) }
func (t *Type) IsAbstract() bool   { return t.kind == ContractKind || t.flags.Has(Abstract) }
func (t *Type) IsSynthetic() bool  { return t.flags.Has(Synthetic) }
func (t *Type) Super() *Type       { return t.super }
func (t *Type) Contracts() []*Type { return slices.Clone(t.contracts) }
func (t *Type) String() string     { return t.kind.String() + " " + t.name }
func (t *Type) Methods() []*Method { return slices.Clone(t.public) }
func (t *Type) NumVirtual() int    { return len(t.order) }
func (t *Type) Resolve(sig Signature) *Method {
	return t.vtable[sig]
}

// DeclaredMethods returns the methods declared by t itself, of any
// visibility, in declaration order.
func (t *Type) DeclaredMethods() []*Method { return slices.Clone(t.declared) }

// Declared returns the method t itself declares for sig, of any
// visibility, or nil. Private methods are only reachable this way; call
// them with Method.CallBody.
func (t *Type) Declared(sig Signature) *Method { return t.own[sig] }

// Virtuals returns every resolved method of t in table order: inherited
// entries first, overrides in place.
func (t *Type) Virtuals() []*Method {
	out := make([]*Method, len(t.order))
	for i, sig := range t.order {
		out[i] = t.vtable[sig]
	}
	return out
}

// Constructors returns the constructors of a class. A class that declares
// none has an implicit public no-argument constructor.
func (t *Type) Constructors() []*Constructor { return slices.Clone(t.ctors) }

// DefaultConstructor returns the no-argument constructor, or nil.
func (t *Type) DefaultConstructor() *Constructor {
	for _, c := range t.ctors {
		if len(c.params) == 0 {
			return c
		}
	}
	return nil
}

// IsSubtypeOf reports whether t is u or extends or implements it,
// directly or transitively.
func (t *Type) IsSubtypeOf(u *Type) bool {
	if t == u {
		return true
	}
	if t.super != nil && t.super.IsSubtypeOf(u) {
		return true
	}
	for _, c := range t.contracts {
		if c.IsSubtypeOf(u) {
			return true
		}
	}
	return false
}

// Lookup resolves a by-name call. Overloads are filtered by arity and by
// whether each argument can be unboxed into the parameter type; when more
// than one remains, an overload whose parameters match the dynamic argument
// types exactly is preferred.
func (t *Type) Lookup(name string, args ...any) (*Method, error) {
	var matches []*Method
	for _, m := range t.byName[name] {
		if len(m.params) != len(args) {
			continue
		}
		ok := true
		for i, a := range args {
			if !assignable(a, m.params[i]) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &NoSuchMethodError{Type: t, Method: fmt.Sprintf("%s/%d", name, len(args))}
	case 1:
		return matches[0], nil
	}
	var exact []*Method
	for _, m := range matches {
		if exactMatch(m, args) {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	return nil, &AmbiguousCallError{Type: t, Name: name, Matches: matches}
}

func exactMatch(m *Method, args []any) bool {
	for i, a := range args {
		if a == nil || reflect.TypeOf(a) != m.params[i] {
			return false
		}
	}
	return true
}

// link resolves the virtual table: superclass entries first, then
// contract entries not already present (a contract default replaces an
// abstract contract entry, never a class entry), then own declarations.
// Private methods are not virtual: they stay out of the table and are not
// inherited.
func (t *Type) link() error {
	t.vtable = make(map[Signature]*Method)
	t.own = make(map[Signature]*Method, len(t.declared))
	t.order = nil
	set := func(m *Method) {
		if _, ok := t.vtable[m.sig]; !ok {
			t.order = append(t.order, m.sig)
		}
		t.vtable[m.sig] = m
	}
	if t.super != nil {
		for _, sig := range t.super.order {
			set(t.super.vtable[sig])
		}
	}
	for _, c := range t.contracts {
		for _, sig := range c.order {
			m := c.vtable[sig]
			if m.IsStatic() && t.kind == ClassKind {
				continue
			}
			cur, ok := t.vtable[sig]
			if !ok {
				set(m)
				continue
			}
			if cur.result != m.result {
				return buildErrorf(t.name, "%s and %s have conflicting results", cur, m)
			}
			if cur.IsAbstract() && !m.IsAbstract() && cur.owner.kind == ContractKind {
				set(m)
			}
		}
	}
	for _, m := range t.declared {
		if _, ok := t.own[m.sig]; ok {
			return buildErrorf(t.name, "duplicate method %s", m.sig)
		}
		t.own[m.sig] = m
		if cur, ok := t.vtable[m.sig]; ok {
			if err := checkOverride(t, cur, m); err != nil {
				return err
			}
		}
		if m.vis != Private {
			set(m)
		}
	}

	t.byName = make(map[string][]*Method)
	for _, sig := range t.order {
		m := t.vtable[sig]
		t.byName[m.name] = append(t.byName[m.name], m)
	}
	t.public = t.collectPublic()
	return nil
}

func checkOverride(t *Type, inherited, m *Method) error {
	if inherited.IsFinal() {
		return buildErrorf(t.name, "%s overrides final %s", m.name, inherited)
	}
	if inherited.IsStatic() != m.IsStatic() {
		return buildErrorf(t.name, "%s changes static-ness of %s", m.name, inherited)
	}
	if m.vis < inherited.vis {
		return buildErrorf(t.name, "%s reduces visibility of %s to %s", m.name, inherited, m.vis)
	}
	if inherited.result != m.result {
		return buildErrorf(t.name, "%s changes result of %s", m.name, inherited)
	}
	return nil
}

// collectPublic computes the externally visible methods: own public
// declarations, then the superclass's, then each contract's, skipping
// signatures already listed.
func (t *Type) collectPublic() []*Method {
	seen := make(map[Signature]bool)
	var out []*Method
	add := func(m *Method) {
		if m.vis != Public || seen[m.sig] {
			return
		}
		seen[m.sig] = true
		out = append(out, m)
	}
	for _, m := range t.declared {
		add(m)
	}
	if t.super != nil {
		for _, m := range t.super.public {
			add(m)
		}
	}
	for _, c := range t.contracts {
		for _, m := range c.public {
			if t.kind == ClassKind && m.IsStatic() {
				continue
			}
			add(m)
		}
	}
	return out
}

// Constructor initializes instances of a class. Its body has the shape
// func(self *meta.Instance, params...) error.
type Constructor struct {
	owner  *Type
	params []reflect.Type
	vis    Visibility
	body   reflect.Value
}

func (c *Constructor) Owner() *Type           { return c.owner }
func (c *Constructor) Params() []reflect.Type { return slices.Clone(c.params) }
func (c *Constructor) NumParams() int         { return len(c.params) }
func (c *Constructor) Visibility() Visibility { return c.vis }

func (c *Constructor) run(inst *Instance, args []any) error {
	if !c.body.IsValid() {
		return nil
	}
	in, err := unboxArgs(c.owner.name+".<init>", c.params, args)
	if err != nil {
		return err
	}
	full := make([]reflect.Value, 0, len(in)+1)
	full = append(full, reflect.ValueOf(inst))
	full = append(full, in...)
	out := c.body.Call(full)
	if e := out[0]; !e.IsNil() {
		return e.Interface().(error)
	}
	return nil
}

func (t *Type) constructorFor(args []any) (*Constructor, error) {
	for _, c := range t.ctors {
		if len(c.params) != len(args) {
			continue
		}
		ok := true
		for i, a := range args {
			if !assignable(a, c.params[i]) {
				ok = false
				break
			}
		}
		if ok {
			return c, nil
		}
	}
	return nil, &NoSuchMethodError{Type: t, Method: fmt.Sprintf("<init>/%d", len(args))}
}

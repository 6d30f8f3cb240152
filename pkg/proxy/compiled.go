package proxy

import (
	"fmt"
	"reflect"

	"github.com/funvibe/proxykit/pkg/meta"
)

// instanceState is attached to every instance of a compiled proxy type.
type instanceState struct {
	d     *Descriptor
	slots slots
}

func stateOf(self meta.Object) *instanceState {
	a, ok := self.(interface{ Attachment() any })
	if !ok {
		return nil
	}
	st, _ := a.Attachment().(*instanceState)
	return st
}

func superName(u *unit) string {
	return fmt.Sprintf("super$%d$%s", u.index, u.cand.Name())
}

// compile builds the proxy type: a final synthetic subclass of the base
// implementing every contract. Each unit gets an override routed through
// the policy and a private helper running the original body.
func compile(name string, d *Descriptor) (*meta.Type, error) {
	b := meta.NewClass(name).
		Extends(d.base).
		Implements(d.contracts...).
		Final().
		Synthetic()
	for _, u := range d.units {
		b.Method(u.cand.Name(), override(d, u), meta.Visible(meta.Public))
		b.Method(superName(u), superBody(u.original), meta.Visible(meta.Private), meta.Modifiers(meta.Synthetic))
	}
	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	for _, u := range d.units {
		u.super = t.Declared(meta.SignatureOf(superName(u), u.original.Params()...))
	}
	return t, nil
}

// override generates the body of an intercepted method. It boxes the typed
// arguments once, hands them to the policy and unboxes the result into the
// declared result type. The policy's error is returned as is.
func override(d *Descriptor, u *unit) reflect.Value {
	m := u.original
	return reflect.MakeFunc(m.FuncType(), func(in []reflect.Value) []reflect.Value {
		self := in[0].Interface().(meta.Object)
		var iv *invoker
		if st := stateOf(self); st != nil && st.d == d {
			iv = st.slots.get(u)
		} else {
			// body reached with a foreign receiver; nothing to memoize in
			iv = &invoker{u: u}
		}
		res, err := d.policy.Handle(self, u.cand, iv, meta.BoxArgs(in[1:]))
		return m.ReturnValues(res, err)
	})
}

func superBody(orig *meta.Method) reflect.Value {
	if orig.HasBody() {
		return orig.Body()
	}
	return reflect.MakeFunc(orig.FuncType(), func([]reflect.Value) []reflect.Value {
		return orig.ReturnValues(nil, &meta.AbstractMethodError{Method: orig})
	})
}

func (d *Descriptor) newCompiled() (meta.Object, error) {
	st := &instanceState{d: d, slots: newSlots(len(d.units))}
	inst, err := meta.NewAttached(d.typ, st)
	if err != nil {
		return nil, &SynthesisError{Op: "new instance", Type: d.typ.Name(), Err: err}
	}
	return inst, nil
}

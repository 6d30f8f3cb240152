package proxy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/proxykit/pkg/meta"
)

// route is the resolved target of one signature of a reflective proxy.
// Exactly one of u and m is set.
type route struct {
	u *unit
	m *meta.Method
}

// routing builds the metadata-only type of a reflective proxy and its
// routing table. Methods without a unit go to the contract default or the
// root method, resolved here once.
func routing(name string, d *Descriptor) (*meta.Type, map[meta.Signature]route, error) {
	t, err := meta.NewClass(name).
		Implements(d.contracts...).
		Final().
		Synthetic().
		Build()
	if err != nil {
		return nil, nil, err
	}
	byUnit := make(map[meta.Signature]*unit, len(d.units))
	for _, u := range d.units {
		u.super = u.original
		byUnit[u.sig] = u
	}
	routes := make(map[meta.Signature]route, t.NumVirtual())
	for _, m := range t.Virtuals() {
		if u, ok := byUnit[m.Signature()]; ok {
			routes[m.Signature()] = route{u: u}
			continue
		}
		routes[m.Signature()] = route{m: m}
	}
	return t, routes, nil
}

// object is an instance of a reflective proxy. Every call goes through
// Invoke and the descriptor's routing table.
type object struct {
	d     *Descriptor
	id    uuid.UUID
	slots slots
}

func (d *Descriptor) newReflective() (meta.Object, error) {
	return &object{d: d, id: uuid.New(), slots: newSlots(len(d.units))}, nil
}

func (o *object) Type() *meta.Type { return o.d.typ }
func (o *object) ID() uuid.UUID    { return o.id }

func (o *object) Invoke(sig meta.Signature, args ...any) (any, error) {
	r, ok := o.d.routes[sig]
	if !ok {
		return nil, &meta.NoSuchMethodError{Type: o.d.typ, Method: sig.String()}
	}
	if r.u == nil {
		return r.m.CallBody(o, args)
	}
	m := r.u.original
	boxed, err := meta.CoerceArgs(m, args)
	if err != nil {
		return nil, err
	}
	res, err := o.d.policy.Handle(o, r.u.cand, o.slots.get(r.u), boxed)
	if err != nil {
		return nil, err
	}
	if m.IsVoid() {
		return nil, nil
	}
	return meta.Coerce(res, m.Result())
}

func (o *object) Call(name string, args ...any) (any, error) {
	m, err := o.d.typ.Lookup(name, args...)
	if err != nil {
		return nil, err
	}
	return o.Invoke(m.Signature(), args...)
}

func (o *object) String() string {
	return fmt.Sprintf("%s@%s", o.d.typ.Name(), o.id.String()[:8])
}

package proxy

import (
	"sync/atomic"

	"github.com/funvibe/proxykit/pkg/meta"
)

// Invoker reaches the behavior behind one intercepted method.
type Invoker interface {
	// Invoke calls the method on inst through virtual dispatch. Called on
	// the proxy under interception it re-enters the policy; nothing detects
	// the cycle.
	Invoke(inst meta.Object, args ...any) (any, error)

	// InvokeSuper calls the original behavior captured when the proxy type
	// was made, with inst as the receiver and no virtual dispatch. An
	// abstract original fails with *meta.AbstractMethodError.
	InvokeSuper(inst meta.Object, args ...any) (any, error)
}

// unit is the dispatch unit of one intercepted method.
type unit struct {
	index int
	cand  *Candidate
	sig   meta.Signature

	// original is the behavior InvokeSuper reaches: the base body or the
	// contract default, possibly abstract.
	original *meta.Method

	// super is what InvokeSuper calls. For compiled proxies it is the
	// private helper on the generated type, for reflective ones the
	// original itself.
	super *meta.Method
}

type invoker struct {
	u *unit
}

func (iv *invoker) Invoke(inst meta.Object, args ...any) (any, error) {
	return inst.Invoke(iv.u.sig, args...)
}

func (iv *invoker) InvokeSuper(inst meta.Object, args ...any) (any, error) {
	return iv.u.super.CallBody(inst, args)
}

// slots holds the per-instance invokers, filled on first use.
type slots []atomic.Pointer[invoker]

func newSlots(n int) slots { return make(slots, n) }

// get returns the invoker of u for this instance. Concurrent first calls
// may each build one; the first stored wins and all callers get it.
func (s slots) get(u *unit) *invoker {
	p := &s[u.index]
	if iv := p.Load(); iv != nil {
		return iv
	}
	p.CompareAndSwap(nil, &invoker{u: u})
	return p.Load()
}

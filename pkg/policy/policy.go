package policy

import (
	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// New combines a matcher and a handler. A nil matcher intercepts every
// method; a nil handler passes calls through.
func New(match Matcher, h proxy.HandlerFunc) proxy.Policy {
	if match == nil {
		match = All()
	}
	if h == nil {
		h = Passthrough
	}
	return proxy.PolicyFuncs{Intercept: match, Handler: h}
}

// Passthrough calls the original behavior.
func Passthrough(self meta.Object, _ *proxy.Candidate, inv proxy.Invoker, args []any) (any, error) {
	return inv.InvokeSuper(self, args...)
}

// Delegate forwards calls to the method with the same signature on target.
func Delegate(target meta.Object) proxy.HandlerFunc {
	return func(_ meta.Object, m *proxy.Candidate, _ proxy.Invoker, args []any) (any, error) {
		return target.Invoke(m.Signature(), args...)
	}
}

// Return answers every call with v.
func Return(v any) proxy.HandlerFunc {
	return func(meta.Object, *proxy.Candidate, proxy.Invoker, []any) (any, error) {
		return v, nil
	}
}

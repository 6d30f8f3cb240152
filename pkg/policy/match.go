// Package policy provides building blocks for proxy policies: method
// matchers, common handlers and decorators that record, trace or rate
// limit intercepted calls.
package policy

import (
	"path"
	"slices"

	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// Matcher selects candidate methods.
type Matcher func(m *proxy.Candidate) bool

// All matches every method.
func All() Matcher { return func(*proxy.Candidate) bool { return true } }

// None matches no method.
func None() Matcher { return func(*proxy.Candidate) bool { return false } }

// Names matches methods whose name matches one of the glob patterns
// (path.Match syntax). Malformed patterns never match.
func Names(patterns ...string) Matcher {
	return func(m *proxy.Candidate) bool {
		for _, p := range patterns {
			if ok, err := path.Match(p, m.Name()); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// Visibility matches methods with one of the given visibilities.
func Visibility(vs ...meta.Visibility) Matcher {
	return func(m *proxy.Candidate) bool {
		return slices.Contains(vs, m.Visibility())
	}
}

// DeclaredBy matches methods declared by t.
func DeclaredBy(t *meta.Type) Matcher {
	return func(m *proxy.Candidate) bool { return m.DeclaringType() == t }
}

// FromOrigin matches methods surfaced by the base walk or by a contract.
func FromOrigin(o proxy.Origin) Matcher {
	return func(m *proxy.Candidate) bool { return m.Origin == o }
}

// And matches when every matcher matches. And() matches everything.
func And(ms ...Matcher) Matcher {
	return func(c *proxy.Candidate) bool {
		for _, m := range ms {
			if !m(c) {
				return false
			}
		}
		return true
	}
}

// Or matches when any matcher matches. Or() matches nothing.
func Or(ms ...Matcher) Matcher {
	return func(c *proxy.Candidate) bool {
		for _, m := range ms {
			if m(c) {
				return true
			}
		}
		return false
	}
}

// Not inverts m.
func Not(m Matcher) Matcher {
	return func(c *proxy.Candidate) bool { return !m(c) }
}

package proxy

import (
	"fmt"
	"reflect"

	"github.com/funvibe/proxykit/pkg/meta"
)

// Origin tells whether a candidate surfaced from the base walk or from a
// contract.
type Origin uint8

const (
	FromBase Origin = iota
	FromContract
)

func (o Origin) String() string {
	if o == FromContract {
		return "contract"
	}
	return "base"
}

// Candidate is an eligible, deduplicated method of a proxy request.
type Candidate struct {
	// Method is the first method seen with this signature.
	Method *meta.Method

	Origin Origin

	// Source is the type whose walk surfaced the method: the base or one of
	// the contracts.
	Source *meta.Type
}

func (c *Candidate) Name() string              { return c.Method.Name() }
func (c *Candidate) Signature() meta.Signature { return c.Method.Signature() }
func (c *Candidate) DeclaringType() *meta.Type { return c.Method.Owner() }
func (c *Candidate) Params() []reflect.Type    { return c.Method.Params() }
func (c *Candidate) Result() reflect.Type      { return c.Method.Result() }
func (c *Candidate) Visibility() meta.Visibility {
	return c.Method.Visibility()
}

// HasDefault reports whether the candidate carries a body InvokeSuper can
// reach.
func (c *Candidate) HasDefault() bool { return c.Method.HasBody() }

func (c *Candidate) String() string { return c.Method.String() }

// Collect enumerates the methods a proxy of base and contracts may
// intercept. The walk visits base.Methods(), then base.DeclaredMethods(),
// then each contract's Methods() in order. A signature counts as seen when
// it is first met, before eligibility is checked, so the first occurrence
// always wins. Static, final, bridge and non public/protected methods are
// not eligible.
//
// A nil base means meta.Root.
func Collect(base *meta.Type, contracts []*meta.Type) ([]*Candidate, error) {
	if base == nil {
		base = meta.Root
	}
	if err := checkTypes(base, contracts); err != nil {
		return nil, err
	}

	seen := make(map[meta.Signature]bool)
	var out []*Candidate
	visit := func(ms []*meta.Method, origin Origin, src *meta.Type) {
		for _, m := range ms {
			sig := m.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			if !eligible(m) {
				continue
			}
			out = append(out, &Candidate{Method: m, Origin: origin, Source: src})
		}
	}
	visit(base.Methods(), FromBase, base)
	visit(base.DeclaredMethods(), FromBase, base)
	for _, c := range contracts {
		visit(c.Methods(), FromContract, c)
	}
	return out, nil
}

func eligible(m *meta.Method) bool {
	if m.IsStatic() || m.IsFinal() || m.IsBridge() {
		return false
	}
	v := m.Visibility()
	return v == meta.Public || v == meta.Protected
}

func checkTypes(base *meta.Type, contracts []*meta.Type) error {
	if !base.IsClass() {
		return fmt.Errorf("%w: %s", ErrInvalidBase, base)
	}
	for i, c := range contracts {
		if c == nil {
			return fmt.Errorf("%w: contract %d is nil", ErrInvalidContract, i)
		}
		if !c.IsContract() {
			return fmt.Errorf("%w: %s", ErrInvalidContract, c)
		}
	}
	return nil
}

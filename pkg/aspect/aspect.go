// Package aspect advises the methods of a class: a generated subclass runs
// Before, the original method, then AfterReturning, and routes any failure
// of those three to AfterThrowing.
package aspect

import (
	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// Advice is the code woven around advised methods.
type Advice interface {
	// NeedsAspect selects the methods to advise.
	NeedsAspect(m *proxy.Candidate) bool

	// Before runs before the original method. It may modify args in place;
	// the original receives the modified values.
	Before(self meta.Object, m *proxy.Candidate, args []any) error

	// AfterReturning runs after the original returned without error. Its
	// result replaces the original result.
	AfterReturning(self meta.Object, m *proxy.Candidate, args []any, result any) (any, error)

	// AfterThrowing runs when Before, the original or AfterReturning
	// failed. Returning a nil error recovers with the given result.
	AfterThrowing(self meta.Object, m *proxy.Candidate, args []any, err error) (any, error)
}

// Funcs adapts funcs to Advice. Nil funcs are no-ops; a nil Needs advises
// every method and a nil OnThrowing returns the error unchanged.
type Funcs struct {
	Needs       func(m *proxy.Candidate) bool
	OnBefore    func(self meta.Object, m *proxy.Candidate, args []any) error
	OnReturning func(self meta.Object, m *proxy.Candidate, args []any, result any) (any, error)
	OnThrowing  func(self meta.Object, m *proxy.Candidate, args []any, err error) (any, error)
}

func (f Funcs) NeedsAspect(m *proxy.Candidate) bool {
	return f.Needs == nil || f.Needs(m)
}

func (f Funcs) Before(self meta.Object, m *proxy.Candidate, args []any) error {
	if f.OnBefore == nil {
		return nil
	}
	return f.OnBefore(self, m, args)
}

func (f Funcs) AfterReturning(self meta.Object, m *proxy.Candidate, args []any, result any) (any, error) {
	if f.OnReturning == nil {
		return result, nil
	}
	return f.OnReturning(self, m, args, result)
}

func (f Funcs) AfterThrowing(self meta.Object, m *proxy.Candidate, args []any, err error) (any, error) {
	if f.OnThrowing == nil {
		return nil, err
	}
	return f.OnThrowing(self, m, args, err)
}

// Make builds an advised subclass of advised. A nil advised means
// meta.Root. Only the compiled strategy can extend classes, so a strategy
// option is overridden.
func Make(advised *meta.Type, advice Advice, opts ...proxy.Option) (*proxy.Descriptor, error) {
	var p proxy.Policy
	if advice != nil {
		p = &policy{advice: advice}
	}
	opts = append(opts, proxy.WithStrategy(proxy.Compiled))
	return proxy.Make(advised, nil, p, opts...)
}

type policy struct {
	advice Advice
}

func (p *policy) ShouldIntercept(m *proxy.Candidate) bool {
	return p.advice.NeedsAspect(m)
}

func (p *policy) Handle(self meta.Object, m *proxy.Candidate, inv proxy.Invoker, args []any) (any, error) {
	res, err := p.run(self, m, inv, args)
	if err != nil {
		return p.advice.AfterThrowing(self, m, args, err)
	}
	return res, nil
}

func (p *policy) run(self meta.Object, m *proxy.Candidate, inv proxy.Invoker, args []any) (any, error) {
	if err := p.advice.Before(self, m, args); err != nil {
		return nil, err
	}
	res, err := inv.InvokeSuper(self, args...)
	if err != nil {
		return nil, err
	}
	return p.advice.AfterReturning(self, m, args, res)
}

// Package proxy synthesizes proxy types over the meta type model.
//
// Given an optional base class, a list of contracts and a Policy, Make
// produces a Descriptor whose instances behave like the base and contracts
// except that the methods the policy selects are routed through
// Policy.Handle. The handler receives an Invoker to reach either the
// original behavior (InvokeSuper) or virtual dispatch (Invoke).
//
// Two strategies are available:
//   - Compiled generates a final subclass of the base with override
//     bodies built by reflect.MakeFunc. It requires an accessible
//     no-argument constructor on the base.
//   - Reflective builds a generic object per instance that looks every
//     call up in a routing table. It only implements contracts.
package proxy

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/funvibe/proxykit/pkg/meta"
)

// Policy decides which methods a proxy intercepts and handles the
// intercepted calls.
type Policy interface {
	// ShouldIntercept is asked once per unique eligible signature, in
	// catalog order, during Make.
	ShouldIntercept(m *Candidate) bool

	// Handle runs on every intercepted call. Its error is returned to the
	// caller unchanged.
	Handle(self meta.Object, m *Candidate, inv Invoker, args []any) (any, error)
}

// HandlerFunc is the Handle half of a Policy.
type HandlerFunc func(self meta.Object, m *Candidate, inv Invoker, args []any) (any, error)

// PolicyFuncs adapts two funcs to Policy. A nil Intercept intercepts every
// method; a nil Handler passes calls to InvokeSuper.
type PolicyFuncs struct {
	Intercept func(m *Candidate) bool
	Handler   HandlerFunc
}

func (p PolicyFuncs) ShouldIntercept(m *Candidate) bool {
	if p.Intercept == nil {
		return true
	}
	return p.Intercept(m)
}

func (p PolicyFuncs) Handle(self meta.Object, m *Candidate, inv Invoker, args []any) (any, error) {
	if p.Handler == nil {
		return inv.InvokeSuper(self, args...)
	}
	return p.Handler(self, m, inv, args)
}

// Strategy selects how proxy types dispatch.
type Strategy uint8

const (
	Compiled Strategy = iota
	Reflective
)

func (s Strategy) String() string {
	if s == Reflective {
		return "reflective"
	}
	return "compiled"
}

// ParseStrategy parses "compiled" or "reflective".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compiled":
		return Compiled, nil
	case "reflective":
		return Reflective, nil
	default:
		return 0, fmt.Errorf("unknown proxy strategy %q", s)
	}
}

// counter numbers generated types. It is the only state shared between
// Make calls.
var counter atomic.Uint64

// Maker makes proxies with one strategy.
type Maker struct {
	// strategy is the dispatch strategy of generated types.
	strategy Strategy

	// logger receives synthesis events at debug level.
	logger *slog.Logger
}

// Option configures a Maker.
type Option func(*Maker)

// WithStrategy sets the dispatch strategy. The default is Compiled.
func WithStrategy(s Strategy) Option {
	return func(m *Maker) { m.strategy = s }
}

// WithLogger sets the logger for synthesis events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Maker) { m.logger = l }
}

// NewMaker creates a Maker.
func NewMaker(opts ...Option) *Maker {
	m := &Maker{strategy: Compiled}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default().With("component", "proxy")
	}
	return m
}

// Make is NewMaker(opts...).Make(base, contracts, p).
func Make(base *meta.Type, contracts []*meta.Type, p Policy, opts ...Option) (*Descriptor, error) {
	return NewMaker(opts...).Make(base, contracts, p)
}

// Make synthesizes a proxy type for base and contracts. base may be nil.
// Every call generates a new type; nothing is cached.
func (mk *Maker) Make(base *meta.Type, contracts []*meta.Type, p Policy) (*Descriptor, error) {
	if base == nil {
		base = meta.Root
	}
	fail := func(err error) (*Descriptor, error) {
		return nil, &SynthesisError{Op: "make", Type: base.Name(), Err: err}
	}
	if p == nil {
		return fail(ErrNilPolicy)
	}
	if err := mk.check(base); err != nil {
		return fail(err)
	}
	cands, err := Collect(base, contracts)
	if err != nil {
		return fail(err)
	}

	d := &Descriptor{
		base:      base,
		contracts: append([]*meta.Type(nil), contracts...),
		policy:    p,
		strategy:  mk.strategy,
	}
	for _, c := range cands {
		if !p.ShouldIntercept(c) {
			continue
		}
		u := &unit{index: len(d.units), cand: c, sig: c.Signature(), original: c.Method}
		if m := base.Resolve(u.sig); m != nil && !m.IsStatic() && m.Visibility() != meta.Private {
			u.original = m
		}
		d.units = append(d.units, u)
		d.methods = append(d.methods, c)
	}

	name := mk.typeName(base)
	switch mk.strategy {
	case Reflective:
		d.typ, d.routes, err = routing(name, d)
	default:
		d.typ, err = compile(name, d)
	}
	if err != nil {
		return fail(err)
	}
	mk.logger.Debug("proxy type generated",
		"type", d.typ.Name(),
		"base", base.Name(),
		"contracts", len(contracts),
		"candidates", len(cands),
		"intercepted", len(d.units),
		"strategy", mk.strategy.String())
	return d, nil
}

func (mk *Maker) check(base *meta.Type) error {
	if !base.IsClass() {
		return fmt.Errorf("%w: %s", ErrInvalidBase, base)
	}
	if mk.strategy == Reflective {
		if base != meta.Root {
			return fmt.Errorf("%w: %s", ErrBaseNotSupported, base.Name())
		}
		return nil
	}
	if base.IsFinal() {
		return ErrFinalBase
	}
	if c := base.DefaultConstructor(); c == nil || c.Visibility() == meta.Private {
		return ErrNoInitializer
	}
	return nil
}

func (mk *Maker) typeName(base *meta.Type) string {
	n := counter.Add(1)
	if mk.strategy == Reflective {
		return fmt.Sprintf("$Proxy%d", n)
	}
	return fmt.Sprintf("%s$$Proxy$%d", base.Name(), n)
}

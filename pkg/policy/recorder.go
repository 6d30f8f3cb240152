package policy

import (
	"slices"
	"sync"

	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// Decision is one answer of ShouldIntercept.
type Decision struct {
	Method    string
	Intercept bool
}

// Call is one handled call.
type Call struct {
	Method string
	Args   []any
	Result any
	Err    error
}

// Recorder wraps a policy and records its decisions and handled calls.
// It is safe for concurrent use.
type Recorder struct {
	p proxy.Policy

	mu        sync.Mutex
	decisions []Decision
	calls     []Call
}

// Record wraps p.
func Record(p proxy.Policy) *Recorder {
	return &Recorder{p: p}
}

func (r *Recorder) ShouldIntercept(m *proxy.Candidate) bool {
	ok := r.p.ShouldIntercept(m)
	r.mu.Lock()
	r.decisions = append(r.decisions, Decision{Method: m.String(), Intercept: ok})
	r.mu.Unlock()
	return ok
}

func (r *Recorder) Handle(self meta.Object, m *proxy.Candidate, inv proxy.Invoker, args []any) (any, error) {
	res, err := r.p.Handle(self, m, inv, args)
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: m.Name(), Args: slices.Clone(args), Result: res, Err: err})
	r.mu.Unlock()
	return res, err
}

// Decisions returns the recorded decisions in order.
func (r *Recorder) Decisions() []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.decisions)
}

// Calls returns the recorded calls in completion order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.decisions = nil
	r.calls = nil
	r.mu.Unlock()
}

package policy

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

// ErrRateLimited is returned by Limited policies when the limiter denies a
// call.
var ErrRateLimited = errors.New("proxy call rate limited")

type limited struct {
	proxy.Policy
	limiter *rate.Limiter
}

// Limited wraps p so that intercepted calls beyond the limiter's rate fail
// with ErrRateLimited without reaching p.
func Limited(p proxy.Policy, limiter *rate.Limiter) proxy.Policy {
	return &limited{Policy: p, limiter: limiter}
}

func (l *limited) Handle(self meta.Object, m *proxy.Candidate, inv proxy.Invoker, args []any) (any, error) {
	if !l.limiter.Allow() {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, m.Name())
	}
	return l.Policy.Handle(self, m, inv, args)
}

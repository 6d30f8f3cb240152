package policy

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/funvibe/proxykit/pkg/meta"
	"github.com/funvibe/proxykit/pkg/proxy"
)

type traced struct {
	proxy.Policy
	tracer trace.Tracer
	calls  metric.Int64Counter
	errs   metric.Int64Counter
}

// Traced wraps p so that every handled call runs in a span named
// proxy.<declaring type>.<method> and is counted in proxykit.calls, failures
// also in proxykit.errors. Results and errors pass through unchanged.
func Traced(p proxy.Policy, tracer trace.Tracer, meter metric.Meter) (proxy.Policy, error) {
	calls, err := meter.Int64Counter("proxykit.calls",
		metric.WithDescription("Intercepted proxy calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calls counter: %w", err)
	}
	errs, err := meter.Int64Counter("proxykit.errors",
		metric.WithDescription("Intercepted proxy calls that returned an error"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create errors counter: %w", err)
	}
	return &traced{Policy: p, tracer: tracer, calls: calls, errs: errs}, nil
}

func (t *traced) Handle(self meta.Object, m *proxy.Candidate, inv proxy.Invoker, args []any) (any, error) {
	attrs := []attribute.KeyValue{
		attribute.String("proxy.type", self.Type().Name()),
		attribute.String("proxy.method", m.Name()),
	}
	ctx, span := t.tracer.Start(context.Background(),
		"proxy."+m.DeclaringType().Name()+"."+m.Name(),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	set := metric.WithAttributes(attrs...)
	t.calls.Add(ctx, 1, set)
	res, err := t.Policy.Handle(self, m, inv, args)
	if err != nil {
		t.errs.Add(ctx, 1, set)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

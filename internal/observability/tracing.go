package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/iamwavecut/powerbot"

// Tracer returns the process tracer. Until Tracing is started the global
// provider is the otel no-op one.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Tracing installs an SDK tracer provider for the lifetime of the process.
type Tracing struct {
	enabled  bool
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
}

func NewTracing(enabled bool) *Tracing {
	return &Tracing{enabled: enabled}
}

func (t *Tracing) Start(ctx context.Context) error {
	_ = ctx
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled || t.provider != nil {
		return nil
	}
	t.provider = sdktrace.NewTracerProvider()
	otel.SetTracerProvider(t.provider)
	return nil
}

func (t *Tracing) Stop(ctx context.Context) error {
	t.mu.Lock()
	provider := t.provider
	t.provider = nil
	t.mu.Unlock()
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerProvider_WithoutEndpoint(t *testing.T) {
	tp, err := InitTracerProvider("order-service", "")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	if !span.SpanContext().HasTraceID() {
		t.Fatal("expected spans from the registered provider to carry a trace id")
	}
}

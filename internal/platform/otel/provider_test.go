package otel

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("RELIC_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("RELIC_OTEL_ENABLED", "false")

	s, err := SettingsFromEnv()
	if err != nil {
		t.Fatalf("SettingsFromEnv: %v", err)
	}
	if s.Endpoint != "http://localhost:4318" || s.Enabled {
		t.Fatalf("settings = %+v", s)
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
	}{
		{"no endpoint", Settings{Enabled: true}},
		{"disabled", Settings{Endpoint: "http://localhost:4318", Enabled: false}},
		// Non-routable address: nothing is exported, shutdown still flushes.
		{"enabled", Settings{Endpoint: "http://192.0.2.1:4318", Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), "relic-search-test", tt.s)
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}

func TestFlush(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	if err := Flush(context.Background()); err != nil {
		t.Fatalf("Flush without an SDK provider: %v", err)
	}

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(time.Hour)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTracerProvider(tp)

	_, span := otel.Tracer("flush-test").Start(context.Background(), "buffered")
	span.End()
	if n := len(exp.GetSpans()); n != 0 {
		t.Fatalf("%d spans exported before the batch timeout", n)
	}
	if err := Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := exp.GetSpans(); len(got) != 1 || got[0].Name != "buffered" {
		t.Fatalf("exported %v, want the buffered span", got)
	}
}

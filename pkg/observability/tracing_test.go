package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ajitpratap0/tabprofile/pkg/config"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

func TestInitTracingDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := InitTracing(config.TracingConfig{Enabled: false}, TracingOptions{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInitTracingExportsSpans(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	var buf bytes.Buffer
	shutdown, err := InitTracing(config.TracingConfig{
		Enabled:     true,
		ServiceName: "tabprofile-test",
		SampleRate:  1.0,
	}, TracingOptions{ServiceVersion: "test", Writer: &buf})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "source.Load")
	span.SetAttribute("format", "csv")
	span.SetAttribute("rows", 3)
	span.Fail(errors.New(errors.ErrorTypeData, "bad cell"))
	span.End()

	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name":"source.Load"`)
	assert.Contains(t, out, "tabprofile-test")
	assert.Contains(t, out, "bad cell")
	assert.Contains(t, out, `"Value":"data"`)
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.5).Description(), sampler(0.5).Description())
}

func TestSpanWithoutProvider(t *testing.T) {
	_, span := StartSpan(context.Background(), "noop")
	span.SetAttribute("anything", struct{}{})
	span.Fail(nil)
	assert.GreaterOrEqual(t, span.End().Nanoseconds(), int64(0))
}

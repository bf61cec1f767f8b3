package trace

import (
	"bytes"
	"context"
	"testing"

	"trading-journal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(config.Tracing{Enabled: false}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_ExportsSpans(t *testing.T) {
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	var buf bytes.Buffer
	shutdown, err := Init(config.Tracing{Enabled: true, ServiceName: "journal-test"}, &buf)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "journal.AddTrade")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "journal.AddTrade")
	assert.Contains(t, buf.String(), "journal-test")
}

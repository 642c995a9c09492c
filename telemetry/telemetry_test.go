package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	shutdown, err := Init(ctx, &buf, "test")
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(ctx, "engine.tick")
	span.End()

	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "engine.tick")
	assert.Contains(t, buf.String(), ServiceName)
}

package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/adapters/telemetry"
	"go.trai.ch/tempo/internal/core/ports"
)

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, "noop", ports.WithRoot())
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	tracer.EmitPlan(ctx, []string{"a.yaml"})
	span.SetAttribute("key", 1)
	span.RecordError(errors.New("ignored"))

	n, err := span.Write([]byte("discarded"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	span.End()
}

package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/tempo/internal/adapters/telemetry"
	"go.trai.ch/tempo/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_Lifecycle(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	renderer := mocks.NewMockRenderer(ctrl)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var parentID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "parent", gomock.Any()).
			Do(func(spanID, _, _ string, _ time.Time) { parentID = spanID }),
		renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "child", gomock.Any()).
			Do(func(_, gotParent, _ string, _ time.Time) {
				assert.Equal(t, parentID, gotParent)
			}),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	tracer := tp.Tracer("test")
	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := tracer.Start(ctx, "child")
	child.End()
	parent.End()
}

func TestBridge_OnEndWithError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) {
			require.Error(t, err)
			assert.Equal(t, "write failed", err.Error())
		})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "failing")
	span.RecordError(errors.New("write failed"))
	span.SetStatus(codes.Error, "write failed")
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "quiet")
	span.End()
}

func TestBridge_SetRenderer(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	first := mocks.NewMockRenderer(ctrl)
	second := mocks.NewMockRenderer(ctrl)
	first.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "one", gomock.Any())
	first.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil)
	second.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "two", gomock.Any())
	second.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil)

	bridge := telemetry.NewBridge(first)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "one")
	span.End()

	bridge.SetRenderer(second)
	_, span = tracer.Start(context.Background(), "two")
	span.End()

	bridge.SetRenderer(nil)
	_, span = tracer.Start(context.Background(), "three")
	span.End()
}

func TestBridge_FlushAndShutdown(t *testing.T) {
	t.Parallel()

	bridge := telemetry.NewBridge(nil)
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

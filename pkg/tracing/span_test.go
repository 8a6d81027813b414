package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildSpansInheritRunID(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "run", "trace-1")
	_, normalize := StartChildSpan(ctx, "normalize")
	_, build := StartChildSpan(ctx, "build_index")
	normalize.End()
	build.End()
	root.End()

	require.Len(t, root.Children, 2)
	assert.Equal(t, "trace-1", root.Children[0].RunID)
	assert.Equal(t, "build_index", root.Children[1].Name)
	assert.GreaterOrEqual(t, root.Duration, normalize.Duration)
	assert.Same(t, root, SpanFromContext(ctx))
}

func TestChildSpanWithoutParent(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	assert.Empty(t, span.RunID)
	assert.Nil(t, SpanFromContext(context.Background()))
}

func TestLogWritesTree(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, root := StartSpan(context.Background(), "run", "trace-2")
	_, child := StartChildSpan(ctx, "serialize")
	child.SetAttr("terms", 3)
	child.End()
	root.End()
	root.Log(logger)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=run")
	assert.Contains(t, lines[0], "depth=0")
	assert.Contains(t, lines[0], "run_id=trace-2")
	assert.NotContains(t, lines[0], "share_pct")
	assert.Contains(t, lines[1], "span=serialize")
	assert.Contains(t, lines[1], "terms=3")
	assert.Contains(t, lines[1], "depth=1")
}

func TestTimingsFollowStartOrder(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "run", "run-7")
	for _, stage := range []string{"normalize", "build_index", "serialize"} {
		_, span := StartChildSpan(ctx, stage)
		span.End()
	}
	root.End()

	timings := root.Timings()
	require.Len(t, timings, 3)
	assert.Equal(t, "normalize", timings[0].Stage)
	assert.Equal(t, "serialize", timings[2].Stage)
	for _, timing := range timings {
		assert.GreaterOrEqual(t, root.Duration, timing.Duration)
	}
}

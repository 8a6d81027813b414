// Package tracing provides a lightweight span tree that times the stages of
// an indexing run and logs them as structured records via slog.
package tracing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"
)

type contextKey string

const spanKey contextKey = "run_span"

// Span represents a timed operation within a run.
type Span struct {
	Name      string
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Children  []*Span
	Attrs     map[string]any
	mu        sync.Mutex
}

// StartSpan creates a new root span and stores it in the returned context.
func StartSpan(ctx context.Context, name string, runID string) (context.Context, *Span) {
	span := &Span{
		Name:      name,
		RunID:     runID,
		StartTime: time.Now(),
		Children:  make([]*Span, 0),
		Attrs:     make(map[string]any),
	}
	return context.WithValue(ctx, spanKey, span), span
}

// StartChildSpan creates a child span linked to the parent in ctx.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	child := &Span{
		Name:      name,
		StartTime: time.Now(),
		Children:  make([]*Span, 0),
		Attrs:     make(map[string]any),
	}

	if parent != nil {
		child.RunID = parent.RunID
		parent.mu.Lock()
		parent.Children = append(parent.Children, child)
		parent.mu.Unlock()
	}

	return context.WithValue(ctx, spanKey, child), child
}

// End records the span's end time and returns its duration.
func (s *Span) End() time.Duration {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s.Duration
}

func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// SpanFromContext extracts the current Span from ctx, or nil if none.
func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

// Timing is the wall time of one direct child of a span.
type Timing struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Timings lists the direct children of s in start order.
func (s *Span) Timings() []Timing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Timing, 0, len(s.Children))
	for _, child := range s.Children {
		out = append(out, Timing{Stage: child.Name, Duration: child.Duration})
	}
	return out
}

// Log writes the span tree to logger, one record per span. Child records carry
// their share of the parent's duration.
func (s *Span) Log(logger *slog.Logger) {
	s.logRecursive(logger, 0, 0)
}

func (s *Span) logRecursive(logger *slog.Logger, depth int, parent time.Duration) {
	attrs := []any{
		"run_id", s.RunID,
		"span", s.Name,
		"duration_ms", s.Duration.Milliseconds(),
		"depth", depth,
	}
	if parent > 0 {
		attrs = append(attrs, "share_pct", math.Round(float64(s.Duration)/float64(parent)*1000)/10)
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.Attrs))
	for k := range s.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, s.Attrs[k])
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()
	logger.Info("span", attrs...)

	for _, child := range children {
		child.logRecursive(logger, depth+1, s.Duration)
	}
}

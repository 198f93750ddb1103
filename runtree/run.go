/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runtree

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"chainguard.dev/getcontext/contextapi"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// RunType classifies what a run represents.
type RunType string

const (
	RunTypeChain     RunType = "chain"
	RunTypeLLM       RunType = "llm"
	RunTypeTool      RunType = "tool"
	RunTypeRetriever RunType = "retriever"
	RunTypeEmbedding RunType = "embedding"
	RunTypePrompt    RunType = "prompt"
	RunTypeParser    RunType = "parser"
)

// Run is a single recorded execution span. Runs form a tree through ChildRuns.
//
// Only ChildRuns is guarded, since nested calls may finish on different
// goroutines. The remaining fields are owned by whoever holds the run.
type Run struct {
	ID          string
	TraceID     string
	ParentRunID string
	Name        string
	RunType     RunType
	StartTime   time.Time
	EndTime     time.Time
	DottedOrder string
	Inputs      map[string]any
	Outputs     map[string]any
	// Extra carries free-form metadata, including the reserved evaluation options.
	Extra map[string]any
	Error string
	Tags  []string

	ChildRuns []*Run

	mu       sync.Mutex
	recorder *Recorder
	span     oteltrace.Span
}

const tracerName = "chainguard.dev/getcontext/runtree"

// Start begins a run named name. The parent is the run carried by ctx, if any,
// otherwise the new run is the root of a fresh trace. When ctx carries a
// Recorder the run is queued for upload. The returned context carries the new
// run so nested calls attach to it.
func Start(ctx context.Context, name string, opts ...Option) (context.Context, *Run) {
	o := newOptions(opts)
	parent := FromContext(ctx)

	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.NewString(),
		Name:      name,
		RunType:   o.runType,
		StartTime: now,
		Inputs:    o.inputs,
		Tags:      o.tags,
		recorder:  RecorderFromContext(ctx),
	}
	if len(o.metadata) > 0 {
		run.Extra = map[string]any{"metadata": o.metadata}
	}
	stamp := now.Format("20060102T150405.000000Z") + run.ID
	if parent != nil {
		run.TraceID = parent.TraceID
		run.ParentRunID = parent.ID
		run.DottedOrder = parent.DottedOrder + "." + stamp
		parent.AddChild(run)
		if run.recorder == nil {
			run.recorder = parent.recorder
		}
	} else {
		run.TraceID = run.ID
		run.DottedOrder = stamp
	}

	tr := otel.Tracer(tracerName, oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, run.span = tr.Start(ctx, "run."+string(run.RunType), oteltrace.WithAttributes(
		attribute.String("run.name", name),
		attribute.String("run.id", run.ID),
		attribute.String("run.trace_id", run.TraceID),
	))

	if run.recorder != nil {
		run.recorder.enqueue(ctx, opPost, run)
	}
	return WithRun(ctx, run), run
}

// End completes the run with the given outputs and error.
func (r *Run) End(ctx context.Context, outputs map[string]any, err error) {
	r.EndTime = time.Now().UTC()
	r.Outputs = outputs
	if err != nil {
		r.Error = err.Error()
	}

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, err.Error())
		} else {
			r.span.SetStatus(codes.Ok, "")
		}
		r.span.End()
	}

	if r.recorder != nil {
		r.recorder.enqueue(ctx, opPatch, r)
	}
}

// AddChild appends child to the run's children.
func (r *Run) AddChild(child *Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ChildRuns = append(r.ChildRuns, child)
}

// Children returns a snapshot of the run's children in insertion order.
func (r *Run) Children() []*Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Run, len(r.ChildRuns))
	copy(out, r.ChildRuns)
	return out
}

// Duration returns how long the run took, or has been running so far.
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Wire returns the upload form of the run. Nested maps are copied so the
// snapshot stays stable while the caller keeps mutating the run.
func (r *Run) Wire() contextapi.Run {
	w := contextapi.Run{
		ID:          r.ID,
		TraceID:     r.TraceID,
		ParentRunID: r.ParentRunID,
		Name:        r.Name,
		RunType:     string(r.RunType),
		DottedOrder: r.DottedOrder,
		Inputs:      cloneMap(r.Inputs),
		Outputs:     cloneMap(r.Outputs),
		Extra:       cloneMap(r.Extra),
		Error:       r.Error,
		Tags:        append([]string(nil), r.Tags...),
	}
	if !r.StartTime.IsZero() {
		st := r.StartTime
		w.StartTime = &st
	}
	if !r.EndTime.IsZero() {
		et := r.EndTime
		w.EndTime = &et
	}
	return w
}

// String renders the run and its descendants as an indented tree.
func (r *Run) String() string {
	var sb strings.Builder
	r.write(&sb, 0)
	return sb.String()
}

func (r *Run) write(sb *strings.Builder, depth int) {
	fmt.Fprintf(sb, "%s%s (%s)", strings.Repeat("  ", depth), r.Name, r.RunType)
	if !r.EndTime.IsZero() {
		fmt.Fprintf(sb, " %v", r.Duration())
	}
	if r.Error != "" {
		fmt.Fprintf(sb, " error=%q", r.Error)
	}
	sb.WriteString("\n")
	for _, c := range r.Children() {
		c.write(sb, depth+1)
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

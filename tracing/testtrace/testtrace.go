/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package testtrace

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/getcontext/contextapi"
	"chainguard.dev/getcontext/tracing"
	"chainguard.dev/getcontext/tracing/report"
)

// Capture runs fn under a trace named after the running test.
// Options may override the name. It stops the test if fn fails.
func Capture[T any](tb testing.TB, ctx context.Context, s *tracing.Session, fn func(context.Context) (T, error), opts ...tracing.CaptureOption) *tracing.Trace[T] {
	tb.Helper()
	opts = append([]tracing.CaptureOption{tracing.WithTraceName(tb.Name())}, opts...)
	trace, err := tracing.CaptureTrace(ctx, s, fn, opts...)
	if err != nil {
		tb.Fatalf("capturing trace: %v", err)
		return nil
	}
	return trace
}

// AddEvaluator attaches e to the span named spanName, stopping the test on failure.
func AddEvaluator[T any](tb testing.TB, ctx context.Context, trace *tracing.Trace[T], spanName string, e tracing.Evaluator) {
	tb.Helper()
	if err := trace.AddEvaluator(ctx, spanName, e); err != nil {
		tb.Fatalf("adding evaluator %s to %q: %v", e.Evaluator, spanName, err)
	}
}

// Evaluate evaluates trace and reports through tb: every non-passing verdict
// is a test error, and a service or transport failure stops the test.
// The run is returned when all verdicts passed, nil otherwise.
func Evaluate[T any](tb testing.TB, ctx context.Context, trace *tracing.Trace[T]) *contextapi.EvaluationRun {
	tb.Helper()
	run, err := trace.Evaluate(ctx)

	var failed *tracing.EvaluationsFailedError
	switch {
	case err == nil:
		out, _ := report.Markdown(run)
		tb.Log(out)
		return run
	case errors.As(err, &failed):
		for _, f := range failed.Failures {
			tb.Error(f)
		}
		return nil
	default:
		tb.Fatalf("evaluation did not complete: %v", err)
		return nil
	}
}

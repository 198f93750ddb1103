/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"chainguard.dev/getcontext/runtree"
)

// CaptureOption configures CaptureTrace.
type CaptureOption func(*captureOptions)

type captureOptions struct {
	name    string
	runOpts []runtree.Option
}

// WithTraceName names the root run. Without it the name of the enclosing
// test function is used.
func WithTraceName(name string) CaptureOption {
	return func(o *captureOptions) {
		o.name = name
	}
}

// WithRunOptions passes extra options to the root run.
func WithRunOptions(opts ...runtree.Option) CaptureOption {
	return func(o *captureOptions) {
		o.runOpts = append(o.runOpts, opts...)
	}
}

// ErrNoTestFunction is returned when CaptureTrace cannot name the root run.
var ErrNoTestFunction = errors.New("no test function found on the call stack; name it Test* or *Test, or use WithTraceName")

// CaptureTrace runs fn under a new root run and returns the resulting trace.
// Runs started from the context passed to fn are recorded as its descendants.
func CaptureTrace[T any](ctx context.Context, s *Session, fn func(context.Context) (T, error), opts ...CaptureOption) (*Trace[T], error) {
	if s == nil {
		return nil, ErrNoSession
	}
	var o captureOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		name, ok := testFunctionName()
		if !ok {
			return nil, ErrNoTestFunction
		}
		o.name = name
	}

	if rec, ok := s.recorder.(*runtree.Recorder); ok && runtree.RecorderFromContext(ctx) == nil {
		ctx = runtree.WithRecorder(ctx, rec)
	}
	// The captured call always starts a fresh trace.
	ctx = runtree.WithRun(ctx, nil)

	runOpts := append([]runtree.Option{runtree.WithRunType(runtree.RunTypeChain)}, o.runOpts...)
	ctx, root := runtree.Start(ctx, o.name, runOpts...)
	result, err := fn(ctx)
	root.End(ctx, map[string]any{"output": result}, err)
	if err != nil {
		return nil, err
	}
	return NewTrace(s, result, root), nil
}

// testFunctionName returns the nearest function on the call stack whose name
// starts or ends with "test", ignoring case.
func testFunctionName() (string, bool) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if name, ok := testName(frame.Function); ok {
			return name, true
		}
		if !more {
			return "", false
		}
	}
}

// testName extracts a test-like identifier from a qualified function name
// such as "example.com/pkg.TestThing.func1" or "pkg.(*Suite).CheckTest".
func testName(fn string) (string, bool) {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	_, sym, ok := strings.Cut(fn, ".")
	if !ok {
		return "", false
	}
	if i := strings.IndexByte(sym, '['); i >= 0 {
		sym = sym[:i]
	}
	for _, part := range strings.Split(sym, ".") {
		if strings.HasPrefix(part, "(") || isClosure(part) {
			continue
		}
		lower := strings.ToLower(part)
		if strings.HasPrefix(lower, "test") || strings.HasSuffix(lower, "test") {
			return part, true
		}
	}
	return "", false
}

// isClosure matches the compiler's names for anonymous functions: func1, func2, ...
func isClosure(part string) bool {
	digits, ok := strings.CutPrefix(part, "func")
	if !ok || digits == "" {
		return false
	}
	return strings.Trim(digits, "0123456789") == ""
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runtree

import (
	"context"
)

type runKey struct{}

type recorderKey struct{}

// WithRun returns a context carrying run as the current parent.
func WithRun(ctx context.Context, run *Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// FromContext returns the current run, or nil.
func FromContext(ctx context.Context) *Run {
	if run, ok := ctx.Value(runKey{}).(*Run); ok {
		return run
	}
	return nil
}

// WithRecorder returns a context whose new runs are uploaded by rec.
func WithRecorder(ctx context.Context, rec *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

// RecorderFromContext returns the recorder carried by ctx, or nil.
func RecorderFromContext(ctx context.Context) *Recorder {
	if rec, ok := ctx.Value(recorderKey{}).(*Recorder); ok {
		return rec
	}
	return nil
}

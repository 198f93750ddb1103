/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package runtree records nested function executions as a tree of runs and
uploads them to the Context.ai trace store.

# Overview

  - Run: a single execution span, with its children in ChildRuns
  - Recorder: batches run creations and completions and uploads them in the background
  - Traceable / Do: wrap functions so each call records a run
  - Metrics: OpenTelemetry counters for the upload pipeline

Every run is also mirrored as an OpenTelemetry span.

# Usage

	rec := runtree.NewRecorder(ctx, client.Runs)
	defer rec.Close(ctx)
	ctx = runtree.WithRecorder(ctx, rec)

	answer := runtree.Traceable("answer", func(ctx context.Context, q string) (string, error) {
		return model.Complete(ctx, q)
	}, runtree.WithRunType(runtree.RunTypeLLM))

	out, err := runtree.Do(ctx, "pipeline", func(ctx context.Context) (string, error) {
		return answer(ctx, "What is the capital of France?")
	})
*/
package runtree

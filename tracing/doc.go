/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package tracing captures traced executions, attaches evaluators to named
spans within them, and runs remote evaluations to a verdict.

# Overview

  - CaptureTrace: run a function under a new root run and return its Trace
  - FindSpan: resolve a span name to the single matching descendant of a root
  - Trace.AddEvaluator: annotate a span with an Evaluator and persist it
  - Session.Evaluate: submit a trace, poll until it finishes, classify verdicts

Evaluators are stored on the span under Extra[OptionsKey][EvaluatorsKey],
which is where the service expects them.

# Usage

	session, err := tracing.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	trace, err := tracing.CaptureTrace(ctx, session, func(ctx context.Context) (string, error) {
		return answer(ctx, "What is the capital of France?")
	})
	if err != nil {
		return err
	}

	if err := trace.AddEvaluator(ctx, "answer", tracing.Evaluator{
		Evaluator: "golden_response",
		Options:   map[string]string{"golden_response": "Paris"},
	}); err != nil {
		return err
	}

	if _, err := trace.Evaluate(ctx); err != nil {
		var failed *tracing.EvaluationsFailedError
		if errors.As(err, &failed) {
			// failed.Failures holds one line per non-passing verdict.
		}
		return err
	}
*/
package tracing

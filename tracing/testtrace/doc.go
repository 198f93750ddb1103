/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package testtrace adapts trace evaluation to Go tests.
//
// Verdicts that do not pass become test errors, one per verdict, so a single
// run reports every failing assertion. Failures to reach a verdict at all stop
// the test.
//
// # Usage
//
//	func TestCapital(t *testing.T) {
//	    ctx := context.Background()
//	    cfg, err := config.Load(ctx)
//	    if err != nil {
//	        t.Skip(err)
//	    }
//	    session, err := tracing.Connect(ctx, cfg)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer session.Close(ctx)
//
//	    trace := testtrace.Capture(t, ctx, session, func(ctx context.Context) (string, error) {
//	        return answer(ctx, "What is the capital of France?")
//	    })
//	    testtrace.AddEvaluator(t, ctx, trace, "answer", tracing.Evaluator{
//	        Evaluator: "golden_response",
//	        Options:   map[string]string{"golden_response": "Paris"},
//	    })
//	    testtrace.Evaluate(t, ctx, trace)
//	}
package testtrace

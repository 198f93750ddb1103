/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders evaluation runs as markdown.

All generators share the Generator signature and report whether every
verdict in the run passed:

  - Verdicts: one row per test case and evaluator, with reasoning
  - ByEvaluator: pass rate per evaluator across test cases
  - Markdown: heading, status line, and both tables

# Usage

	run, err := session.Evaluate(ctx, trace.Root)
	...
	out, ok := report.Markdown(run)
	fmt.Println(out)
*/
package report

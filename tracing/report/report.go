/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"
	"sort"
	"strings"

	"chainguard.dev/getcontext/contextapi"
	"chainguard.dev/getcontext/tracing"
)

// Generator renders an evaluation run, reporting whether every verdict passed.
type Generator func(run *contextapi.EvaluationRun) (string, bool)

var (
	_ Generator = Markdown
	_ Generator = Verdicts
)

// Summary counts passing verdicts against all verdicts in run.
func Summary(run *contextapi.EvaluationRun) (passed, total int) {
	if run == nil {
		return 0, 0
	}
	for _, tc := range run.Results {
		for _, ev := range tc.Evaluations {
			total++
			if ev.Outcome.Passed() {
				passed++
			}
		}
	}
	return passed, total
}

// Verdicts renders one table row per test case and evaluator.
func Verdicts(run *contextapi.EvaluationRun) (string, bool) {
	passed, total := Summary(run)
	if total == 0 {
		return "", true
	}

	table := newMarkdownTable(left("Test Case"), left("Evaluator"), left("Outcome"), left("Reasoning"))
	for _, tc := range run.Results {
		for _, ev := range tc.Evaluations {
			table.row(
				tc.Name,
				ev.Evaluator,
				fmt.Sprintf("%s %s", glyph(ev.Outcome.Passed()), tracing.OutcomePhrase(ev.Outcome)),
				reasoning(ev.Reasoning),
			)
		}
	}
	return table.String(), passed == total
}

// ByEvaluator renders the pass rate of each evaluator across test cases,
// sorted by evaluator name.
func ByEvaluator(run *contextapi.EvaluationRun) (string, bool) {
	if run == nil {
		return "", true
	}
	type tally struct{ passed, total int }
	tallies := make(map[string]*tally)
	for _, tc := range run.Results {
		for _, ev := range tc.Evaluations {
			t, ok := tallies[ev.Evaluator]
			if !ok {
				t = &tally{}
				tallies[ev.Evaluator] = t
			}
			t.total++
			if ev.Outcome.Passed() {
				t.passed++
			}
		}
	}
	if len(tallies) == 0 {
		return "", true
	}

	names := make([]string, 0, len(tallies))
	for name := range tallies {
		names = append(names, name)
	}
	sort.Strings(names)

	allPassed := true
	table := newMarkdownTable(left("Evaluator"), right("Passed"), right("Pass Rate"))
	for _, name := range names {
		t := tallies[name]
		rate := float64(t.passed) / float64(t.total) * 100
		cell := fmt.Sprintf("%.1f%%", rate)
		if t.passed < t.total {
			allPassed = false
			cell = "❌ " + cell
		}
		table.row(name, fmt.Sprintf("%d/%d", t.passed, t.total), cell)
	}
	return table.String(), allPassed
}

// Markdown renders a full report: a heading with the overall result, the
// per-verdict table, and the per-evaluator summary.
func Markdown(run *contextapi.EvaluationRun) (string, bool) {
	if run == nil {
		return "", true
	}
	passed, total := Summary(run)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Evaluation run %s\n\n", run.ID)
	fmt.Fprintf(&sb, "Status: %s, %d/%d verdicts passed\n", run.Status, passed, total)
	if run.Error != "" {
		fmt.Fprintf(&sb, "\nError: %s\n", run.Error)
	}
	if total == 0 {
		return sb.String(), run.Status != contextapi.StatusErrored
	}

	verdicts, _ := Verdicts(run)
	sb.WriteString("\n")
	sb.WriteString(verdicts)
	byEval, _ := ByEvaluator(run)
	sb.WriteString("\n")
	sb.WriteString(byEval)
	return sb.String(), passed == total && run.Status != contextapi.StatusErrored
}

func reasoning(vs []contextapi.Verdict) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, fmt.Sprintf("%s %s", glyph(v.Passed), v.Reason))
	}
	return strings.Join(parts, "; ")
}

func glyph(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}

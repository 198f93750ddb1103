/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"fmt"

	"chainguard.dev/getcontext/runtree"
)

// FindSpan returns the single descendant of root named name.
// The root itself is never a candidate.
func FindSpan(root *runtree.Run, name string) (*runtree.Run, error) {
	if root == nil {
		return nil, ErrNoRunTree
	}

	var matches []*runtree.Run
	// Pre-order, children visited left to right.
	stack := reversed(root.Children())
	for len(stack) > 0 {
		n := len(stack) - 1
		run := stack[n]
		stack = stack[:n]

		if run.Name == name {
			matches = append(matches, run)
		}
		stack = append(stack, reversed(run.Children())...)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("span %q: %w", name, ErrNoMatch)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("span %q matched %d spans: %w", name, len(matches), ErrAmbiguousMatch)
	}
}

func reversed(runs []*runtree.Run) []*runtree.Run {
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs
}

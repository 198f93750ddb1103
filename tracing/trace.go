/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/getcontext/contextapi"
	"chainguard.dev/getcontext/runtree"
)

// Trace is the outcome of a captured execution: its result and the run tree
// recorded while it ran.
type Trace[T any] struct {
	Result T
	// Root is the run of the captured function. It is nil if nothing was recorded.
	Root *runtree.Run

	session *Session
}

// NewTrace binds a result and its run tree to a session.
func NewTrace[T any](s *Session, result T, root *runtree.Run) *Trace[T] {
	return &Trace[T]{Result: result, Root: root, session: s}
}

// AddEvaluator attaches e to the unique span named spanName and persists the
// change. Repeated calls append in order.
//
// Concurrent calls against the same trace must be serialized by the caller.
func (t *Trace[T]) AddEvaluator(ctx context.Context, spanName string, e Evaluator) error {
	if t.Root == nil {
		return ErrNoRunTree
	}
	if spanName == t.Root.Name {
		return fmt.Errorf("span %q: %w", spanName, ErrInvalidTarget)
	}
	span, err := FindSpan(t.Root, spanName)
	if err != nil {
		return err
	}
	if e.Evaluator == "" {
		return errors.New("evaluator name is required")
	}
	if t.session == nil {
		return ErrNoSession
	}

	if err := attach(span, e); err != nil {
		return err
	}
	if err := t.session.recorder.Flush(ctx); err != nil {
		return fmt.Errorf("flushing runs: %w", err)
	}
	return t.session.recorder.UpdateRun(ctx, span)
}

// Evaluate submits the trace for evaluation and waits for the verdicts.
func (t *Trace[T]) Evaluate(ctx context.Context) (*contextapi.EvaluationRun, error) {
	if t.Root == nil {
		return nil, ErrNoRunTree
	}
	if t.session == nil {
		return nil, ErrNoSession
	}
	return t.session.Evaluate(ctx, t.Root)
}

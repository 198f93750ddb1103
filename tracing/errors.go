/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/getcontext/contextapi"
)

var (
	// ErrNoRunTree is returned when tracing produced no run tree to search.
	ErrNoRunTree = errors.New("no run tree found")
	// ErrNoMatch is returned when no span carries the requested name.
	ErrNoMatch = errors.New("no matching spans found")
	// ErrAmbiguousMatch is returned when more than one span carries the requested name.
	ErrAmbiguousMatch = errors.New("multiple matching spans found, a unique span name is required")
	// ErrInvalidTarget is returned when an evaluator targets the root of the trace.
	ErrInvalidTarget = errors.New("cannot add evaluator to the captured function itself")
	// ErrMalformedOptions is returned when a span's evaluation options hold an unexpected type.
	ErrMalformedOptions = errors.New("malformed evaluation options")
	// ErrNoSession is returned when tracing or evaluation is attempted without a Session.
	ErrNoSession = errors.New("trace is not bound to a session")
)

// InternalEvaluationError reports that the service failed to carry out an evaluation.
type InternalEvaluationError struct {
	Run *contextapi.EvaluationRun
}

func (e *InternalEvaluationError) Error() string {
	raw, err := json.Marshal(e.Run)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", e.Run))
	}
	return fmt.Sprintf("internal error during evaluation: %s", raw)
}

// EvaluationsFailedError reports that an evaluation completed with
// non-passing verdicts. Failures holds one rendered message per verdict.
type EvaluationsFailedError struct {
	Failures []string
	// Run is the completed run the failures were drawn from.
	Run *contextapi.EvaluationRun
}

func (e *EvaluationsFailedError) Error() string {
	return strings.Join(e.Failures, "\n")
}

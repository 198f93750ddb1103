/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"errors"
	"sync"
	"time"

	"chainguard.dev/getcontext/contextapi"
	"chainguard.dev/getcontext/runtree"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// fakeRecorder records flushes and updates. At update time it snapshots the
// evaluators of the span so later mutation does not affect assertions.
type fakeRecorder struct {
	mu        sync.Mutex
	flushes   int
	updates   []*runtree.Run
	snapshots [][]Evaluator
	flushErr  error
	updateErr error
	// events interleaves "flush" and "update" in call order.
	events []string
}

func (f *fakeRecorder) Flush(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	f.events = append(f.events, "flush")
	return f.flushErr
}

func (f *fakeRecorder) UpdateRun(_ context.Context, run *runtree.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, run)
	f.snapshots = append(f.snapshots, EvaluatorsOf(run))
	f.events = append(f.events, "update")
	return f.updateErr
}

// fakeEvals serves a scripted sequence of run states.
type fakeEvals struct {
	mu        sync.Mutex
	runID     string
	states    []*contextapi.EvaluationRun
	submitted []contextapi.EvaluationRunRequest
	fetches   int
	submitErr error
	// onSubmit, if set, is called before the submission is recorded.
	onSubmit func()
}

func (f *fakeEvals) Run(_ context.Context, req contextapi.EvaluationRunRequest) (string, error) {
	if f.onSubmit != nil {
		f.onSubmit()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if f.runID == "" {
		return "run-1", nil
	}
	return f.runID, nil
}

func (f *fakeEvals) Result(_ context.Context, runID string) (*contextapi.EvaluationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return nil, errors.New("no scripted state")
	}
	// The last state repeats once the script runs out.
	i := min(f.fetches, len(f.states)-1)
	f.fetches++
	run := *f.states[i]
	run.ID = runID
	return &run, nil
}

// sleepRecorder replaces the session's sleep so tests observe waits without taking them.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func newTestSession(rec Recorder, evals EvaluationAPI, opts ...SessionOption) (*Session, *sleepRecorder) {
	s := NewSession(rec, evals, opts...)
	sr := &sleepRecorder{}
	s.sleep = sr.sleep
	return s, sr
}

func status(s contextapi.EvaluationStatus) *contextapi.EvaluationRun {
	return &contextapi.EvaluationRun{Status: s}
}

func completed(results ...contextapi.TestCaseResult) *contextapi.EvaluationRun {
	return &contextapi.EvaluationRun{Status: contextapi.StatusCompleted, Results: results}
}

func testCase(name string, evals ...contextapi.EvaluatorResult) contextapi.TestCaseResult {
	return contextapi.TestCaseResult{Name: name, Evaluations: evals}
}

func verdict(evaluator string, outcome contextapi.Outcome, reasoning ...contextapi.Verdict) contextapi.EvaluatorResult {
	return contextapi.EvaluatorResult{Evaluator: evaluator, Outcome: outcome, Reasoning: reasoning}
}

// node builds a run tree: node("root", node("a"), node("b", node("c"))).
func node(name string, children ...*runtree.Run) *runtree.Run {
	r := &runtree.Run{ID: name + "-id", Name: name}
	for _, c := range children {
		r.AddChild(c)
	}
	return r
}

// counterValue reads a counter from the default registry, or 0 if it has not been observed.
func counterValue(name string, labels map[string]string) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return 0
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	if len(m.GetLabel()) != len(want) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if want[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

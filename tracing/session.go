/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/getcontext/config"
	"chainguard.dev/getcontext/contextapi"
	"chainguard.dev/getcontext/runtree"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is the wait between evaluation status checks.
const DefaultPollInterval = 750 * time.Millisecond

// Recorder is the part of the run recorder a Session relies on.
// It is satisfied by *runtree.Recorder.
type Recorder interface {
	Flush(ctx context.Context) error
	UpdateRun(ctx context.Context, run *runtree.Run) error
}

// EvaluationAPI submits and inspects remote evaluation runs.
// It is satisfied by *contextapi.EvaluationsService.
type EvaluationAPI interface {
	Run(ctx context.Context, req contextapi.EvaluationRunRequest) (string, error)
	Result(ctx context.Context, runID string) (*contextapi.EvaluationRun, error)
}

// Session attaches evaluators to recorded runs and drives remote evaluations.
type Session struct {
	recorder Recorder
	evals    EvaluationAPI
	interval time.Duration
	timeout  time.Duration
	sleep    func(context.Context, time.Duration) error

	// owned is closed by Close when the session created the recorder.
	owned *runtree.Recorder
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPollInterval sets the wait between evaluation status checks.
// Non-positive values keep the current interval.
func WithPollInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTimeout bounds how long Evaluate may take. Zero means no bound.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.timeout = d
	}
}

// NewSession creates a session over the given recorder and evaluation API.
func NewSession(rec Recorder, evals EvaluationAPI, opts ...SessionOption) *Session {
	s := &Session{
		recorder: rec,
		evals:    evals,
		interval: DefaultPollInterval,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect builds a session backed by a ContextAPI client and a background
// run recorder, both configured from cfg. Close releases the recorder.
func Connect(ctx context.Context, cfg config.Config, opts ...contextapi.Option) (*Session, error) {
	client, err := contextapi.New(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	rec := runtree.NewRecorder(ctx, client.Runs, runtree.WithFlushInterval(cfg.FlushInterval))

	s := NewSession(rec, client.Evaluations,
		WithTimeout(cfg.EvaluationTimeout),
		WithPollInterval(cfg.PollInterval))
	s.owned = rec
	return s, nil
}

// Close flushes and stops the recorder if the session created it.
func (s *Session) Close(ctx context.Context) error {
	if s.owned == nil {
		return nil
	}
	return s.owned.Close(ctx)
}

// Evaluate submits the trace rooted at root for evaluation and waits for the
// verdicts. It returns *InternalEvaluationError if the service could not
// evaluate and *EvaluationsFailedError if any verdict did not pass.
func (s *Session) Evaluate(ctx context.Context, root *runtree.Run) (*contextapi.EvaluationRun, error) {
	if root == nil {
		return nil, ErrNoRunTree
	}
	return s.EvaluateTestSet(ctx, root.ID)
}

// EvaluateTestSet evaluates the named test set. A captured trace is
// evaluated as the test set named after its root run's ID.
func (s *Session) EvaluateTestSet(ctx context.Context, testSetName string) (*contextapi.EvaluationRun, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tr := otel.Tracer("chainguard.dev/getcontext/tracing", oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "evaluation.run", oteltrace.WithAttributes(
		attribute.String("test_set_name", testSetName),
	))
	defer span.End()

	run, err := s.evaluate(ctx, testSetName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return run, nil
}

func (s *Session) evaluate(ctx context.Context, testSetName string) (*contextapi.EvaluationRun, error) {
	if err := s.recorder.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flushing runs: %w", err)
	}

	runID, err := s.evals.Run(ctx, contextapi.EvaluationRunRequest{
		TestSetName: testSetName,
		Version:     "1",
		Iterations:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("submitting evaluation run: %w", err)
	}
	log := clog.FromContext(ctx).With("run_id", runID)

	run, err := s.poll(ctx, runID)
	if err != nil {
		return nil, err
	}
	evaluationRunsCounter.WithLabelValues(string(run.Status)).Inc()

	switch run.Status {
	case contextapi.StatusErrored:
		return nil, &InternalEvaluationError{Run: run}
	case contextapi.StatusCompleted:
	default:
		return nil, fmt.Errorf("evaluation run %s has unknown status %q", runID, run.Status)
	}

	if failures := classify(run); len(failures) > 0 {
		log.With("failures", len(failures)).Info("Evaluation completed with failures")
		return nil, &EvaluationsFailedError{Failures: failures, Run: run}
	}
	log.Info("Evaluation passed")
	return run, nil
}

// poll fetches the run until it leaves the pending and running states.
func (s *Session) poll(ctx context.Context, runID string) (*contextapi.EvaluationRun, error) {
	log := clog.FromContext(ctx).With("run_id", runID)
	for {
		evaluationPollsCounter.Inc()
		run, err := s.evals.Result(ctx, runID)
		if err != nil {
			return nil, err
		}
		if run.Status.Terminal() {
			return run, nil
		}
		log.With("status", run.Status).Debug("Evaluation in progress")
		if err := s.sleep(ctx, s.interval); err != nil {
			return nil, fmt.Errorf("waiting for evaluation run %s: %w", runID, err)
		}
	}
}

// EvaluateAll evaluates each root concurrently. Results are returned in the
// order of roots; entries for failed evaluations are nil and their errors are joined.
func (s *Session) EvaluateAll(ctx context.Context, roots ...*runtree.Run) ([]*contextapi.EvaluationRun, error) {
	runs := make([]*contextapi.EvaluationRun, len(roots))
	errs := make([]error, len(roots))

	// A failing evaluation must not cancel its siblings.
	g := new(errgroup.Group)
	for i, root := range roots {
		g.Go(func() error {
			runs[i], errs[i] = s.Evaluate(ctx, root)
			return nil
		})
	}
	_ = g.Wait()
	return runs, errors.Join(errs...)
}

// classify renders one message per non-passing verdict.
func classify(run *contextapi.EvaluationRun) []string {
	var failures []string
	for _, tc := range run.Results {
		for _, ev := range tc.Evaluations {
			evaluatorOutcomesCounter.WithLabelValues(ev.Evaluator, string(ev.Outcome)).Inc()
			if ev.Outcome.Passed() {
				continue
			}
			failures = append(failures, FormatVerdict(tc.Name, ev))
		}
	}
	return failures
}

// FormatVerdict renders an evaluator result on a test case, followed by one
// indented line per reasoning step.
func FormatVerdict(testCase string, ev contextapi.EvaluatorResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: evaluator %s %s", glyph(ev.Outcome.Passed()), testCase, ev.Evaluator, OutcomePhrase(ev.Outcome))
	for _, v := range ev.Reasoning {
		fmt.Fprintf(&sb, "\n    %s %s", glyph(v.Passed), v.Reason)
	}
	return sb.String()
}

// OutcomePhrase describes an outcome for humans.
func OutcomePhrase(o contextapi.Outcome) string {
	switch o {
	case contextapi.OutcomePositive:
		return "passed"
	case contextapi.OutcomeNegative:
		return "failed"
	case contextapi.OutcomePartiallyPassed:
		return "partially passed"
	case contextapi.OutcomeInconclusive:
		return "was inconclusive"
	default:
		return fmt.Sprintf("returned %q", string(o))
	}
}

func glyph(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contextapi

import (
	"time"
)

// MessageRole is the author of a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleAssistant MessageRole = "assistant"
	RoleUser      MessageRole = "user"
)

// Rating is end-user feedback on a message.
type Rating int

const (
	RatingNegative Rating = -1
	RatingNeutral  Rating = 0
	RatingPositive Rating = 1
)

// Message is a single turn of a logged conversation.
type Message struct {
	Role           MessageRole    `json:"role" yaml:"role" jsonschema:"required,enum=system,enum=assistant,enum=user"`
	Message        string         `json:"message" yaml:"message" jsonschema:"required"`
	EventTimestamp *time.Time     `json:"event_timestamp,omitempty" yaml:"event_timestamp,omitempty"`
	Rating         *Rating        `json:"rating,omitempty" yaml:"rating,omitempty" jsonschema:"enum=-1,enum=0,enum=1"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Conversation is an ordered list of messages plus free-form metadata.
type Conversation struct {
	Messages []Message      `json:"messages,omitempty" yaml:"messages,omitempty" jsonschema:"required,minItems=1"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// conversationBody is the request envelope for both conversation endpoints.
type conversationBody struct {
	Conversation Conversation `json:"conversation"`
}

// TestCaseFrom selects where a new test set version sources its test cases.
type TestCaseFrom string

const (
	// CopyNone creates the test set with only the supplied test cases.
	CopyNone TestCaseFrom = "none"
	// CopyPrevious carries over the test cases of the previous version.
	CopyPrevious TestCaseFrom = "previous"
)

// TestCaseMessage is a single prompt message inside a test case.
type TestCaseMessage struct {
	Role    MessageRole `json:"role" yaml:"role" jsonschema:"required,enum=system,enum=assistant,enum=user"`
	Message string      `json:"message" yaml:"message" jsonschema:"required"`
}

// TestCase is one scenario of a test set.
type TestCase struct {
	Name       string            `json:"name" yaml:"name" jsonschema:"required"`
	Model      string            `json:"model,omitempty" yaml:"model,omitempty"`
	Messages   []TestCaseMessage `json:"messages" yaml:"messages" jsonschema:"required"`
	Attributes map[string]any    `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// TestSet is a named, versioned collection of test cases.
type TestSet struct {
	Name      string     `json:"name" yaml:"name" jsonschema:"required,minLength=1"`
	TestCases []TestCase `json:"test_cases" yaml:"test_cases" jsonschema:"required"`
}

// EvaluationRunRequest asks the service to evaluate a test set.
type EvaluationRunRequest struct {
	TestSetName string `json:"test_set_name"`
	Version     string `json:"version"`
	Iterations  int    `json:"iterations"`
}

// EvaluationRunCreated identifies a freshly submitted evaluation run.
type EvaluationRunCreated struct {
	RunID string `json:"run_id"`
}

// EvaluationStatus is the lifecycle state of a remote evaluation run.
type EvaluationStatus string

const (
	StatusPending   EvaluationStatus = "pending"
	StatusRunning   EvaluationStatus = "running"
	StatusCompleted EvaluationStatus = "completed"
	StatusErrored   EvaluationStatus = "errored"
)

// Terminal reports whether no further transitions are expected.
func (s EvaluationStatus) Terminal() bool {
	return s != StatusPending && s != StatusRunning
}

// Outcome is an evaluator's verdict on a test case.
type Outcome string

const (
	OutcomePositive        Outcome = "positive"
	OutcomeNegative        Outcome = "negative"
	OutcomePartiallyPassed Outcome = "partially_passed"
	OutcomeInconclusive    Outcome = "inconclusive"
)

// Passed reports whether the outcome counts as a pass.
func (o Outcome) Passed() bool {
	return o == OutcomePositive
}

// Verdict is one structured reasoning step behind an outcome.
type Verdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// EvaluatorResult is the outcome of a single evaluator on a single test case.
type EvaluatorResult struct {
	Evaluator string    `json:"evaluator"`
	Outcome   Outcome   `json:"outcome"`
	Reasoning []Verdict `json:"reasoning,omitempty"`
}

// TestCaseResult groups evaluator outcomes for one test case.
type TestCaseResult struct {
	Name        string            `json:"name"`
	Evaluations []EvaluatorResult `json:"evaluations"`
}

// EvaluationRun is the state of a remote evaluation run.
type EvaluationRun struct {
	ID      string           `json:"id,omitempty"`
	Status  EvaluationStatus `json:"status"`
	Results []TestCaseResult `json:"results,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Run is the wire form of a recorded execution span.
type Run struct {
	ID          string         `json:"id"`
	TraceID     string         `json:"trace_id,omitempty"`
	ParentRunID string         `json:"parent_run_id,omitempty"`
	Name        string         `json:"name,omitempty"`
	RunType     string         `json:"run_type,omitempty"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	DottedOrder string         `json:"dotted_order,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	Error       string         `json:"error,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// RunBatch carries run creations and updates in a single ingestion call.
type RunBatch struct {
	Post  []Run `json:"post,omitempty"`
	Patch []Run `json:"patch,omitempty"`
}

// Empty reports whether the batch has nothing to send.
func (b RunBatch) Empty() bool {
	return len(b.Post) == 0 && len(b.Patch) == 0
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contextapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// EvaluationsService submits and inspects evaluation runs.
type EvaluationsService struct {
	client *Client
}

// Run submits an evaluation run and returns its identifier.
func (s *EvaluationsService) Run(ctx context.Context, req EvaluationRunRequest) (string, error) {
	if req.TestSetName == "" {
		return "", errors.New("test set name is required")
	}
	var created EvaluationRunCreated
	if err := s.client.do(ctx, request{
		method: http.MethodPost,
		base:   s.client.baseURL,
		path:   "/api/v1/evaluations/run",
		body:   req,
		once:   true,
	}, &created); err != nil {
		return "", err
	}
	if created.RunID == "" {
		return "", errors.New("evaluation run response carried no run_id")
	}
	return created.RunID, nil
}

// Result fetches the current state of an evaluation run.
func (s *EvaluationsService) Result(ctx context.Context, runID string) (*EvaluationRun, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	var run EvaluationRun
	if err := s.client.do(ctx, request{
		method: http.MethodGet,
		base:   s.client.baseURL,
		path:   "/api/v1/evaluations/run/" + url.PathEscape(runID),
	}, &run); err != nil {
		return nil, fmt.Errorf("fetching evaluation run %s: %w", runID, err)
	}
	if run.ID == "" {
		run.ID = runID
	}
	return &run, nil
}

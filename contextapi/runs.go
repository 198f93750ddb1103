/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contextapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// RunsService ingests recorded runs into the trace store.
type RunsService struct {
	client *Client
}

// Batch creates and updates runs in a single call. An empty batch is a no-op.
func (s *RunsService) Batch(ctx context.Context, batch RunBatch) error {
	if batch.Empty() {
		return nil
	}
	return s.client.do(ctx, request{
		method: http.MethodPost,
		base:   s.client.tracesURL,
		path:   "/runs/batch",
		body:   batch,
	}, nil)
}

// Update patches a single previously created run.
func (s *RunsService) Update(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	return s.client.do(ctx, request{
		method: http.MethodPatch,
		base:   s.client.tracesURL,
		path:   "/runs/" + url.PathEscape(run.ID),
		body:   run,
	}, nil)
}

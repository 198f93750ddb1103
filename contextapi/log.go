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

// LogService records conversations and test sets.
type LogService struct {
	client *Client
}

// Conversation logs a new conversation.
func (s *LogService) Conversation(ctx context.Context, conv Conversation) error {
	return s.client.do(ctx, request{
		method: http.MethodPost,
		base:   s.client.baseURL,
		path:   "/api/v1/log/conversation",
		body:   conversationBody{Conversation: conv},
		once:   true,
	}, nil)
}

// ConversationUpsert logs a conversation, replacing any prior version
// carrying the same identifying metadata.
func (s *LogService) ConversationUpsert(ctx context.Context, conv Conversation) error {
	return s.client.do(ctx, request{
		method: http.MethodPost,
		base:   s.client.baseURL,
		path:   "/api/v1/log/conversation/upsert",
		body:   conversationBody{Conversation: conv},
	}, nil)
}

// TestSets creates a new version of a test set.
// An empty from defaults to CopyNone.
func (s *LogService) TestSets(ctx context.Context, ts TestSet, from TestCaseFrom) error {
	if ts.Name == "" {
		return errors.New("test set name is required")
	}
	switch from {
	case "":
		from = CopyNone
	case CopyNone, CopyPrevious:
	default:
		return fmt.Errorf("unknown copy_test_cases_from value %q", from)
	}
	if ts.TestCases == nil {
		ts.TestCases = []TestCase{}
	}
	return s.client.do(ctx, request{
		method: http.MethodPost,
		base:   s.client.baseURL,
		path:   "/api/v1/log/test_sets",
		query:  url.Values{"copy_test_cases_from": []string{string(from)}},
		body:   ts,
		once:   true,
	}, nil)
}

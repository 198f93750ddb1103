/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package contextapi is a client for the Context.ai HTTP API.
//
// The client groups operations by service:
//
//	client, err := contextapi.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	err = client.Log.Conversation(ctx, contextapi.Conversation{
//		Messages: []contextapi.Message{{Role: contextapi.RoleUser, Message: "hi"}},
//	})
//
// Requests authenticate with the configured token as a bearer credential.
// Transient failures (429, 5xx and network errors) are retried with
// exponential backoff, honouring Retry-After. Any other non-2xx response is
// returned as an *APIError.
package contextapi

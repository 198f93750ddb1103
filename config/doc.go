/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the Context.ai client configuration from the environment.
//
// Recognised variables:
//
//	GETCONTEXT_TOKEN            API token (required by Load)
//	CONTEXT_DOMAIN              service base URL, default https://api.context.ai
//	CONTEXT_POLL_INTERVAL       evaluation poll interval, default 750ms
//	CONTEXT_EVALUATION_TIMEOUT  upper bound on evaluation polling, default 0 (unbounded)
//	CONTEXT_FLUSH_INTERVAL      background run upload interval, default 1s
//	CONTEXT_REQUEST_TIMEOUT     per-request HTTP timeout, default 30s
//
// The resulting Config is passed explicitly to the API client and the
// evaluation session; nothing else in this module reads the environment.
package config

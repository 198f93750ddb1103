/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contextapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"chainguard.dev/getcontext/config"
	"chainguard.dev/getcontext/retry"
	"github.com/chainguard-dev/clog"
	"golang.org/x/oauth2"
)

const userAgent = "getcontext-go/0.1.0"

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Client is the ContextAPI client. Operations are grouped by service.
type Client struct {
	// Log groups the conversation and test set logging operations.
	Log *LogService
	// Evaluations groups the evaluation run operations.
	Evaluations *EvaluationsService
	// Runs groups the trace ingestion operations.
	Runs *RunsService

	baseURL    *url.URL
	tracesURL  *url.URL
	httpClient *http.Client
	retry      retry.Config
}

// Option customises a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	retry      retry.Config
	baseURL    string
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// with bearer authentication; the client itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithRetryConfig overrides the transport retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// WithBaseURL overrides the domain from the configuration.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// New creates a client for the service described by cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	o := options{
		retry:   retry.DefaultConfig(),
		baseURL: cfg.BaseURL(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	// Requests, the traces endpoint and the https rule all follow the effective base.
	effective := cfg
	effective.Domain = o.baseURL

	base, err := url.Parse(effective.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	traces, err := url.Parse(effective.TraceEndpoint())
	if err != nil {
		return nil, fmt.Errorf("parsing traces url: %w", err)
	}

	var transport http.RoundTripper = http.DefaultTransport
	timeout := cfg.RequestTimeout
	if o.httpClient != nil {
		if o.httpClient.Transport != nil {
			transport = o.httpClient.Transport
		}
		if o.httpClient.Timeout != 0 {
			timeout = o.httpClient.Timeout
		}
	}
	if cfg.Token != "" {
		if !effective.EnforceHTTPS() {
			clog.FromContext(ctx).With("base_url", base.String()).Warn("API token will be sent without TLS")
		}
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cfg.Token,
				TokenType:   "Bearer",
			}),
			Base: transport,
		}
	} else {
		clog.FromContext(ctx).Warn("No API token configured, requests will be unauthenticated")
	}

	c := &Client{
		baseURL:    base,
		tracesURL:  traces,
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
		retry:      o.retry,
	}
	c.Log = &LogService{client: c}
	c.Evaluations = &EvaluationsService{client: c}
	c.Runs = &RunsService{client: c}
	return c, nil
}

// request describes a single API call.
type request struct {
	method string
	base   *url.URL
	path   string
	query  url.Values
	body   any
	// once marks requests that create server-side state on every delivery.
	// They are only retried when the server provably did not process them.
	once   bool
}

func (c *Client) endpoint(r request) *url.URL {
	u := *r.base
	u.Path = strings.TrimRight(u.Path, "/") + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	return &u
}

// do performs r with transport retries and decodes a JSON response into out, if non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.endpoint(r)

	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("marshaling %s %s body: %w", r.method, r.path, err)
		}
	}

	retryable := isRetryable
	if r.once {
		retryable = isUndelivered
	}
	operation := r.method + " " + r.path
	_, err := retry.Do(ctx, c.retry, operation, retryable, func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, r.method, u, payload, out)
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, method string, u *url.URL, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	clog.FromContext(ctx).With("method", method).With("url", u.String()).Debug("ContextAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        u.String(),
			Body:       strings.TrimSpace(string(b)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, u.Path, err)
	}
	return nil
}

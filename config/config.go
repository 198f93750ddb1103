/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DefaultDomain is the hosted Context.ai API.
const DefaultDomain = "https://api.context.ai"

// tracesPath is where the run ingestion endpoints live, relative to the domain.
const tracesPath = "/api/v1/evaluations/traces"

// Config holds everything needed to talk to the Context.ai service.
type Config struct {
	// Token is the API token sent as a bearer credential.
	Token string `env:"GETCONTEXT_TOKEN"`

	// Domain is the service base URL, including the scheme.
	Domain string `env:"CONTEXT_DOMAIN,default=https://api.context.ai"`

	// PollInterval is how long an evaluation waits between status checks.
	PollInterval time.Duration `env:"CONTEXT_POLL_INTERVAL,default=750ms"`

	// EvaluationTimeout bounds how long an evaluation may poll. Zero means no bound.
	EvaluationTimeout time.Duration `env:"CONTEXT_EVALUATION_TIMEOUT,default=0s"`

	// FlushInterval is how often recorded runs are uploaded in the background.
	FlushInterval time.Duration `env:"CONTEXT_FLUSH_INTERVAL,default=1s"`

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration `env:"CONTEXT_REQUEST_TIMEOUT,default=30s"`
}

// Load reads the configuration from the process environment.
// Unlike LoadFrom it requires a token to be present.
func Load(ctx context.Context) (Config, error) {
	cfg, err := LoadFrom(ctx, envconfig.OsLookuper())
	if err != nil {
		return Config{}, err
	}
	if cfg.Token == "" {
		return Config{}, errors.New("GETCONTEXT_TOKEN is not set in the environment variables")
	}
	return cfg, nil
}

// LoadFrom reads the configuration using the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return Config{}, fmt.Errorf("processing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.Domain)
	if err != nil {
		return fmt.Errorf("parsing domain %q: %w", c.Domain, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("domain %q must use http or https", c.Domain)
	}
	if u.Host == "" {
		return fmt.Errorf("domain %q has no host", c.Domain)
	}
	if c.PollInterval < 0 {
		return errors.New("poll interval cannot be negative")
	}
	if c.EvaluationTimeout < 0 {
		return errors.New("evaluation timeout cannot be negative")
	}
	if c.FlushInterval < 0 {
		return errors.New("flush interval cannot be negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout cannot be negative")
	}
	return nil
}

// EnforceHTTPS reports whether credentials may only travel over TLS.
// It is derived from the scheme of the configured domain.
func (c Config) EnforceHTTPS() bool {
	return strings.HasPrefix(c.Domain, "https")
}

// BaseURL returns the domain without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.Domain, "/")
}

// TraceEndpoint returns the root of the run ingestion API.
func (c Config) TraceEndpoint() string {
	return c.BaseURL() + tracesPath
}

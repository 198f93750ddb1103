/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"GETCONTEXT_TOKEN": "tok",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	want := Config{
		Token:          "tok",
		Domain:         DefaultDomain,
		PollInterval:   750 * time.Millisecond,
		FlushInterval:  time.Second,
		RequestTimeout: 30 * time.Second,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}

	if !cfg.EnforceHTTPS() {
		t.Error("EnforceHTTPS: got = false, wanted = true")
	}
	if got, want := cfg.TraceEndpoint(), "https://api.context.ai/api/v1/evaluations/traces"; got != want {
		t.Errorf("TraceEndpoint: got = %q, wanted = %q", got, want)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"GETCONTEXT_TOKEN":           "tok",
		"CONTEXT_DOMAIN":             "http://localhost:8080/",
		"CONTEXT_POLL_INTERVAL":      "10ms",
		"CONTEXT_EVALUATION_TIMEOUT": "2m",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.EnforceHTTPS() {
		t.Error("EnforceHTTPS: got = true, wanted = false")
	}
	if got, want := cfg.BaseURL(), "http://localhost:8080"; got != want {
		t.Errorf("BaseURL: got = %q, wanted = %q", got, want)
	}
	if got, want := cfg.PollInterval, 10*time.Millisecond; got != want {
		t.Errorf("PollInterval: got = %v, wanted = %v", got, want)
	}
	if got, want := cfg.EvaluationTimeout, 2*time.Minute; got != want {
		t.Errorf("EvaluationTimeout: got = %v, wanted = %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{{
		name: "valid",
		cfg:  Config{Domain: DefaultDomain},
	}, {
		name:    "no scheme",
		cfg:     Config{Domain: "api.context.ai"},
		wantErr: true,
	}, {
		name:    "ftp scheme",
		cfg:     Config{Domain: "ftp://api.context.ai"},
		wantErr: true,
	}, {
		name:    "negative poll interval",
		cfg:     Config{Domain: DefaultDomain, PollInterval: -time.Second},
		wantErr: true,
	}, {
		name:    "negative timeout",
		cfg:     Config{Domain: DefaultDomain, EvaluationTimeout: -time.Second},
		wantErr: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got = %v, wanted error = %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("GETCONTEXT_TOKEN", "")
	if _, err := Load(context.Background()); err == nil {
		t.Error("Load without token: got = nil, wanted = error")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GETCONTEXT_TOKEN", "from-env")
	t.Setenv("CONTEXT_DOMAIN", "https://example.test")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token: got = %q, wanted = %q", cfg.Token, "from-env")
	}
	if cfg.Domain != "https://example.test" {
		t.Errorf("Domain: got = %q, wanted = %q", cfg.Domain, "https://example.test")
	}
}

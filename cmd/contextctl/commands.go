/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"chainguard.dev/getcontext/config"
	"chainguard.dev/getcontext/contextapi"
	"chainguard.dev/getcontext/schema"
	"chainguard.dev/getcontext/tracing"
	"chainguard.dev/getcontext/tracing/report"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is set at build time.
var Version = "0.1.0"

type rootOptions struct {
	domain  string
	verbose bool
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "contextctl",
		Short: "Log conversations and run evaluations against Context.ai",
		Long: `contextctl talks to the Context.ai API.

The API token is read from GETCONTEXT_TOKEN and the service domain from
CONTEXT_DOMAIN (default https://api.context.ai).

Example:
  contextctl log conversation -f conversation.yaml
  contextctl log test-set -f test_set.yaml --copy-test-cases-from previous
  contextctl evaluate --test-set capital-cities`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if ro.verbose {
				level = slog.LevelDebug
			}
			logger := clog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(clog.WithLogger(cmd.Context(), logger))
		},
	}
	cmd.PersistentFlags().StringVar(&ro.domain, "domain", "", "Context.ai API domain (overrides CONTEXT_DOMAIN)")
	cmd.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newLogCommand(ro), newEvaluateCommand(ro), newSchemaCommand())
	return cmd
}

// loadConfig reads the environment configuration and applies flag overrides.
func (ro *rootOptions) loadConfig(ctx context.Context) (config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return config.Config{}, err
	}
	if ro.domain != "" {
		cfg.Domain = ro.domain
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func (ro *rootOptions) client(ctx context.Context) (*contextapi.Client, error) {
	cfg, err := ro.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return contextapi.New(ctx, cfg)
}

func newLogCommand(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log conversations and test sets",
	}
	cmd.AddCommand(newLogConversationCommand(ro), newLogTestSetCommand(ro))
	return cmd
}

func newLogConversationCommand(ro *rootOptions) *cobra.Command {
	var (
		file   string
		upsert bool
	)
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Log a conversation read from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var conv contextapi.Conversation
			if err := readFile(cmd.InOrStdin(), file, &conv); err != nil {
				return err
			}
			if len(conv.Messages) == 0 {
				return errors.New("conversation has no messages")
			}
			client, err := ro.client(ctx)
			if err != nil {
				return err
			}

			if upsert {
				err = client.Log.ConversationUpsert(ctx, conv)
			} else {
				err = client.Log.Conversation(ctx, conv)
			}
			if err != nil {
				return fmt.Errorf("logging conversation: %w", err)
			}
			clog.InfoContextf(ctx, "Logged conversation with %d messages", len(conv.Messages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Conversation file, or - for stdin")
	cmd.Flags().BoolVar(&upsert, "upsert", false, "Replace a previously logged version of the conversation")
	return cmd
}

func newLogTestSetCommand(ro *rootOptions) *cobra.Command {
	var (
		file string
		from string
	)
	cmd := &cobra.Command{
		Use:   "test-set",
		Short: "Create a test set version from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var ts contextapi.TestSet
			if err := readFile(cmd.InOrStdin(), file, &ts); err != nil {
				return err
			}
			client, err := ro.client(ctx)
			if err != nil {
				return err
			}
			if err := client.Log.TestSets(ctx, ts, contextapi.TestCaseFrom(from)); err != nil {
				return fmt.Errorf("logging test set %s: %w", ts.Name, err)
			}
			clog.InfoContextf(ctx, "Logged test set %s with %d test cases", ts.Name, len(ts.TestCases))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Test set file, or - for stdin")
	cmd.Flags().StringVar(&from, "copy-test-cases-from", string(contextapi.CopyNone), "Where to source existing test cases: none or previous")
	return cmd
}

func newEvaluateCommand(ro *rootOptions) *cobra.Command {
	var (
		testSet  string
		timeout  time.Duration
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run an evaluation of a test set and wait for the verdicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := ro.loadConfig(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				cfg.EvaluationTimeout = timeout
			}
			if cmd.Flags().Changed("poll-interval") {
				cfg.PollInterval = interval
			}

			session, err := tracing.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			run, err := session.EvaluateTestSet(ctx, testSet)
			var failed *tracing.EvaluationsFailedError
			switch {
			case err == nil:
			case errors.As(err, &failed):
				run = failed.Run
			default:
				return fmt.Errorf("evaluating test set %s: %w", testSet, err)
			}

			out, _ := report.Markdown(run)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			if failed != nil {
				return fmt.Errorf("%d evaluations failed:\n%w", len(failed.Failures), failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&testSet, "test-set", "", "Name of the test set to evaluate")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting after this long (overrides CONTEXT_EVALUATION_TIMEOUT)")
	cmd.Flags().DurationVar(&interval, "poll-interval", tracing.DefaultPollInterval, "Wait between status checks (overrides CONTEXT_POLL_INTERVAL)")
	_ = cmd.MarkFlagRequired("test-set")
	return cmd
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema {conversation|test-set}",
		Short:     "Print the JSON schema of an input file format",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(schema.KindConversation), string(schema.KindTestSet)},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.For(schema.Kind(args[0]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}

// readFile decodes YAML (a superset of JSON) from path, or from stdin when path is "-".
func readFile(stdin io.Reader, path string, out any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

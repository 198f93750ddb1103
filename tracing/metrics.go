/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationRunsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getcontext_evaluation_runs_total",
			Help: "Total number of evaluation runs that reached a terminal state",
		},
		[]string{"status"},
	)

	evaluatorOutcomesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "getcontext_evaluator_outcomes_total",
			Help: "Total number of evaluator verdicts by outcome",
		},
		[]string{"evaluator", "outcome"},
	)

	evaluationPollsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "getcontext_evaluation_polls_total",
			Help: "Total number of evaluation run status fetches",
		},
	)
)

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"errors"
	"fmt"
	"maps"

	"chainguard.dev/getcontext/runtree"
)

const (
	// OptionsKey is the key under a span's Extra that the service reads
	// evaluation annotations from.
	OptionsKey = "context_ai_options"
	// EvaluatorsKey holds the evaluator list within OptionsKey.
	EvaluatorsKey = "evaluators"
)

// Evaluator names a server-side evaluator and its options,
// e.g. {"evaluator": "golden_response", "options": {"golden_response": "Paris"}}.
type Evaluator struct {
	Evaluator string            `json:"evaluator"`
	Options   map[string]string `json:"options,omitempty"`
}

// ParseEvaluator normalises a raw mapping into an Evaluator.
func ParseEvaluator(m map[string]any) (Evaluator, error) {
	name, ok := m["evaluator"].(string)
	if !ok || name == "" {
		return Evaluator{}, errors.New(`evaluator: "evaluator" must be a non-empty string`)
	}
	e := Evaluator{Evaluator: name}

	switch opts := m["options"].(type) {
	case nil:
	case map[string]string:
		e.Options = maps.Clone(opts)
	case map[string]any:
		e.Options = make(map[string]string, len(opts))
		for k, v := range opts {
			s, ok := v.(string)
			if !ok {
				return Evaluator{}, fmt.Errorf("evaluator %s: option %q has type %T, wanted string", name, k, v)
			}
			e.Options[k] = s
		}
	default:
		return Evaluator{}, fmt.Errorf("evaluator %s: options has type %T, wanted a mapping", name, opts)
	}
	return e, nil
}

// EvaluatorsOf returns the evaluators attached to span, in attachment order.
func EvaluatorsOf(span *runtree.Run) []Evaluator {
	if span == nil {
		return nil
	}
	options, ok := span.Extra[OptionsKey].(map[string]any)
	if !ok {
		return nil
	}
	list, _ := options[EvaluatorsKey].([]Evaluator)
	return append([]Evaluator(nil), list...)
}

// attach appends e to the evaluator list under span's reserved options,
// creating the containers as needed.
func attach(span *runtree.Run, e Evaluator) error {
	if span.Extra == nil {
		span.Extra = make(map[string]any)
	}

	var options map[string]any
	switch v := span.Extra[OptionsKey].(type) {
	case nil:
		options = make(map[string]any)
		span.Extra[OptionsKey] = options
	case map[string]any:
		options = v
	default:
		return fmt.Errorf("span %q: %s has type %T: %w", span.Name, OptionsKey, v, ErrMalformedOptions)
	}

	var list []Evaluator
	switch v := options[EvaluatorsKey].(type) {
	case nil:
	case []Evaluator:
		list = v
	default:
		return fmt.Errorf("span %q: %s.%s has type %T: %w", span.Name, OptionsKey, EvaluatorsKey, v, ErrMalformedOptions)
	}
	options[EvaluatorsKey] = append(list, e)
	return nil
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runtree

// Option configures a run.
type Option func(*options)

type options struct {
	runType       RunType
	metadata      map[string]any
	tags          []string
	inputs        map[string]any
	processInputs func(any) map[string]any
}

func newOptions(opts []Option) options {
	o := options{runType: RunTypeChain}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRunType sets the run type. The default is RunTypeChain.
func WithRunType(t RunType) Option {
	return func(o *options) {
		o.runType = t
	}
}

// WithMetadata attaches metadata, stored under Extra["metadata"].
func WithMetadata(md map[string]any) Option {
	return func(o *options) {
		if o.metadata == nil {
			o.metadata = make(map[string]any, len(md))
		}
		for k, v := range md {
			o.metadata[k] = v
		}
	}
}

// WithTags appends tags to the run.
func WithTags(tags ...string) Option {
	return func(o *options) {
		o.tags = append(o.tags, tags...)
	}
}

// WithInputs records inputs on the run.
func WithInputs(in map[string]any) Option {
	return func(o *options) {
		o.inputs = in
	}
}

// WithProcessInputs transforms a traced function's argument before it is
// recorded, for example to redact secrets.
func WithProcessInputs(fn func(any) map[string]any) Option {
	return func(o *options) {
		o.processInputs = fn
	}
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runtree

import (
	"context"
	"fmt"
)

// Traceable wraps fn so every call is recorded as a run named name, nested
// under the run carried by the call's context.
func Traceable[I, O any](name string, fn func(context.Context, I) (O, error), opts ...Option) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		o := newOptions(opts)
		inputs := map[string]any{"input": in}
		if o.processInputs != nil {
			inputs = o.processInputs(in)
		}
		all := append(append(make([]Option, 0, len(opts)+1), opts...), WithInputs(inputs))
		return run(ctx, name, all, func(ctx context.Context) (O, error) {
			return fn(ctx, in)
		})
	}
}

// Do records a single invocation of fn as a run named name.
func Do[O any](ctx context.Context, name string, fn func(context.Context) (O, error), opts ...Option) (O, error) {
	return run(ctx, name, opts, fn)
}

func run[O any](ctx context.Context, name string, opts []Option, fn func(context.Context) (O, error)) (out O, err error) {
	ctx, r := Start(ctx, name, opts...)
	defer func() {
		if p := recover(); p != nil {
			r.End(ctx, nil, fmt.Errorf("panic: %v", p))
			panic(p)
		}
		r.End(ctx, map[string]any{"output": out}, err)
	}()
	return fn(ctx)
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runtree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"chainguard.dev/getcontext/contextapi"
	"github.com/chainguard-dev/clog"
)

// Uploader sends recorded runs to the trace store.
// It is satisfied by *contextapi.RunsService.
type Uploader interface {
	Batch(ctx context.Context, batch contextapi.RunBatch) error
	Update(ctx context.Context, run contextapi.Run) error
}

const (
	opPost  = "post"
	opPatch = "patch"
)

// DefaultFlushInterval is how often queued runs are uploaded when no interval is given.
const DefaultFlushInterval = time.Second

// DefaultFlushAt is the queue length that triggers an early upload.
const DefaultFlushAt = 100

// Recorder batches run creations and completions and uploads them in the
// background. Flush forces pending work out and waits for it.
type Recorder struct {
	uploader Uploader
	metrics  *Metrics
	interval time.Duration
	flushAt  int

	queueMu sync.Mutex
	posts   []contextapi.Run
	patches []contextapi.Run
	// pending maps a run ID to its index in posts while the post is unsent,
	// so a completion can be folded into the creation.
	pending map[string]int

	// sendMu serializes uploads so Flush observes in-flight batches.
	sendMu sync.Mutex

	flushCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithFlushInterval sets the background upload period. Zero disables the ticker.
func WithFlushInterval(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.interval = d
	}
}

// WithFlushAt sets the queue length that triggers an early upload.
func WithFlushAt(n int) RecorderOption {
	return func(r *Recorder) {
		r.flushAt = n
	}
}

// WithMetrics sets the counters the recorder reports to.
func WithMetrics(m *Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder starts a recorder uploading through u. Close must be called to
// stop the background loop.
func NewRecorder(ctx context.Context, u Uploader, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		uploader: u,
		interval: DefaultFlushInterval,
		flushAt:  DefaultFlushAt,
		pending:  make(map[string]int),
		flushCh:  make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(ctx, "chainguard.dev/getcontext")
	}

	r.wg.Add(1)
	go r.flushLoop(context.WithoutCancel(ctx))
	return r
}

func (r *Recorder) enqueue(ctx context.Context, op string, run *Run) {
	w := run.Wire()

	r.queueMu.Lock()
	switch op {
	case opPost:
		r.pending[w.ID] = len(r.posts)
		r.posts = append(r.posts, w)
	case opPatch:
		if i, ok := r.pending[w.ID]; ok {
			r.posts[i] = w
		} else {
			r.patches = append(r.patches, w)
		}
	}
	shouldFlush := r.flushAt > 0 && len(r.posts)+len(r.patches) >= r.flushAt
	r.queueMu.Unlock()

	r.metrics.recordQueued(ctx, op)

	if shouldFlush {
		select {
		case r.flushCh <- struct{}{}:
		default:
		}
	}
}

func (r *Recorder) drain() contextapi.RunBatch {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()
	batch := contextapi.RunBatch{Post: r.posts, Patch: r.patches}
	r.posts, r.patches = nil, nil
	clear(r.pending)
	return batch
}

// requeue puts a batch whose upload failed back ahead of anything queued
// since. Completions queued in the meantime fold into the unsent creations.
func (r *Recorder) requeue(batch contextapi.RunBatch) {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()

	posts := slices.Concat(batch.Post, r.posts)
	clear(r.pending)
	for i, p := range posts {
		r.pending[p.ID] = i
	}

	patches := slices.Clone(batch.Patch)
	for _, p := range r.patches {
		if i, ok := r.pending[p.ID]; ok {
			posts[i] = p
			continue
		}
		patches = append(patches, p)
	}
	r.posts, r.patches = posts, patches
}

// Flush uploads every queued run and waits for any upload already in flight.
// Runs from a failed upload stay queued for the next Flush.
func (r *Recorder) Flush(ctx context.Context) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	batch := r.drain()
	if batch.Empty() {
		return nil
	}
	err := r.uploader.Batch(ctx, batch)
	r.metrics.recordUpload(ctx, opPost, len(batch.Post), err)
	r.metrics.recordUpload(ctx, opPatch, len(batch.Patch), err)
	if err != nil {
		r.requeue(batch)
		return fmt.Errorf("uploading %d runs: %w", len(batch.Post)+len(batch.Patch), err)
	}
	return nil
}

// UpdateRun sends the current state of run immediately, bypassing the queue.
func (r *Recorder) UpdateRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("nil run")
	}
	err := r.uploader.Update(ctx, run.Wire())
	r.metrics.recordUpload(ctx, opPatch, 1, err)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	return nil
}

// Close stops the background loop and uploads whatever is still queued.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		close(r.doneCh)
	})
	r.wg.Wait()
	return r.Flush(ctx)
}

func (r *Recorder) flushLoop(ctx context.Context) {
	defer r.wg.Done()

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.doneCh:
			return
		case <-r.flushCh:
		case <-tick:
		}
		if err := r.Flush(ctx); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Background run upload failed")
		}
	}
}

// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrLoopStopped is returned by Schedule once the loop has shut down.
var ErrLoopStopped = errors.New("main loop stopped")

// loopContextKey marks contexts belonging to tasks executing on a
// MainLoop, for reentrancy detection.
type loopContextKey struct{}

// MainLoop is the single privileged execution context. All access to
// the song graph is serialized through it: Schedule enqueues a task,
// Run executes tasks one at a time in enqueue order on its own
// goroutine.
//
// The queue is unbounded. Scheduling never blocks the caller — the
// connection handler's only waits are the socket read and the pending
// result channel.
type MainLoop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func(context.Context)
	stopped bool

	// wake nudges Run when the queue transitions from empty. Capacity
	// one: a single pending wakeup is enough, Run drains the whole
	// queue each pass.
	wake chan struct{}
	done chan struct{}
}

// NewMainLoop creates a loop. Tasks can be scheduled before Run starts;
// they execute once it does. If logger is nil, slog.Default() is used.
func NewMainLoop(logger *slog.Logger) *MainLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &MainLoop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Schedule enqueues a task to run on the loop goroutine at its next
// processing opportunity. Returns ErrLoopStopped after shutdown.
func (l *MainLoop) Schedule(task func(context.Context)) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Reentrant reports whether ctx belongs to a task already executing on
// this loop. The dispatcher uses this to run reentrant commands
// synchronously instead of enqueueing them — a queued task waiting on
// the loop from within the loop would deadlock until timeout.
func (l *MainLoop) Reentrant(ctx context.Context) bool {
	return ctx.Value(loopContextKey{}) == l
}

// Run executes queued tasks until ctx is cancelled. It then stops
// accepting new tasks, drains everything already enqueued — work handed
// to the privileged context is never cancelled — and returns.
func (l *MainLoop) Run(ctx context.Context) {
	defer close(l.done)

	// Tasks see a context that identifies this loop, so nested
	// dispatches are detected and run inline.
	loopContext := context.WithValue(context.WithoutCancel(ctx), loopContextKey{}, l)

	for {
		l.runPending(loopContext)

		select {
		case <-l.wake:
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.mu.Unlock()
			l.runPending(loopContext)
			return
		}
	}
}

// Done is closed when Run has returned.
func (l *MainLoop) Done() <-chan struct{} { return l.done }

// runPending executes every task currently queued, in enqueue order.
func (l *MainLoop) runPending(loopContext context.Context) {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task(loopContext)
	}
}

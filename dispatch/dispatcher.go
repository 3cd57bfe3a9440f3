// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/songbridge/songbridge/lib/clock"
	"github.com/songbridge/songbridge/protocol"
)

// DefaultTimeout bounds how long a connection handler waits for the
// main loop to run a command before giving up on the call.
const DefaultTimeout = 10 * time.Second

// Scheduler marshals work onto the thread that owns the song graph.
// song.MainLoop implements it; tests substitute their own.
type Scheduler interface {
	// Schedule queues a task for the main loop. It returns an error
	// when the loop has stopped.
	Schedule(task func(ctx context.Context)) error
	// Reentrant reports whether ctx belongs to a task already
	// running on the main loop.
	Reentrant(ctx context.Context) bool
}

// Config carries the dispatcher dependencies.
type Config struct {
	// Table is the command registration table. Required.
	Table *Table
	// Scheduler marshals handler execution onto the main loop.
	// Required.
	Scheduler Scheduler
	// Clock drives the call timeout. Defaults to the real clock.
	Clock clock.Clock
	// Timeout bounds the wait for a scheduled call. Defaults to
	// DefaultTimeout.
	Timeout time.Duration
	// Logger receives per-command debug logs and panic reports.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Dispatcher executes commands from the registration table on the
// main loop and converts their outcomes into response envelopes.
type Dispatcher struct {
	table     *Table
	scheduler Scheduler
	clock     clock.Clock
	timeout   time.Duration
	logger    *slog.Logger
}

// New validates the configuration and returns a dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Table == nil {
		return nil, errors.New("dispatch: Config.Table is required")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("dispatch: Config.Scheduler is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		table:     cfg.Table,
		scheduler: cfg.Scheduler,
		clock:     cfg.Clock,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}, nil
}

// Dispatch executes one request and returns the response envelope. It
// never returns a partial result: every outcome, including unknown
// commands, timeouts and handler panics, becomes a well-formed
// envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, request protocol.Request) protocol.Response {
	handler, kind, ok := d.table.Lookup(request.Type)
	if !ok {
		d.logger.Warn("unknown command", "command", request.Type)
		return protocol.Errorf("Unknown command: %s", request.Type)
	}
	d.logger.Debug("dispatching command", "command", request.Type, "kind", kind.String())

	params := Params(request.Params)

	// A handler that issues a nested call is already on the main
	// loop: scheduling would deadlock waiting on itself, so run the
	// nested command synchronously.
	if d.scheduler.Reentrant(ctx) {
		return d.execute(ctx, request.Type, handler, params)
	}

	// Buffered so the main loop never blocks on a caller that has
	// already timed out and walked away.
	result := make(chan protocol.Response, 1)
	err := d.scheduler.Schedule(func(taskCtx context.Context) {
		result <- d.execute(taskCtx, request.Type, handler, params)
	})
	if err != nil {
		return protocol.Error(err.Error())
	}

	select {
	case response := <-result:
		return response
	case <-d.clock.After(d.timeout):
		// The task stays queued and will still run; only the
		// caller gives up.
		d.logger.Warn("command timed out", "command", request.Type, "timeout", d.timeout)
		return protocol.Error("Timeout waiting for operation to complete")
	case <-ctx.Done():
		return protocol.Error(ctx.Err().Error())
	}
}

func (d *Dispatcher) execute(ctx context.Context, name string, handler HandlerFunc, params Params) (response protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked",
				"command", name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			response = protocol.Errorf("internal error executing %s", name)
		}
	}()
	result, err := handler(ctx, params)
	if err != nil {
		d.logger.Warn("command failed", "command", name, "error", err)
		return protocol.Error(err.Error())
	}
	return protocol.Success(result)
}

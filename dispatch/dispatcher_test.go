// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/songbridge/songbridge/lib/clock"
	"github.com/songbridge/songbridge/lib/testutil"
	"github.com/songbridge/songbridge/protocol"
)

// inlineScheduler runs every task synchronously in Schedule, marking
// the task context so nested dispatches are seen as reentrant.
type inlineScheduler struct {
	scheduled int
}

type inlineKey struct{}

func (s *inlineScheduler) Schedule(task func(ctx context.Context)) error {
	s.scheduled++
	task(context.WithValue(context.Background(), inlineKey{}, s))
	return nil
}

func (s *inlineScheduler) Reentrant(ctx context.Context) bool {
	return ctx.Value(inlineKey{}) == s
}

// stalledScheduler accepts tasks but never runs them.
type stalledScheduler struct{}

func (stalledScheduler) Schedule(func(ctx context.Context)) error { return nil }
func (stalledScheduler) Reentrant(context.Context) bool           { return false }

// stoppedScheduler refuses all tasks.
type stoppedScheduler struct{ err error }

func (s stoppedScheduler) Schedule(func(ctx context.Context)) error { return s.err }
func (stoppedScheduler) Reentrant(context.Context) bool             { return false }

func newTestDispatcher(t *testing.T, table *Table, scheduler Scheduler, clk clock.Clock) *Dispatcher {
	t.Helper()
	dispatcher, err := New(Config{
		Table:     table,
		Scheduler: scheduler,
		Clock:     clk,
		Logger:    testutil.Logger(t),
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return dispatcher
}

func TestDispatchSuccess(t *testing.T) {
	table := NewTable()
	table.Register("get_tempo", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		return map[string]any{"tempo": 120.0}, nil
	})
	dispatcher := newTestDispatcher(t, table, &inlineScheduler{}, nil)

	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "get_tempo"})
	if response.Status != protocol.StatusSuccess {
		t.Fatalf("status: got %q, message %q", response.Status, response.Message)
	}
	result, ok := response.Result.(map[string]any)
	if !ok || result["tempo"] != 120.0 {
		t.Fatalf("result: %#v", response.Result)
	}
}

func TestDispatchHandlerError(t *testing.T) {
	table := NewTable()
	table.Register("set_tempo", Mutating, func(ctx context.Context, params Params) (any, error) {
		return nil, errors.New("tempo 5000 out of range")
	})
	dispatcher := newTestDispatcher(t, table, &inlineScheduler{}, nil)

	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "set_tempo"})
	if response.Status != protocol.StatusError || response.Message != "tempo 5000 out of range" {
		t.Fatalf("response: %+v", response)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	dispatcher := newTestDispatcher(t, NewTable(), &inlineScheduler{}, nil)
	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "explode"})
	if response.Status != protocol.StatusError {
		t.Fatalf("status: %q", response.Status)
	}
	if response.Message != "Unknown command: explode" {
		t.Fatalf("message: %q", response.Message)
	}
}

func TestDispatchTimeout(t *testing.T) {
	table := NewTable()
	table.Register("slow", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		return nil, nil
	})
	clk := clock.Fake(time.Unix(0, 0))
	dispatcher := newTestDispatcher(t, table, stalledScheduler{}, clk)

	responses := make(chan protocol.Response, 1)
	go func() {
		responses <- dispatcher.Dispatch(context.Background(), protocol.Request{Type: "slow"})
	}()

	clk.WaitForWaiters(1)
	clk.Advance(DefaultTimeout)

	response := testutil.RequireReceive(t, responses, time.Second, "timeout response")
	if response.Status != protocol.StatusError {
		t.Fatalf("status: %q", response.Status)
	}
	if response.Message != "Timeout waiting for operation to complete" {
		t.Fatalf("message: %q", response.Message)
	}
}

func TestDispatchSchedulerStopped(t *testing.T) {
	table := NewTable()
	table.Register("get_tempo", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		return nil, nil
	})
	dispatcher := newTestDispatcher(t, table, stoppedScheduler{err: errors.New("main loop stopped")}, nil)

	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "get_tempo"})
	if response.Status != protocol.StatusError || response.Message != "main loop stopped" {
		t.Fatalf("response: %+v", response)
	}
}

func TestDispatchReentrantRunsInline(t *testing.T) {
	scheduler := &inlineScheduler{}
	table := NewTable()
	var dispatcher *Dispatcher

	table.Register("inner", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		return map[string]any{"nested": true}, nil
	})
	table.Register("outer", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		// A nested dispatch from inside a handler must not go
		// back through the scheduler.
		inner := dispatcher.Dispatch(ctx, protocol.Request{Type: "inner"})
		if inner.Status != protocol.StatusSuccess {
			return nil, fmt.Errorf("nested call failed: %s", inner.Message)
		}
		return inner.Result, nil
	})
	dispatcher = newTestDispatcher(t, table, scheduler, nil)

	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "outer"})
	if response.Status != protocol.StatusSuccess {
		t.Fatalf("response: %+v", response)
	}
	if scheduler.scheduled != 1 {
		t.Fatalf("schedule count: got %d, want 1 (nested call must run inline)", scheduler.scheduled)
	}
}

func TestDispatchHandlerPanic(t *testing.T) {
	table := NewTable()
	table.Register("broken", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		panic("index out of range")
	})
	dispatcher := newTestDispatcher(t, table, &inlineScheduler{}, nil)

	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "broken"})
	if response.Status != protocol.StatusError {
		t.Fatalf("status: %q", response.Status)
	}
	if response.Message != "internal error executing broken" {
		t.Fatalf("message: %q", response.Message)
	}
}

func TestDispatchNilResultBecomesEmptyObject(t *testing.T) {
	table := NewTable()
	table.Register("noop", ReadOnly, func(ctx context.Context, params Params) (any, error) {
		return nil, nil
	})
	dispatcher := newTestDispatcher(t, table, &inlineScheduler{}, nil)

	response := dispatcher.Dispatch(context.Background(), protocol.Request{Type: "noop"})
	if response.Status != protocol.StatusSuccess {
		t.Fatalf("status: %q", response.Status)
	}
	result, ok := response.Result.(map[string]any)
	if !ok || len(result) != 0 {
		t.Fatalf("result: %#v, want empty object", response.Result)
	}
}

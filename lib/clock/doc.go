// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock parameter instead of calling time.Now,
// time.After, or time.Sleep directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock that advances only when Advance is called.
//
// The dispatch timeout is the main consumer: a test can schedule a
// command against a stalled scheduler, wait for the dispatcher to
// register its timeout with WaitForWaiters, and then Advance past the
// deadline to observe the timeout envelope without any wall-clock delay.
package clock

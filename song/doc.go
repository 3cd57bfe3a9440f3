// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package song holds the live application's object graph — the song
// document with its tracks, clips, scenes, devices, and transport
// state — and the single privileged execution context that owns it.
//
// The graph is deliberately unsynchronized: only the [MainLoop]
// goroutine may read or mutate it. Connection handlers never touch a
// [Song] directly; they hand work to the loop through the dispatch
// package and wait for the result. This mirrors how the hosting
// application drives its control surface scripts from one cooperative
// main thread.
//
// [MainLoop] implements the dispatcher's Scheduler contract: Schedule
// enqueues a callback for the loop's next processing opportunity, and
// Reentrant detects when the caller is already running on the loop so
// the dispatcher can fall back to synchronous execution instead of
// deadlocking on itself.
package song

// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch routes decoded requests to registered command
// handlers and marshals their execution onto the song's main loop.
//
// Commands are registered in a Table with a name, a kind (read-only
// or mutating) and a handler function. The Dispatcher looks the
// command up, schedules the handler through a Scheduler so that all
// song access happens on the main loop, and waits a bounded time for
// the result. A call that arrives while already running on the main
// loop executes synchronously instead of deadlocking on itself.
package dispatch

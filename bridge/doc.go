// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge exposes the command surface over a loopback TCP
// socket. Each accepted connection gets its own goroutine that frames
// newline-delimited JSON requests, dispatches them in arrival order
// and writes one response envelope per request.
//
// The accept loop and the connection readers poll with short deadlines
// instead of blocking indefinitely, so shutdown converges without
// waiting on idle sockets: Stop closes the listener and every live
// connection, then waits a bounded time for the handler goroutines to
// drain.
package bridge

// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package handlers implements the command catalog: thin
// parameter-validating functions over the song graph, grouped by
// feature area (session, tracks, clips, mixer, scenes, devices).
//
// Handlers run on the main loop, so they access the song without
// locking. Register wires the full catalog into a dispatch.Table and
// wraps every mutating command with undo capture: the pre-command
// state becomes the undo step on success and is restored outright
// when the handler fails partway.
package handlers

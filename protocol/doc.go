// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the Songbridge wire protocol: one JSON
// object per newline-terminated line, over plaintext loopback TCP.
//
// Requests have the shape {"type": "<command>", "params": {...}} with
// params optional. Responses are an envelope with a status field and
// exactly one of result or message:
//
//	{"status": "success", "result": <value>}
//	{"status": "error", "message": "<text>"}
//
// [Decoder] turns a growing byte stream into discrete requests. It is
// fed raw socket reads and yields complete messages as they become
// available, tolerating partial lines, invalid UTF-8 (replaced, never
// fatal), and malformed JSON (the line is skipped and decoding
// continues). A connection that accumulates more than [MaxRequestSize]
// bytes without a newline is beyond repair: Next returns
// [ErrRequestTooLarge] and the caller must reply with one error
// envelope and drop the connection.
package protocol

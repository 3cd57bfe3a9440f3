// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding for Songbridge.
//
// Snapshot files store the song document as CBOR with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer encoding,
// no indefinite-length items. Same logical data always produces identical
// bytes, which keeps snapshot integrity digests stable across saves of
// unchanged state.
//
// The wire protocol is deliberately NOT handled here — it is
// line-delimited JSON, fixed by the external controller contract, and
// lives in the protocol package.
package codec

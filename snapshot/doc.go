// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot persists song documents to disk.
//
// A snapshot file is a small binary container: a fixed header (magic,
// format version, compression tag, uncompressed payload size, keyed
// BLAKE3 digest) followed by the deterministically CBOR-encoded
// song.State, optionally lz4- or zstd-compressed. The digest is
// computed over the uncompressed payload, so integrity verification
// is independent of the compression algorithm in use.
package snapshot

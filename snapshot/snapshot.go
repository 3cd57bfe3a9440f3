// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/songbridge/songbridge/lib/codec"
	"github.com/songbridge/songbridge/song"
)

// CompressionTag identifies the compression algorithm of a snapshot
// payload. Tags are stored in the file header (1 byte) — changing
// the values breaks existing snapshot files.
type CompressionTag uint8

const (
	// CompressionNone stores the CBOR payload uncompressed. Also
	// the fallback when a compressor fails to shrink the payload.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 uses LZ4 block compression: fast, modest
	// ratio, the default for interactive saves.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd uses zstd at its default level: better ratio
	// for large sessions at more CPU cost.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses a compression tag from its string
// representation, as used in configuration files.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// magic identifies a snapshot file. The trailing byte is free for a
// future incompatible container layout.
var magic = [4]byte{'S', 'B', 'S', '1'}

// formatVersion is the payload schema version. Bump when song.State
// changes incompatibly.
const formatVersion uint8 = 1

// headerSize is magic + version + compression tag + uncompressed
// size + digest.
const headerSize = 4 + 1 + 1 + 8 + 32

// ErrCorrupt is wrapped by Load for every integrity failure: bad
// magic, truncated header, size mismatch or digest mismatch.
var ErrCorrupt = errors.New("snapshot corrupt")

// digestKey is the 32-byte key for BLAKE3 keyed hashing: the ASCII
// domain name zero-padded, inspectable in hex dumps while still a
// full-strength key.
var digestKey = [32]byte{
	's', 'o', 'n', 'g', 'b', 'r', 'i', 'd', 'g', 'e', '.',
	's', 'n', 'a', 'p', 's', 'h', 'o', 't',
}

func digest(payload []byte) [32]byte {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		// NewKeyed fails only on wrong key length, which the
		// fixed-size array rules out.
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// Encode serializes a state into the snapshot container format.
func Encode(state *song.State, tag CompressionTag) ([]byte, error) {
	payload, err := codec.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode state: %w", err)
	}
	sum := digest(payload)

	compressed, actualTag, err := compress(payload, tag)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize+len(compressed))
	out = append(out, magic[:]...)
	out = append(out, formatVersion, byte(actualTag))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(payload)))
	out = append(out, sum[:]...)
	out = append(out, compressed...)
	return out, nil
}

// Decode parses a snapshot container and verifies its integrity.
func Decode(data []byte) (*song.State, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrCorrupt, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[:4])
	}
	if version := data[4]; version != formatVersion {
		return nil, fmt.Errorf("snapshot: unsupported format version %d", version)
	}
	tag := CompressionTag(data[5])
	size := binary.LittleEndian.Uint64(data[6:14])
	var sum [32]byte
	copy(sum[:], data[14:46])

	payload, err := decompress(data[headerSize:], tag, int(size))
	if err != nil {
		return nil, err
	}
	if digest(payload) != sum {
		return nil, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}

	var state song.State
	if err := codec.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("snapshot: decode state: %w", err)
	}
	return &state, nil
}

// Save writes a snapshot atomically: the container is staged in a
// temp file in the target directory and renamed into place, so a
// crash mid-write never leaves a half-written snapshot behind.
func Save(path string, state *song.State, tag CompressionTag) error {
	data, err := Encode(state, tag)
	if err != nil {
		return err
	}
	staging, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot: stage %s: %w", path, err)
	}
	if _, err := staging.Write(data); err != nil {
		staging.Close()
		os.Remove(staging.Name())
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := staging.Close(); err != nil {
		os.Remove(staging.Name())
		return fmt.Errorf("snapshot: close %s: %w", path, err)
	}
	if err := os.Rename(staging.Name(), path); err != nil {
		os.Remove(staging.Name())
		return fmt.Errorf("snapshot: rename into %s: %w", path, err)
	}
	return nil
}

// Load reads and verifies a snapshot file.
func Load(path string) (*song.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	return Decode(data)
}

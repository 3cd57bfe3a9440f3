// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compress applies the requested algorithm. Incompressible payloads
// fall back to CompressionNone; the returned tag is what actually went
// into the container.
func compress(payload []byte, tag CompressionTag) ([]byte, CompressionTag, error) {
	switch tag {
	case CompressionNone:
		return payload, CompressionNone, nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(payload))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(payload, destination, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(payload) {
			return payload, CompressionNone, nil
		}
		return destination[:written], CompressionLZ4, nil

	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(payload, nil)
		if len(compressed) >= len(payload) {
			return payload, CompressionNone, nil
		}
		return compressed, CompressionZstd, nil
	}
	return nil, 0, fmt.Errorf("snapshot: unsupported compression tag: %d", tag)
}

// decompress reverses compress. uncompressedSize comes from the
// container header and must match exactly.
func decompress(data []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(data) != uncompressedSize {
			return nil, fmt.Errorf("%w: payload size %d does not match header %d",
				ErrCorrupt, len(data), uncompressedSize)
		}
		return data, nil

	case CompressionLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(data, destination)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4 decompress: %v", ErrCorrupt, err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("%w: lz4 payload %d bytes, header says %d",
				ErrCorrupt, read, uncompressedSize)
		}
		return destination, nil

	case CompressionZstd:
		destination, err := zstdDecoder.DecodeAll(data, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCorrupt, err)
		}
		if len(destination) != uncompressedSize {
			return nil, fmt.Errorf("%w: zstd payload %d bytes, header says %d",
				ErrCorrupt, len(destination), uncompressedSize)
		}
		return destination, nil
	}
	return nil, fmt.Errorf("%w: unknown compression tag %d", ErrCorrupt, tag)
}

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

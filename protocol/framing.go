// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
)

// MaxRequestSize is the maximum number of buffered bytes a connection
// may accumulate without a newline before it is forcibly disconnected.
const MaxRequestSize = 1024 * 1024

// ErrRequestTooLarge is returned by [Decoder.Next] when the buffered,
// non-newline-terminated input exceeds [MaxRequestSize]. The condition
// is fatal for the connection: the caller must send one error envelope
// and then close.
var ErrRequestTooLarge = errors.New("request too large (>1MB)")

// replacementRune is substituted for invalid UTF-8 sequences, matching
// lenient decoding on the controller side. Framing is byte-oriented so
// replacement never hides a newline.
var replacementRune = []byte("�")

// Decoder extracts newline-delimited JSON requests from a byte stream.
// Feed it raw socket reads; call Next until it reports no complete
// message. Not safe for concurrent use — each connection owns one.
type Decoder struct {
	buffer []byte
	logger *slog.Logger
}

// NewDecoder creates a Decoder. If logger is nil, slog.Default() is
// used for malformed-line reports.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Feed appends raw bytes to the accumulation buffer.
func (d *Decoder) Feed(data []byte) {
	d.buffer = append(d.buffer, data...)
}

// Buffered returns the number of bytes awaiting a newline.
func (d *Decoder) Buffered() int { return len(d.buffer) }

// Next extracts the next complete request from the buffer.
//
// It returns (nil, nil) when no complete line is buffered. Lines that
// are blank or contain malformed JSON are logged and skipped — a
// protocol error on one line never poisons the ones after it. The only
// error condition is [ErrRequestTooLarge], raised when the residual
// unterminated buffer exceeds [MaxRequestSize].
func (d *Decoder) Next() (*Request, error) {
	for {
		newline := bytes.IndexByte(d.buffer, '\n')
		if newline < 0 {
			if len(d.buffer) > MaxRequestSize {
				return nil, ErrRequestTooLarge
			}
			return nil, nil
		}

		line := d.buffer[:newline]
		d.buffer = d.buffer[newline+1:]

		line = bytes.TrimSuffix(line, []byte("\r"))
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Invalid byte sequences are replaced rather than rejected;
		// the controller may be assembling lines from lossy sources.
		line = bytes.ToValidUTF8(line, replacementRune)

		request, err := parseRequest(line)
		if err != nil {
			d.logger.Warn("invalid JSON received, skipping line",
				"error", err,
				"prefix", linePrefix(line),
			)
			continue
		}
		return request, nil
	}
}

// parseRequest unmarshals one line into a Request. The payload must be
// a JSON object; a missing type field yields an empty command name and
// a missing params field yields an empty map.
func parseRequest(line []byte) (*Request, error) {
	// json.Unmarshal accepts "null" into a struct without complaint;
	// reject anything that is not an object up front.
	if line[0] != '{' {
		return nil, errors.New("payload is not a JSON object")
	}
	var request Request
	if err := json.Unmarshal(line, &request); err != nil {
		return nil, err
	}
	if request.Params == nil {
		request.Params = map[string]any{}
	}
	return &request, nil
}

// linePrefix truncates a malformed line for logging.
func linePrefix(line []byte) string {
	const limit = 100
	if len(line) > limit {
		return string(line[:limit]) + "..."
	}
	return string(line)
}

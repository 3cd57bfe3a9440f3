// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is one decoded command from a client. Type is the command
// name; a request without a type field yields an empty string, which
// the dispatcher rejects as unknown. Params is never nil.
type Request struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// Response is the uniform envelope for all replies. Exactly one of
// Result or Message is populated, selected by Status.
type Response struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success builds a success envelope. A nil result is normalized to an
// empty object so the result field is always present on the wire.
func Success(result any) Response {
	if result == nil {
		result = map[string]any{}
	}
	return Response{Status: StatusSuccess, Result: result}
}

// Error builds an error envelope with the given message.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// Errorf builds an error envelope with a formatted message.
func Errorf(format string, args ...any) Response {
	return Error(fmt.Sprintf(format, args...))
}

// IsError reports whether this is an error envelope.
func (r Response) IsError() bool { return r.Status == StatusError }

// EncodeResponse serializes an envelope to its wire form: the JSON
// object followed by exactly one newline.
func EncodeResponse(response Response) ([]byte, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return append(data, '\n'), nil
}

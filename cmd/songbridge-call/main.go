// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// songbridge-call is a one-shot client for the songbridge control
// socket: it sends a single command and prints the response envelope.
//
// Parameters are given as key=value pairs. Values parse as JSON when
// they can (numbers, booleans, arrays, objects) and fall back to
// plain strings, so both of these work:
//
//	songbridge-call set_tempo tempo=128
//	songbridge-call set_track_name track_index=0 name="Drums"
//	songbridge-call add_notes_to_clip 'notes=[{"pitch":60}]'
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/songbridge/songbridge/lib/version"
	"github.com/songbridge/songbridge/protocol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr string
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("songbridge-call", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "127.0.0.1:9877", "server address")
	flagSet.DurationVar(&timeout, "timeout", 15*time.Second, "overall deadline for the call")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("songbridge-call")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	args := flagSet.Args()
	if len(args) < 1 {
		return fmt.Errorf("usage: songbridge-call [--addr host:port] <command> [key=value ...]")
	}

	request := protocol.Request{Type: args[0], Params: map[string]any{}}
	for _, argument := range args[1:] {
		key, value, found := strings.Cut(argument, "=")
		if !found || key == "" {
			return fmt.Errorf("parameter %q is not key=value", argument)
		}
		request.Params[key] = parseValue(value)
	}

	response, err := call(addr, timeout, request)
	if err != nil {
		return err
	}

	pretty, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	if response.Status != protocol.StatusSuccess {
		os.Exit(1)
	}
	return nil
}

// parseValue interprets a parameter value as JSON where possible and
// as a plain string otherwise.
func parseValue(value string) any {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	return value
}

// call opens a connection, writes one request line and reads one
// response line.
func call(addr string, timeout time.Duration, request protocol.Request) (*protocol.Response, error) {
	connection, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer connection.Close()
	connection.SetDeadline(time.Now().Add(timeout))

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	if _, err := connection.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	reader := bufio.NewReaderSize(connection, 64*1024)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var response protocol.Response
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("malformed response %q: %w", strings.TrimSpace(string(line)), err)
	}
	return &response, nil
}

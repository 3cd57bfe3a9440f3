// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"
	"sort"
)

// Kind classifies a command by its effect on the song graph. The
// classification is part of registration: a command whose name is not
// in the table has no kind and is rejected outright.
type Kind int

const (
	// ReadOnly commands inspect the song without changing it.
	ReadOnly Kind = iota
	// Mutating commands change the song graph. The handler layer
	// captures an undo snapshot before running them.
	Mutating
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case ReadOnly:
		return "read-only"
	case Mutating:
		return "mutating"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// HandlerFunc executes one command on the main loop. The returned
// value becomes the result field of the success envelope; a returned
// error becomes an error envelope with the error text as message.
type HandlerFunc func(ctx context.Context, params Params) (any, error)

type command struct {
	kind    Kind
	handler HandlerFunc
}

// Table is the command registration table. Registration happens once
// at startup; lookups after that are read-only, so the map needs no
// locking.
type Table struct {
	commands map[string]command
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{commands: make(map[string]command)}
}

// Register adds a command. It panics on a duplicate name, an empty
// name or a nil handler: all three are wiring bugs, not runtime
// conditions.
func (t *Table) Register(name string, kind Kind, handler HandlerFunc) {
	if name == "" {
		panic("dispatch: Register with empty command name")
	}
	if handler == nil {
		panic(fmt.Sprintf("dispatch: Register(%q) with nil handler", name))
	}
	if _, exists := t.commands[name]; exists {
		panic(fmt.Sprintf("dispatch: duplicate command %q", name))
	}
	t.commands[name] = command{kind: kind, handler: handler}
}

// Lookup returns the handler and kind for a command name.
func (t *Table) Lookup(name string) (HandlerFunc, Kind, bool) {
	c, ok := t.commands[name]
	if !ok {
		return nil, 0, false
	}
	return c.handler, c.kind, true
}

// Names returns all registered command names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (t *Table) Len() int { return len(t.commands) }

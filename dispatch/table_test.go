// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"testing"
)

func nopHandler(context.Context, Params) (any, error) { return nil, nil }

func TestTableRegisterAndLookup(t *testing.T) {
	table := NewTable()
	table.Register("get_tempo", ReadOnly, nopHandler)
	table.Register("set_tempo", Mutating, nopHandler)

	handler, kind, ok := table.Lookup("set_tempo")
	if !ok || handler == nil || kind != Mutating {
		t.Fatalf("lookup set_tempo: ok=%v kind=%v", ok, kind)
	}
	if _, _, ok := table.Lookup("no_such_command"); ok {
		t.Fatal("lookup of unregistered command succeeded")
	}
	if table.Len() != 2 {
		t.Fatalf("table length: got %d, want 2", table.Len())
	}

	names := table.Names()
	if len(names) != 2 || names[0] != "get_tempo" || names[1] != "set_tempo" {
		t.Fatalf("names not sorted: %v", names)
	}
}

func TestTableRegisterPanics(t *testing.T) {
	requirePanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatalf("%s did not panic", name)
			}
		}()
		fn()
	}

	table := NewTable()
	table.Register("set_tempo", Mutating, nopHandler)
	requirePanic("duplicate name", func() { table.Register("set_tempo", ReadOnly, nopHandler) })
	requirePanic("empty name", func() { table.Register("", ReadOnly, nopHandler) })
	requirePanic("nil handler", func() { table.Register("get_tempo", ReadOnly, nil) })
}

func TestParamsTypedGetters(t *testing.T) {
	params := Params{
		"tempo":       134.5,
		"track_index": float64(2),
		"looping":     true,
		"name":        "Bass",
		"notes":       []any{map[string]any{"pitch": float64(60)}},
		"clip":        map[string]any{"length": 4.0},
		"explicit":    nil,
	}

	if v, err := params.Float("tempo", 120); err != nil || v != 134.5 {
		t.Fatalf("Float: v=%g err=%v", v, err)
	}
	if v, err := params.Float("missing", 120); err != nil || v != 120 {
		t.Fatalf("Float default: v=%g err=%v", v, err)
	}
	if v, err := params.Int("track_index", 0); err != nil || v != 2 {
		t.Fatalf("Int: v=%d err=%v", v, err)
	}
	if v, err := params.Bool("looping", false); err != nil || !v {
		t.Fatalf("Bool: v=%v err=%v", v, err)
	}
	if v, err := params.String("name", ""); err != nil || v != "Bass" {
		t.Fatalf("String: v=%q err=%v", v, err)
	}
	if list, err := params.List("notes"); err != nil || len(list) != 1 {
		t.Fatalf("List: len=%d err=%v", len(list), err)
	}
	obj, err := params.Object("clip")
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if v, err := obj.Float("length", 0); err != nil || v != 4.0 {
		t.Fatalf("nested Float: v=%g err=%v", v, err)
	}

	// An explicit null falls back to the default like an absent key.
	if v, err := params.Float("explicit", 7); err != nil || v != 7 {
		t.Fatalf("null value: v=%g err=%v", v, err)
	}

	// Present values of the wrong type are errors, not defaults.
	if _, err := params.Float("name", 0); err == nil {
		t.Fatal("Float accepted a string")
	}
	if _, err := params.Int("looping", 0); err == nil {
		t.Fatal("Int accepted a bool")
	}
	if _, err := params.Bool("tempo", false); err == nil {
		t.Fatal("Bool accepted a number")
	}
	if _, err := params.String("tempo", ""); err == nil {
		t.Fatal("String accepted a number")
	}
	if _, err := params.List("name"); err == nil {
		t.Fatal("List accepted a string")
	}
	if _, err := params.Object("notes"); err == nil {
		t.Fatal("Object accepted a list")
	}

	// Fractional indices truncate toward zero.
	if v, err := (Params{"i": 2.9}).Int("i", 0); err != nil || v != 2 {
		t.Fatalf("Int truncation: v=%d err=%v", v, err)
	}
}

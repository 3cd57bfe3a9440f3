// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/songbridge/songbridge/snapshot"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songbridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Listen.Addr != "127.0.0.1:9877" {
		t.Fatalf("listen addr: %q", cfg.Listen.Addr)
	}
	if cfg.DispatchTimeout() != 10*time.Second {
		t.Fatalf("dispatch timeout: %v", cfg.DispatchTimeout())
	}
	if cfg.CompressionTag() != snapshot.CompressionLZ4 {
		t.Fatalf("compression: %v", cfg.CompressionTag())
	}
	if !cfg.Snapshot.SaveOnExit {
		t.Fatal("save_on_exit default off")
	}
}

func TestLoadFilePartialOverride(t *testing.T) {
	path := writeConfig(t, `
listen:
  addr: "127.0.0.1:0"
dispatch:
  timeout: 2s
snapshot:
  path: /tmp/session.snapshot
  compression: zstd
log:
  level: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen.Addr != "127.0.0.1:0" || cfg.Log.Level != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.DispatchTimeout() != 2*time.Second {
		t.Fatalf("dispatch timeout: %v", cfg.DispatchTimeout())
	}
	// Untouched fields keep their defaults.
	if cfg.Log.Format != "text" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.CompressionTag() != snapshot.CompressionZstd {
		t.Fatalf("compression: %v", cfg.CompressionTag())
	}
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "listen:\n  address: oops\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := Config{
		Snapshot: SnapshotConfig{Compression: "brotli"},
		Log:      LogConfig{Level: "loud", Format: "xml"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	message := err.Error()
	for _, want := range []string{"listen.addr", "dispatch.timeout", "compression", "log.level", "log.format"} {
		if !strings.Contains(message, want) {
			t.Fatalf("error %q misses %q", message, want)
		}
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv(EnvVar, path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level: %q", cfg.Log.Level)
	}

	t.Setenv(EnvVar, "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load without env: %v", err)
	}
	if cfg.Listen.Addr != Default().Listen.Addr {
		t.Fatalf("defaults not used: %+v", cfg)
	}
}

// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the songbridge
// server.
//
// Configuration is loaded from a single YAML file specified by:
//   - SONGBRIDGE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. Missing fields keep
// their defaults, so a config file only states what it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/songbridge/songbridge/snapshot"
)

// EnvVar is the environment variable naming the config file.
const EnvVar = "SONGBRIDGE_CONFIG"

// Config is the server configuration.
type Config struct {
	// Listen configures the control socket.
	Listen ListenConfig `yaml:"listen"`

	// Dispatch configures command execution.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Snapshot configures song persistence.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Song configures the initial song graph.
	Song SongConfig `yaml:"song"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// ListenConfig configures the control socket.
type ListenConfig struct {
	// Addr is the TCP listen address. Controllers run on the same
	// host, so this should stay on loopback.
	Addr string `yaml:"addr"`
}

// DispatchConfig configures command execution.
type DispatchConfig struct {
	// Timeout bounds how long a connection waits for the main loop
	// to run one command. A Go duration string, e.g. "10s".
	Timeout string `yaml:"timeout"`
}

// SnapshotConfig configures song persistence.
type SnapshotConfig struct {
	// Path is the snapshot file. Empty disables persistence.
	Path string `yaml:"path"`

	// Compression is the payload compression: none, lz4 or zstd.
	Compression string `yaml:"compression"`

	// SaveOnExit writes a snapshot during shutdown.
	SaveOnExit bool `yaml:"save_on_exit"`
}

// SongConfig configures the initial song graph.
type SongConfig struct {
	// Template is a JSONC song template applied at startup. A
	// loaded snapshot takes precedence.
	Template string `yaml:"template"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:   ListenConfig{Addr: "127.0.0.1:9877"},
		Dispatch: DispatchConfig{Timeout: "10s"},
		Snapshot: SnapshotConfig{
			Compression: "lz4",
			SaveOnExit:  true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config file named by the SONGBRIDGE_CONFIG
// environment variable, or returns the defaults when it is unset.
func Load() (Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates one YAML config file. Fields absent
// from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration. All failures are reported, not
// just the first.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen.Addr == "" {
		errs = append(errs, errors.New("listen.addr must not be empty"))
	}
	if timeout, err := time.ParseDuration(c.Dispatch.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("dispatch.timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("dispatch.timeout must be positive, got %v", timeout))
	}
	if _, err := snapshot.ParseCompressionTag(c.Snapshot.Compression); err != nil {
		errs = append(errs, fmt.Errorf("snapshot.compression: %w", err))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// DispatchTimeout returns the parsed dispatch timeout. Call after
// Validate.
func (c *Config) DispatchTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Dispatch.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return timeout
}

// CompressionTag returns the parsed snapshot compression tag. Call
// after Validate.
func (c *Config) CompressionTag() snapshot.CompressionTag {
	tag, err := snapshot.ParseCompressionTag(c.Snapshot.Compression)
	if err != nil {
		return snapshot.CompressionNone
	}
	return tag
}

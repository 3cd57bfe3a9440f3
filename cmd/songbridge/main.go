// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// songbridge is the control server: it owns a song document and
// exposes the command catalog over a loopback TCP socket speaking
// newline-delimited JSON.
//
// Startup order: configuration, snapshot (when one exists), otherwise
// the song template, then the main loop and the listener. On SIGINT
// or SIGTERM the listener drains, the main loop stops, and the song
// is snapshotted back to disk when persistence is configured.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/songbridge/songbridge/bridge"
	"github.com/songbridge/songbridge/dispatch"
	"github.com/songbridge/songbridge/handlers"
	"github.com/songbridge/songbridge/lib/config"
	"github.com/songbridge/songbridge/lib/songdef"
	"github.com/songbridge/songbridge/lib/version"
	"github.com/songbridge/songbridge/snapshot"
	"github.com/songbridge/songbridge/song"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var listenAddr string
	var snapshotPath string
	var templatePath string
	var verbose bool

	flagSet := pflag.NewFlagSet("songbridge", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file (default: $SONGBRIDGE_CONFIG)")
	flagSet.StringVar(&listenAddr, "listen", "", "TCP listen address (overrides config)")
	flagSet.StringVar(&snapshotPath, "snapshot", "", "snapshot file for song persistence (overrides config)")
	flagSet.StringVar(&templatePath, "template", "", "JSONC song template applied at startup (overrides config)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	// Handle --version before flag parsing to match the other
	// songbridge binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("songbridge")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen.Addr = listenAddr
	}
	if snapshotPath != "" {
		cfg.Snapshot.Path = snapshotPath
	}
	if templatePath != "" {
		cfg.Song.Template = templatePath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger.Info("songbridge starting", "version", version.Info())

	document, err := loadSong(cfg, logger)
	if err != nil {
		return err
	}

	table := dispatch.NewTable()
	handlers.Register(table, document)
	logger.Info("command catalog registered", "commands", table.Len())

	loop := song.NewMainLoop(logger)
	dispatcher, err := dispatch.New(dispatch.Config{
		Table:     table,
		Scheduler: loop,
		Timeout:   cfg.DispatchTimeout(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	server := &bridge.Server{
		ListenAddr: cfg.Listen.Addr,
		Dispatch:   dispatcher.Dispatch,
		Logger:     logger,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go loop.Run(loopCtx)

	if err := server.Start(ctx); err != nil {
		stopLoop()
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	// Listener first so no command arrives after the loop stops.
	server.Stop()
	stopLoop()
	<-loop.Done()

	if cfg.Snapshot.SaveOnExit && cfg.Snapshot.Path != "" {
		// The loop has drained; the graph is quiescent.
		if err := snapshot.Save(cfg.Snapshot.Path, document.Snapshot(), cfg.CompressionTag()); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		logger.Info("snapshot saved", "path", cfg.Snapshot.Path)
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	return slog.New(handler), nil
}

// loadSong builds the initial song graph: a snapshot when one exists
// on disk, else the configured template, else an empty song.
func loadSong(cfg config.Config, logger *slog.Logger) (*song.Song, error) {
	document := song.New()

	if cfg.Snapshot.Path != "" {
		state, err := snapshot.Load(cfg.Snapshot.Path)
		switch {
		case err == nil:
			document.Restore(state)
			logger.Info("snapshot loaded", "path", cfg.Snapshot.Path,
				"tracks", document.TrackCount(), "scenes", document.SceneCount())
			return document, nil
		case errors.Is(err, os.ErrNotExist):
			// First run: nothing saved yet.
		default:
			return nil, err
		}
	}

	if cfg.Song.Template != "" {
		definition, err := songdef.ReadFile(cfg.Song.Template)
		if err != nil {
			return nil, err
		}
		if err := definition.Validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", cfg.Song.Template, err)
		}
		if err := definition.Apply(document); err != nil {
			return nil, fmt.Errorf("applying template %s: %w", cfg.Song.Template, err)
		}
		logger.Info("template applied", "path", cfg.Song.Template,
			"tracks", document.TrackCount(), "scenes", document.SceneCount())
	}
	return document, nil
}

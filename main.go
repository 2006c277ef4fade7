// chatai-client - A terminal client for the ChatAI backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jeranaias/chatai-client/internal/api"
	"github.com/jeranaias/chatai-client/internal/archive"
	"github.com/jeranaias/chatai-client/internal/cli"
	"github.com/jeranaias/chatai-client/internal/config"
	"github.com/jeranaias/chatai-client/internal/logging"
	"github.com/jeranaias/chatai-client/internal/session"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Printf("chatai-client %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.EnsureDir(); err != nil {
		return fmt.Errorf("prepare config dir: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Sync()

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout(),
		SendTimeout:       cfg.Backend.SendTimeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Logger:            log.Named("api"),
	})

	controller := session.New(session.Config{
		Directory: client,
		Catalog:   client,
		Settings:  client,
		Logger:    log.Named("session"),
		Defaults: session.Defaults{
			Model:       cfg.Chat.DefaultModel,
			Temperature: cfg.Chat.Temperature,
			MaxTokens:   cfg.Chat.MaxTokens,
		},
	})
	controller.SetIncognitoMode(cfg.Chat.IncognitoByDefault)

	var store *archive.Archive
	if cfg.Archive.Enabled {
		path := cfg.Archive.Path
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return fmt.Errorf("resolve archive path: %w", err)
			}
			path = filepath.Join(dir, "archive.db")
		}
		store, err = archive.Open(path, log.Named("archive"))
		if err != nil {
			// A broken archive should not keep the client from starting.
			log.Warn("archive unavailable", zap.String("path", path), zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	repl := cli.NewRepl(cli.Options{
		Config:     cfg,
		Client:     client,
		Controller: controller,
		Archive:    store,
		Logger:     log,
	})

	// Pick up config edits without a restart. Only safe-to-apply settings
	// change live; transport settings need a restart.
	watcher := startConfigWatcher(repl, log)
	if watcher != nil {
		defer watcher.Close()
	}

	return repl.Run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	file := cfg.Logging.File
	if file == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		file = filepath.Join(dir, "chatai.log")
	}
	return logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		File:       file,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
}

func startConfigWatcher(repl *cli.Repl, log *zap.Logger) *config.Watcher {
	path, err := config.Path()
	if err != nil {
		return nil
	}
	watcher, err := config.NewWatcher(path, 0, func(updated *config.Config, err error) {
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		repl.ApplyConfig(updated)
		log.Info("config reloaded")
	})
	if err != nil {
		log.Warn("config watch unavailable", zap.Error(err))
		return nil
	}
	if err := watcher.Watch(); err != nil {
		log.Warn("config watch unavailable", zap.Error(err))
		watcher.Close()
		return nil
	}
	return watcher
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chatai.log")

	log, err := New(Options{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)
	log.Info("hello from test")
	log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello from test")
	require.Contains(t, string(data), `"timestamp"`, "log entries should carry a timestamp key")
}

func TestNewLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatai.log")

	log, err := New(Options{Level: "error", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	log.Info("quiet")
	log.Error("loud")
	log.Sync()

	data, _ := os.ReadFile(path)
	require.NotContains(t, string(data), "quiet", "info entry should be filtered at error level")
	require.Contains(t, string(data), "loud")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loudest", File: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
}

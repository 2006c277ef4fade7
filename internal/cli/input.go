// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// input.go - Line editing and input history for the REPL.

package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/chatai-client/internal/config"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// Input wraps liner with persistent history. Arrow keys navigate previous
// inputs across sessions.
type Input struct {
	line        *liner.State
	historyFile string
}

// NewInput creates an Input reading and writing history at historyFile.
// An empty path places the history file in the config directory.
func NewInput(historyFile string) *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if historyFile == "" {
		configDir, err := config.Dir()
		if err != nil {
			configDir = os.TempDir()
		}
		historyFile = filepath.Join(configDir, "history")
	}

	in := &Input{
		line:        line,
		historyFile: historyFile,
	}
	in.loadHistory()
	return in
}

func (in *Input) loadHistory() {
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine reads one line with the given prompt. Non-empty input is added
// to the history.
func (in *Input) ReadLine(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists the history file with owner-only permissions.
func (in *Input) SaveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	in.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (in *Input) Close() {
	in.SaveHistory()
	in.line.Close()
}

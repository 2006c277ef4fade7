// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for the chatai REPL.
//
// Colors are disabled automatically for non-TTY output and under NO_COLOR.

package cli

import (
	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// ApplyTheme forces the light or dark variant of every adaptive color.
// "auto" (or anything else) keeps terminal background detection.
func ApplyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// =============================================================================
// PALETTE
// =============================================================================

var (
	// Cyan - brand color, prompt, commands
	cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

	// Purple - assistant messages, welcome banner
	purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

	// Emerald - success states
	emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

	// Amber - warnings
	amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	// Red - errors
	red = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

	// Secondary text
	textSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(textSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(emerald).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(purple).
				Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(textSecondary).
			Italic(true)
)

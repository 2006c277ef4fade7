// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat is one entry of the user's chat directory.
type Chat struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"lastMessageAt,omitzero"`

	// Model is the last model seen for this chat, if any.
	Model string `json:"model,omitempty"`

	// IsIncognito marks a chat that exists only in local memory. Incognito
	// chats are never synced to the backend and die with the session.
	IsIncognito bool `json:"isIncognito,omitempty"`
}

// ChatMeta is the derived, non-authoritative per-chat summary used to
// annotate the chat list without refetching full history.
type ChatMeta struct {
	LastMessageAt time.Time
	Model         string
}

// Merge overlays non-zero meta fields onto the chat's own values.
func (c Chat) Merge(meta ChatMeta) Chat {
	if !meta.LastMessageAt.IsZero() {
		c.LastMessageAt = meta.LastMessageAt
	}
	if meta.Model != "" {
		c.Model = meta.Model
	}
	return c
}

// =============================================================================
// SETTINGS TYPES
// =============================================================================

// Temperature and token-limit fallbacks applied when neither chat nor user
// settings provide a value.
const (
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 512
)

// ChatSettings is the per-chat generation configuration. A chat has no
// settings record until one is loaded from the server or the user customizes
// the chat; absence is represented by a nil *ChatSettings.
type ChatSettings struct {
	ID          int64   `json:"id"`
	ChatID      int64   `json:"chatId"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// UserSettings holds the per-user defaults persisted by the settings
// service.
type UserSettings struct {
	ID           int64   `json:"id,omitempty"`
	Model        string  `json:"model,omitempty"`
	DefaultModel string  `json:"defaultModel,omitempty"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
	ServiceURL   string  `json:"serviceUrl,omitempty"`
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// ModelInfo describes one entry of the backend's model catalog.
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// Label returns the name to show in a picker.
func (m ModelInfo) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// =============================================================================
// USER IDENTITY
// =============================================================================

// User is the authenticated identity gating chat operations. Auth itself is
// an external concern; the controller only needs the ID and display login.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`

	// Model is an optional per-account default model reported by the auth
	// endpoint.
	Model string `json:"model,omitempty"`
}

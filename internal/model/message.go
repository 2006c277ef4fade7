// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DefaultAuthor returns the display label used when a message carries no
// author of its own.
func (r Role) DefaultAuthor() string {
	if r == RoleAssistant {
		return "AI assistant"
	}
	return "You"
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// LocalIDPrefix marks message IDs generated on this side of the wire.
// An optimistic message keeps such an ID until the server round trip
// completes; server-issued IDs never carry the prefix.
const LocalIDPrefix = "local-"

// Message is the canonical form of a chat message after normalization.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp,omitzero"`

	// Content is always present, possibly empty. Never a missing field, so
	// rendering code does not need to nil-check.
	Content string `json:"content"`

	// Images holds displayable image references (data URIs or http URLs),
	// deduplicated and in arrival order.
	Images []string `json:"images,omitempty"`
}

// NewOptimisticMessage creates a locally-identified user message for
// optimistic display before the server confirms the send.
func NewOptimisticMessage(content string, images []string) Message {
	return Message{
		ID:        LocalIDPrefix + uuid.NewString(),
		Role:      RoleUser,
		Author:    RoleUser.DefaultAuthor(),
		Content:   content,
		Images:    images,
		Timestamp: time.Now(),
	}
}

// IsOptimistic reports whether the message still carries a locally-generated
// identifier.
func (m Message) IsOptimistic() bool {
	return strings.HasPrefix(m.ID, LocalIDPrefix)
}

// DisplayLength is the growth metric used by the scroll heuristic: rune
// count of the content plus the number of attached images.
func (m Message) DisplayLength() int {
	return len([]rune(m.Content)) + len(m.Images)
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// LastMessage returns the final message of a slice, or a zero Message and
// false when the slice is empty.
func LastMessage(msgs []Message) (Message, bool) {
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/jeranaias/chatai-client/internal/model"

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the read-only view of the session handed to the presentation
// layer after every state change. Slices are copies; holding on to a
// Snapshot is always safe.
type Snapshot struct {
	// Selection
	ActiveChatID int64
	IsIncognito  bool

	// Chat list with per-chat meta merged in; the incognito chat, when one
	// exists, is prepended.
	Chats []model.Chat

	// Active chat state
	Messages []model.Message

	// Resolved generation configuration
	Model       string
	Temperature float64
	MaxTokens   int
	Models      []model.ModelInfo

	// Flags
	Loading bool
	Sending bool
	CanSend bool

	// Err is the latest operation error, empty when the last operation
	// succeeded.
	Err string

	// Scroll is the viewport decision for this state change. It is only
	// meaningful on snapshots delivered through OnChange; the Snapshot()
	// getter reports ScrollNone.
	Scroll ScrollAction
}

// ActiveChat returns the chat list entry for the active chat, if any.
func (s Snapshot) ActiveChat() (model.Chat, bool) {
	for _, chat := range s.Chats {
		if chat.ID == s.ActiveChatID {
			return chat, true
		}
	}
	return model.Chat{}, false
}

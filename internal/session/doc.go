// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the chat session controller: the state machine
// that owns chat selection, message history, optimistic sends, per-chat
// caching, configuration cascade resolution, and scroll anchoring.
//
// The Controller is the single writer of all session state. Collaborators
// (chat directory, model catalog, user settings) are consumed through small
// interfaces so the controller stays testable without a backend. State
// flows out through Snapshot values delivered to the OnChange callback.
package session

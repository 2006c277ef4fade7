// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/jeranaias/chatai-client/internal/model"

// =============================================================================
// SCROLL ANCHORING HEURISTIC
// =============================================================================

// ScrollAction tells the viewport what to do after a state change.
type ScrollAction int

const (
	// ScrollNone leaves the viewport alone.
	ScrollNone ScrollAction = iota
	// ScrollSnap jumps to the bottom without animation: chat switch,
	// initial history load, or in-place growth of the last message.
	ScrollSnap
	// ScrollSmooth animates to the bottom: a new message was appended.
	ScrollSmooth
)

// String returns the action name for logs.
func (a ScrollAction) String() string {
	switch a {
	case ScrollSnap:
		return "snap"
	case ScrollSmooth:
		return "smooth"
	default:
		return "none"
	}
}

// ScrollTracker decides scroll behavior from successive observations of the
// message list. It keys observations by chat ID so a chat switch is
// distinguishable from an append within the same chat.
type ScrollTracker struct {
	prevChatID  int64
	prevCount   int
	prevLastID  string
	prevLastLen int
}

// Observe records the current state and returns the scroll action. The
// rules fire in order; the first match wins.
func (t *ScrollTracker) Observe(chatID int64, msgs []model.Message) ScrollAction {
	count := len(msgs)

	// 1. Empty list: reset tracking, nothing to scroll to.
	if count == 0 {
		t.prevChatID = chatID
		t.prevCount = 0
		t.prevLastID = ""
		t.prevLastLen = 0
		return ScrollNone
	}

	last := msgs[count-1]
	lastLen := last.DisplayLength()

	action := ScrollNone
	switch {
	// 2. Chat switch or first load of history.
	case chatID != t.prevChatID || t.prevCount == 0:
		action = ScrollSnap
	// 3. A message was appended.
	case count > t.prevCount:
		action = ScrollSmooth
	// 4. The last message grew in place.
	case last.ID == t.prevLastID && lastLen > t.prevLastLen:
		action = ScrollSnap
	}

	t.prevChatID = chatID
	t.prevCount = count
	t.prevLastID = last.ID
	t.prevLastLen = lastLen
	return action
}

// Reset clears all tracking state.
func (t *ScrollTracker) Reset() {
	*t = ScrollTracker{}
}

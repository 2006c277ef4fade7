// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewOptimisticMessage(t *testing.T) {
	m := NewOptimisticMessage("hello", []string{"data:image/png;base64,X"})

	if !m.IsOptimistic() {
		t.Error("fresh optimistic message should report IsOptimistic")
	}
	if m.Role != RoleUser {
		t.Errorf("Role = %v, want user", m.Role)
	}
	if m.Author != "You" {
		t.Errorf("Author = %q, want You", m.Author)
	}
	if m.Content != "hello" || len(m.Images) != 1 {
		t.Errorf("content/images = %q/%v", m.Content, m.Images)
	}
	if m.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	// IDs must be unique across messages.
	if NewOptimisticMessage("a", nil).ID == NewOptimisticMessage("a", nil).ID {
		t.Error("two optimistic messages share an ID")
	}
}

func TestIsOptimistic(t *testing.T) {
	if (Message{ID: "42"}).IsOptimistic() {
		t.Error("server ID should not be optimistic")
	}
	if !(Message{ID: LocalIDPrefix + "x"}).IsOptimistic() {
		t.Error("local ID should be optimistic")
	}
}

func TestDisplayLength(t *testing.T) {
	m := Message{Content: "привет", Images: []string{"a", "b"}}
	if got := m.DisplayLength(); got != 8 {
		t.Errorf("DisplayLength = %d, want 8 (6 runes + 2 images)", got)
	}
}

func TestPreview(t *testing.T) {
	m := Message{Content: "hello world"}
	if got := m.Preview(20); got != "hello world" {
		t.Errorf("Preview(20) = %q", got)
	}
	if got := m.Preview(8); got != "hello..." {
		t.Errorf("Preview(8) = %q", got)
	}
}

func TestLastMessage(t *testing.T) {
	if _, ok := LastMessage(nil); ok {
		t.Error("empty slice should report no last message")
	}
	last, ok := LastMessage([]Message{{ID: "1"}, {ID: "2"}})
	if !ok || last.ID != "2" {
		t.Errorf("LastMessage = %+v, ok=%v", last, ok)
	}
}

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRoleDefaultAuthor(t *testing.T) {
	if RoleAssistant.DefaultAuthor() != "AI assistant" {
		t.Error("assistant default author mismatch")
	}
	if RoleUser.DefaultAuthor() != "You" {
		t.Error("user default author mismatch")
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChatMerge(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	chat := Chat{ID: 1, Title: "t", Model: "old"}

	merged := chat.Merge(ChatMeta{LastMessageAt: at, Model: "new"})
	if !merged.LastMessageAt.Equal(at) || merged.Model != "new" {
		t.Errorf("merged = %+v", merged)
	}

	// Zero meta fields leave the chat untouched.
	merged = merged.Merge(ChatMeta{})
	if !merged.LastMessageAt.Equal(at) || merged.Model != "new" {
		t.Errorf("zero merge changed chat: %+v", merged)
	}
}

func TestModelInfoLabel(t *testing.T) {
	if got := (ModelInfo{Name: "llama3:8b"}).Label(); got != "llama3:8b" {
		t.Errorf("Label = %q", got)
	}
	if got := (ModelInfo{Name: "llama3:8b", DisplayName: "Llama 3"}).Label(); got != "Llama 3" {
		t.Errorf("Label = %q", got)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/chatai-client/internal/model"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleTranscript() (model.Chat, []model.Message) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	chat := model.Chat{ID: 1, Title: "greetings", Model: "llama3", LastMessageAt: at}
	msgs := []model.Message{
		{ID: "m1", Role: model.RoleUser, Author: "alice", Content: "hello there", Timestamp: at.Add(-time.Minute)},
		{ID: "m2", Role: model.RoleAssistant, Author: "AI assistant", Content: "hi, how can I help", Timestamp: at,
			Images: []string{"data:image/png;base64,X"}},
	}
	return chat, msgs
}

func TestSaveAndReadTranscript(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	chat, msgs := sampleTranscript()

	if err := a.SaveTranscript(ctx, chat, msgs); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	chats, err := a.Chats(ctx)
	if err != nil {
		t.Fatalf("Chats: %v", err)
	}
	if len(chats) != 1 || chats[0].Title != "greetings" || chats[0].Model != "llama3" {
		t.Errorf("chats = %+v", chats)
	}
	if !chats[0].LastMessageAt.Equal(chat.LastMessageAt) {
		t.Errorf("LastMessageAt = %v", chats[0].LastMessageAt)
	}

	got, err := a.Messages(ctx, 1)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2", len(got))
	}
	if got[0].Content != "hello there" || got[0].Role != model.RoleUser {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Author != "AI assistant" || !got[1].Timestamp.Equal(msgs[1].Timestamp) {
		t.Errorf("second = %+v", got[1])
	}
}

func TestSaveTranscriptReplacesSnapshot(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	chat, msgs := sampleTranscript()

	a.SaveTranscript(ctx, chat, msgs)
	// Second snapshot with an extra message replaces the first wholesale.
	msgs = append(msgs, model.Message{ID: "m3", Role: model.RoleUser, Content: "more"})
	if err := a.SaveTranscript(ctx, chat, msgs); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	got, _ := a.Messages(ctx, 1)
	if len(got) != 3 {
		t.Errorf("messages = %d, want 3", len(got))
	}
	stats, err := a.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Chats != 1 || stats.Messages != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIncognitoNeverArchived(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	chat := model.Chat{ID: -1, Title: "secret", IsIncognito: true}
	if err := a.SaveTranscript(ctx, chat, []model.Message{{ID: "m", Content: "private"}}); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	stats, _ := a.Stats(ctx)
	if stats.Chats != 0 || stats.Messages != 0 {
		t.Errorf("incognito chat leaked into the archive: %+v", stats)
	}
}

func TestMessagesUnknownChat(t *testing.T) {
	a := openTestArchive(t)

	if _, err := a.Messages(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	chat, msgs := sampleTranscript()
	a.SaveTranscript(ctx, chat, msgs)

	if err := a.Delete(ctx, chat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	stats, _ := a.Stats(ctx)
	if stats.Chats != 0 || stats.Messages != 0 {
		t.Errorf("delete left rows: %+v", stats)
	}
}

func TestSearch(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	chat, msgs := sampleTranscript()
	a.SaveTranscript(ctx, chat, msgs)

	results, err := a.Search(ctx, "hello", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].ChatID != 1 || results[0].Title != "greetings" || results[0].Role != model.RoleUser {
		t.Errorf("result = %+v", results[0])
	}

	if results, _ := a.Search(ctx, "nonexistentword", 10); len(results) != 0 {
		t.Errorf("unexpected hits: %+v", results)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a1, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	chat, msgs := sampleTranscript()
	a1.SaveTranscript(context.Background(), chat, msgs)
	a1.Close()

	a2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer a2.Close()
	stats, _ := a2.Stats(context.Background())
	if stats.Chats != 1 {
		t.Errorf("data lost across reopen: %+v", stats)
	}
}

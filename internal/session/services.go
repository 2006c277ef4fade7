// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/chatai-client/internal/api"
	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Directory is the chat directory service: the authoritative store of
// chats, messages, and per-chat settings. *api.Client satisfies it.
type Directory interface {
	ListChats(ctx context.Context, userID int64) ([]model.Chat, error)
	CreateChat(ctx context.Context, req api.CreateChatRequest) (model.Chat, error)
	RenameChat(ctx context.Context, chatID int64, title string) error
	DeleteChat(ctx context.Context, chatID int64) error
	ClearChat(ctx context.Context, chatID int64) error
	Messages(ctx context.Context, chatID int64) ([]api.RawMessage, error)
	LastMessage(ctx context.Context, chatID int64) (*api.RawMessage, error)
	ChatSettings(ctx context.Context, chatID int64) (model.ChatSettings, error)
	SaveChatSettings(ctx context.Context, settings model.ChatSettings) error
	Send(ctx context.Context, req api.SendMessageRequest) (api.SendMessageResponse, error)
}

// Catalog is the model catalog service.
type Catalog interface {
	Models(ctx context.Context) ([]model.ModelInfo, error)
}

// SettingsStore is the per-user settings service.
type SettingsStore interface {
	UserSettings(ctx context.Context, userID int64) (model.UserSettings, error)
	SaveUserSettings(ctx context.Context, userID int64, settings model.UserSettings) error
}

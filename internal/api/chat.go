// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// CHAT DIRECTORY SERVICE
// =============================================================================

// ListChats returns the user's chats, newest first as ordered by the server.
func (c *Client) ListChats(ctx context.Context, userID int64) ([]model.Chat, error) {
	var chats []model.Chat
	if err := c.get(ctx, "/Chat/user/"+strconv.FormatInt(userID, 10)+"/chats", &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a new chat for the user.
func (c *Client) CreateChat(ctx context.Context, req CreateChatRequest) (model.Chat, error) {
	var chat model.Chat
	if err := c.post(ctx, "/Chat", req, &chat); err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// RenameChat changes a chat's title.
func (c *Client) RenameChat(ctx context.Context, chatID int64, title string) error {
	return c.put(ctx, "/Chat/"+strconv.FormatInt(chatID, 10)+"/rename", RenameChatRequest{Title: title}, nil)
}

// DeleteChat removes a chat and its history.
func (c *Client) DeleteChat(ctx context.Context, chatID int64) error {
	return c.delete(ctx, "/Chat/"+strconv.FormatInt(chatID, 10))
}

// ClearChat removes all messages from a chat, keeping the chat itself.
func (c *Client) ClearChat(ctx context.Context, chatID int64) error {
	return c.post(ctx, "/Chat/"+strconv.FormatInt(chatID, 10)+"/clear", nil, nil)
}

// Messages fetches the full raw message history of a chat.
func (c *Client) Messages(ctx context.Context, chatID int64) ([]RawMessage, error) {
	var msgs []RawMessage
	if err := c.get(ctx, "/Chat/"+strconv.FormatInt(chatID, 10)+"/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// LastMessage fetches the most recent message of a chat, or nil when the
// chat is empty. The endpoint answers with an array of at most one record.
func (c *Client) LastMessage(ctx context.Context, chatID int64) (*RawMessage, error) {
	var msgs []RawMessage
	if err := c.get(ctx, "/Chat/"+strconv.FormatInt(chatID, 10)+"/messages/last", &msgs); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

// ChatSettings fetches the per-chat settings record.
func (c *Client) ChatSettings(ctx context.Context, chatID int64) (model.ChatSettings, error) {
	var settings model.ChatSettings
	if err := c.get(ctx, "/Chat/getChatSettings/"+strconv.FormatInt(chatID, 10), &settings); err != nil {
		return model.ChatSettings{}, err
	}
	return settings, nil
}

// SaveChatSettings persists a per-chat settings record.
func (c *Client) SaveChatSettings(ctx context.Context, settings model.ChatSettings) error {
	return c.post(ctx, "/Chat/chat/saveChatSettings", settings, nil)
}

// Send delivers a user message and blocks until the assistant reply is
// available; the backend has no streaming surface, so this uses the long
// send timeout.
func (c *Client) Send(ctx context.Context, req SendMessageRequest) (SendMessageResponse, error) {
	var resp SendMessageResponse
	if req.Base64Images == nil {
		req.Base64Images = []string{}
	}
	if err := c.do(ctx, http.MethodPost, "/Chat/send", req, &resp, true); err != nil {
		return SendMessageResponse{}, err
	}
	return resp, nil
}

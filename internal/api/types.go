// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// RAW MESSAGE
// =============================================================================

// RawMessage is a server message record as it arrives off the wire. The
// backend has grown several shapes for the same concepts (numeric or string
// roles, single or plural image fields, content vs text), so everything
// polymorphic is kept loose here and resolved by the normalize package.
type RawMessage struct {
	// ID is a number or a string depending on the endpoint.
	ID any `json:"id"`

	// Role is a number (0 = assistant) or a string on newer endpoints.
	Role any `json:"role"`

	// Content and Text are alternates; nil means the field was absent.
	Content *string `json:"content"`
	Text    *string `json:"text"`

	Author    string `json:"author"`
	UserLogin string `json:"userLogin"`
	CreatedAt string `json:"createdAt"`

	// IsAI covers both the isAi and isAI spellings; encoding/json matches
	// keys case-insensitively.
	IsAI *bool `json:"isAi"`

	MessageType string `json:"messageType"`
	Type        string `json:"type"`

	// Image fields, every shape the backend has ever produced. Images may
	// hold strings, objects, or arbitrarily nested arrays of either.
	ImageURL     string   `json:"imageUrl"`
	ImageURLs    []string `json:"imageUrls"`
	Base64Image  string   `json:"base64Image"`
	Base64Images []string `json:"base64Images"`
	ImageBlob    string   `json:"imageBlob"`
	ImageBlobs   []string `json:"imageBlobs"`
	Images       any      `json:"images"`
}

// =============================================================================
// REQUEST / RESPONSE PAYLOADS
// =============================================================================

// CreateChatRequest is the payload for creating a chat.
type CreateChatRequest struct {
	Title  string `json:"title,omitempty"`
	UserID int64  `json:"userId,omitempty"`
}

// RenameChatRequest is the payload for renaming a chat.
type RenameChatRequest struct {
	Title string `json:"title"`
}

// SendMessageRequest is the payload for sending a user message.
type SendMessageRequest struct {
	ChatID       int64    `json:"chatId"`
	UserID       int64    `json:"userId"`
	Text         string   `json:"text"`
	Base64Images []string `json:"base64Images"`
}

// SendMessageResponse carries the assistant's reply to a send.
type SendMessageResponse struct {
	AIMessage RawMessage `json:"aiMessage"`
}

// AuthRequest is the login/register payload.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResponse is the backend's account record.
type AuthResponse struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	CreatedAt    string `json:"createdAt"`
	ModelChanged bool   `json:"modelChanged"`
	Model        string `json:"model"`
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the ChatAI backend.
//
// It covers the four collaborator services the session controller consumes:
// the chat directory (chats, messages, per-chat settings, send), the model
// catalog, per-user settings, and the auth endpoints used to establish the
// current user. All calls take a context and return typed errors; see
// ClientError.
package api

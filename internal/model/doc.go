// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the client:
// chats, messages, per-chat and per-user settings, and the model catalog.
//
// Everything in this package is a plain value type. Mutation and caching
// policy live in the session package; network representations live in the
// api package.
package model

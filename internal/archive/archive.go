// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local sqlite copy of chat transcripts so history
// survives backend resets and can be searched offline. Incognito chats are
// never written here.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chatai-client/internal/model"
)

var (
	ErrClosed   = errors.New("archive is closed")
	ErrNotFound = errors.New("chat not archived")
)

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is a local transcript store. Safe for concurrent use; sqlite
// serializes writers internally.
type Archive struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens or creates the archive database at path.
func Open(path string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply archive schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &Archive{db: db, log: logger}, nil
}

// Close releases the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// WRITING
// =============================================================================

// SaveTranscript snapshots a chat and its full message list, replacing any
// previous snapshot of the same chat. Incognito chats are skipped silently;
// privacy there outranks durability.
func (a *Archive) SaveTranscript(ctx context.Context, chat model.Chat, msgs []model.Message) error {
	if chat.IsIncognito {
		a.log.Debug("skipping incognito chat", zap.Int64("chat_id", chat.ID))
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lastAt any
	if !chat.LastMessageAt.IsZero() {
		lastAt = chat.LastMessageAt.Unix()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chats (id, title, model, last_message_at, archived_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   model = excluded.model,
		   last_message_at = excluded.last_message_at,
		   archived_at = excluded.archived_at`,
		chat.ID, chat.Title, chat.Model, lastAt, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, chat.ID); err != nil {
		return fmt.Errorf("failed to clear old transcript: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (chat_id, seq, msg_id, role, author, content, created_at, image_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range msgs {
		var createdAt any
		if !msg.Timestamp.IsZero() {
			createdAt = msg.Timestamp.Unix()
		}
		if _, err := stmt.ExecContext(ctx,
			chat.ID, i, msg.ID, msg.Role.String(), msg.Author, msg.Content, createdAt, len(msg.Images),
		); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}

	a.log.Debug("archived transcript",
		zap.Int64("chat_id", chat.ID),
		zap.Int("messages", len(msgs)))
	return nil
}

// Delete removes a chat and its transcript from the archive.
func (a *Archive) Delete(ctx context.Context, chatID int64) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// =============================================================================
// READING
// =============================================================================

// Chats lists archived chats, most recently archived first.
func (a *Archive) Chats(ctx context.Context) ([]model.Chat, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, title, model, last_message_at FROM chats ORDER BY archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		var chat model.Chat
		var chatModel sql.NullString
		var lastAt sql.NullInt64
		if err := rows.Scan(&chat.ID, &chat.Title, &chatModel, &lastAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chat.Model = chatModel.String
		if lastAt.Valid {
			chat.LastMessageAt = time.Unix(lastAt.Int64, 0).UTC()
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// Messages returns the archived transcript of a chat in order.
func (a *Archive) Messages(ctx context.Context, chatID int64) ([]model.Message, error) {
	var exists int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats WHERE id = ?`, chatID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check chat: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT msg_id, role, author, content, created_at
		 FROM messages WHERE chat_id = ? ORDER BY seq`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var msg model.Message
		var role string
		var author, content sql.NullString
		var createdAt sql.NullInt64
		if err := rows.Scan(&msg.ID, &role, &author, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Author = author.String
		msg.Content = content.String
		if createdAt.Valid {
			msg.Timestamp = time.Unix(createdAt.Int64, 0).UTC()
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	ChatID  int64
	Title   string
	Role    model.Role
	Content string
}

// Search runs a full-text query over archived message content.
func (a *Archive) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT m.chat_id, c.title, m.role, m.content
		 FROM messages_fts f
		 JOIN messages m ON m.id = f.rowid
		 JOIN chats c ON c.id = m.chat_id
		 WHERE messages_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var role string
		if err := rows.Scan(&r.ChatID, &r.Title, &role, &r.Content); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Role = model.Role(role)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Stats summarizes archive contents.
type Stats struct {
	Chats    int
	Messages int
}

// Stats returns archive row counts.
func (a *Archive) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats`).Scan(&s.Chats); err != nil {
		return Stats{}, err
	}
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&s.Messages); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// CHAT CACHE
// =============================================================================

// ChatCache stores the last-known {messages, settings} pair per chat so a
// chat switch can skip the network round trip. For the incognito chat the
// entry is the only copy of the data there is.
type ChatCache struct {
	mu      sync.RWMutex
	entries map[int64]CacheEntry

	// Statistics
	hits   int
	misses int
}

// CacheEntry is the cached state of one chat.
type CacheEntry struct {
	Messages []model.Message
	Settings *model.ChatSettings
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
}

// NewChatCache creates an empty cache.
func NewChatCache() *ChatCache {
	return &ChatCache{entries: make(map[int64]CacheEntry)}
}

// Get returns the cached entry for a chat, if present.
func (cc *ChatCache) Get(chatID int64) (CacheEntry, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	entry, ok := cc.entries[chatID]
	if ok {
		cc.hits++
	} else {
		cc.misses++
	}
	return entry, ok
}

// Put stores or overwrites the entry for a chat.
func (cc *ChatCache) Put(chatID int64, messages []model.Message, settings *model.ChatSettings) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.entries[chatID] = CacheEntry{Messages: messages, Settings: settings}
}

// PutMessages replaces only the cached messages, keeping any settings.
func (cc *ChatCache) PutMessages(chatID int64, messages []model.Message) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	entry := cc.entries[chatID]
	entry.Messages = messages
	cc.entries[chatID] = entry
}

// PutSettings replaces only the cached settings, keeping any messages.
func (cc *ChatCache) PutSettings(chatID int64, settings *model.ChatSettings) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	entry := cc.entries[chatID]
	entry.Settings = settings
	cc.entries[chatID] = entry
}

// Invalidate removes a chat's entry; used on delete.
func (cc *ChatCache) Invalidate(chatID int64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.entries, chatID)
}

// Clear removes all entries.
func (cc *ChatCache) Clear() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.entries = make(map[int64]CacheEntry)
}

// Stats returns cache statistics.
func (cc *ChatCache) Stats() CacheStats {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return CacheStats{Hits: cc.hits, Misses: cc.misses, Entries: len(cc.entries)}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/chatai-client/internal/api"
	"github.com/jeranaias/chatai-client/internal/model"
	"github.com/jeranaias/chatai-client/internal/normalize"
	"github.com/jeranaias/chatai-client/internal/util"
)

// Validation errors raised before any network call is made.
var (
	ErrNoUser         = errors.New("sign in to manage chats")
	ErrNoActiveChat   = errors.New("no chat is selected")
	ErrSendInFlight   = errors.New("a message is already being sent")
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrBadTemperature = errors.New("temperature must be between 0.0 and 2.0")
	ErrBadMaxTokens   = errors.New("max tokens must be positive")
)

// implicitTitleRunes is how much of the first message becomes the title of
// an implicitly created chat.
const implicitTitleRunes = 40

// =============================================================================
// CONTROLLER
// =============================================================================

// Config wires a Controller to its collaborators.
type Config struct {
	Directory Directory
	Catalog   Catalog
	Settings  SettingsStore

	// Logger receives controller diagnostics. Nil means no logging.
	Logger *zap.Logger

	// Defaults seed the bottom layer of the configuration cascade,
	// typically from the client config file.
	Defaults Defaults

	// OnChange is invoked after every state change with a fresh Snapshot.
	// It is always called outside the controller's lock, from whichever
	// goroutine performed the operation.
	OnChange func(Snapshot)
}

// Controller owns all session state and is its only writer. Public
// operations never panic across the boundary: failures come back as the
// return value and land in the snapshot's error slot.
type Controller struct {
	mu sync.Mutex

	dir      Directory
	catalog  Catalog
	settings SettingsStore
	log      *zap.Logger
	onChange func(Snapshot)
	defaults Defaults

	// Identity and upstream configuration
	user         *model.User
	userSettings *model.UserSettings
	models       []model.ModelInfo

	// Chat directory state
	chats []model.Chat
	meta  map[int64]model.ChatMeta

	// Active chat state
	activeChat   int64 // 0 = none selected
	messages     []model.Message
	chatSettings *model.ChatSettings

	// loadGen guards against stale fetches: a response is only applied when
	// the generation captured at request start still matches.
	loadGen uint64

	// Resolved configuration for the active chat
	model       string
	temperature float64
	maxTokens   int

	// Incognito tracking: at most one incognito chat exists, identified by
	// a locally allocated negative ID the server never sees.
	incognito     *model.Chat
	incognitoSeq  int64
	incognitoMode bool

	// Flags and error slot
	loading bool
	sending bool
	lastErr string

	cache  *ChatCache
	scroll ScrollTracker
}

// New creates a Controller.
func New(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	initial := Resolve(ResolveInputs{Defaults: cfg.Defaults})
	return &Controller{
		dir:         cfg.Directory,
		catalog:     cfg.Catalog,
		settings:    cfg.Settings,
		log:         log,
		onChange:    cfg.OnChange,
		defaults:    cfg.Defaults,
		meta:        make(map[int64]model.ChatMeta),
		model:       initial.Model,
		temperature: initial.Temperature,
		maxTokens:   initial.MaxTokens,
		cache:       NewChatCache(),
	}
}

// SetOnChange replaces the state change callback.
func (c *Controller) SetOnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Cache exposes the chat cache, mainly for stats.
func (c *Controller) Cache() *ChatCache {
	return c.cache
}

// =============================================================================
// SNAPSHOT PLUMBING
// =============================================================================

// Snapshot returns the current state. The Scroll field of snapshots from
// this getter is always ScrollNone; scroll decisions are made once per
// state change and delivered through OnChange.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(false)
}

func (c *Controller) snapshotLocked(observe bool) Snapshot {
	snap := Snapshot{
		ActiveChatID: c.activeChat,
		IsIncognito:  c.isIncognitoLocked(c.activeChat),
		Chats:        c.chatsWithMetaLocked(),
		Messages:     append([]model.Message(nil), c.messages...),
		Model:        c.model,
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
		Models:       append([]model.ModelInfo(nil), c.models...),
		Loading:      c.loading,
		Sending:      c.sending,
		CanSend:      !c.sending,
		Err:          c.lastErr,
	}
	// Scroll is not evaluated while a load is in flight; the load's final
	// state change produces the decision.
	if observe && !c.loading {
		snap.Scroll = c.scroll.Observe(c.activeChat, c.messages)
	}
	return snap
}

// publish records an error (if any), emits a snapshot, and releases the
// lock. Every public operation funnels through here so the callback always
// runs outside the lock and the error slot stays consistent.
func (c *Controller) publish(err error) error {
	if err != nil {
		c.lastErr = err.Error()
		c.log.Warn("session operation failed", zap.Error(err))
	}
	snap := c.snapshotLocked(true)
	cb := c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
	return err
}

func (c *Controller) chatsWithMetaLocked() []model.Chat {
	out := make([]model.Chat, 0, len(c.chats)+1)
	if c.incognito != nil {
		out = append(out, c.incognito.Merge(c.meta[c.incognito.ID]))
	}
	for _, chat := range c.chats {
		out = append(out, chat.Merge(c.meta[chat.ID]))
	}
	return out
}

func (c *Controller) isIncognitoLocked(chatID int64) bool {
	return c.incognito != nil && chatID != 0 && c.incognito.ID == chatID
}

// setMetaLocked merges non-zero fields into a chat's meta entry.
func (c *Controller) setMetaLocked(chatID int64, meta model.ChatMeta) {
	cur := c.meta[chatID]
	if !meta.LastMessageAt.IsZero() {
		cur.LastMessageAt = meta.LastMessageAt
	}
	if meta.Model != "" {
		cur.Model = meta.Model
	}
	c.meta[chatID] = cur
}

// reresolveLocked re-runs the configuration cascade. Called on every
// upstream change: chat switch, settings load, catalog load, user change.
func (c *Controller) reresolveLocked() {
	r := Resolve(ResolveInputs{
		ChatSettings: c.chatSettings,
		UserSettings: c.userSettings,
		Catalog:      c.models,
		Defaults:     c.defaults,
	})
	// An empty resolution keeps whatever model was already showing rather
	// than blanking the picker.
	if r.Model != "" {
		c.model = r.Model
	}
	c.temperature = r.Temperature
	c.maxTokens = r.MaxTokens
}

// =============================================================================
// IDENTITY
// =============================================================================

// SetUser installs the authenticated identity. Per-user data (settings,
// chats, meta) still needs its Refresh calls; this only unlocks them.
func (c *Controller) SetUser(user model.User) {
	c.mu.Lock()
	c.user = &user
	if user.Model != "" {
		c.model = user.Model
	}
	_ = c.publish(nil)
}

// ClearUser drops the identity and every piece of per-user state, incognito
// chat included. Mirrors logging out.
func (c *Controller) ClearUser() {
	c.mu.Lock()
	c.user = nil
	c.userSettings = nil
	c.chats = nil
	c.meta = make(map[int64]model.ChatMeta)
	c.cache.Clear()
	c.incognito = nil
	c.incognitoMode = false
	c.activeChat = 0
	c.loadGen++
	c.messages = nil
	c.chatSettings = nil
	c.lastErr = ""
	c.scroll.Reset()
	c.reresolveLocked()
	_ = c.publish(nil)
}

// User returns the current identity, if any.
func (c *Controller) User() (model.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return model.User{}, false
	}
	return *c.user, true
}

// SetDefaults replaces the config-sourced bottom layer of the cascade and
// re-resolves the effective configuration. Used on config hot reload.
func (c *Controller) SetDefaults(d Defaults) {
	c.mu.Lock()
	c.defaults = d
	c.reresolveLocked()
	_ = c.publish(nil)
}

// SetIncognitoMode controls whether an implicitly created chat (first send
// with nothing selected) is incognito.
func (c *Controller) SetIncognitoMode(on bool) {
	c.mu.Lock()
	c.incognitoMode = on
	_ = c.publish(nil)
}

// =============================================================================
// UPSTREAM REFRESHES
// =============================================================================

// RefreshModels reloads the model catalog and re-resolves configuration.
func (c *Controller) RefreshModels(ctx context.Context) error {
	models, err := c.catalog.Models(ctx)
	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	c.models = models
	c.lastErr = ""
	c.reresolveLocked()
	return c.publish(nil)
}

// RefreshUserSettings reloads the persisted per-user defaults.
func (c *Controller) RefreshUserSettings(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		return c.publish(ErrNoUser)
	}
	userID := c.user.ID
	c.mu.Unlock()

	settings, err := c.settings.UserSettings(ctx, userID)
	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	c.userSettings = &settings
	c.lastErr = ""
	c.reresolveLocked()
	return c.publish(nil)
}

// SaveUserSettings persists new per-user defaults and re-resolves.
func (c *Controller) SaveUserSettings(ctx context.Context, settings model.UserSettings) error {
	c.mu.Lock()
	if c.user == nil {
		return c.publish(ErrNoUser)
	}
	userID := c.user.ID
	c.mu.Unlock()

	err := c.settings.SaveUserSettings(ctx, userID, settings)
	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	c.userSettings = &settings
	c.lastErr = ""
	c.reresolveLocked()
	return c.publish(nil)
}

// RefreshChats reloads the chat list and seeds per-chat meta from each
// chat's last message. Meta failures are tolerated per chat; the list
// itself failing is an operation failure.
func (c *Controller) RefreshChats(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		return c.publish(ErrNoUser)
	}
	userID := c.user.ID
	c.mu.Unlock()

	chats, err := c.dir.ListChats(ctx, userID)
	if err != nil {
		c.mu.Lock()
		return c.publish(err)
	}

	type metaEntry struct {
		chatID int64
		at     time.Time
	}
	var entries []metaEntry
	for _, chat := range chats {
		raw, err := c.dir.LastMessage(ctx, chat.ID)
		if err != nil {
			c.log.Warn("failed to fetch last message time", zap.Int64("chat_id", chat.ID), zap.Error(err))
			continue
		}
		if raw == nil {
			continue
		}
		if at := normalize.Timestamp(raw.CreatedAt); !at.IsZero() {
			entries = append(entries, metaEntry{chatID: chat.ID, at: at})
		}
	}

	c.mu.Lock()
	c.chats = chats
	for _, e := range entries {
		c.setMetaLocked(e.chatID, model.ChatMeta{LastMessageAt: e.at})
	}
	c.lastErr = ""
	return c.publish(nil)
}

// =============================================================================
// CHAT SELECTION
// =============================================================================

// SelectChat makes a chat active and loads its messages and settings from
// the cache or, on a miss, from the directory. Concurrent selections are
// last-writer-wins: a fetch that resolves after a newer selection is
// discarded wholesale.
func (c *Controller) SelectChat(ctx context.Context, chatID int64) error {
	c.mu.Lock()
	incog := c.isIncognitoLocked(chatID)
	if c.user == nil && !incog {
		return c.publish(ErrNoUser)
	}

	c.activeChat = chatID
	c.loadGen++
	gen := c.loadGen
	c.lastErr = ""
	c.loading = true

	// The incognito entry is the sole source of truth; there is nothing on
	// the server to fetch, ever.
	if incog {
		entry, _ := c.cache.Get(chatID)
		c.applyChatLocked(entry.Messages, entry.Settings)
		return c.publish(nil)
	}

	// A cache hit short-circuits the network entirely.
	if entry, ok := c.cache.Get(chatID); ok {
		c.applyChatLocked(entry.Messages, entry.Settings)
		return c.publish(nil)
	}
	_ = c.publish(nil) // surface the loading state

	settings, sErr := c.dir.ChatSettings(ctx, chatID)
	raws, mErr := c.dir.Messages(ctx, chatID)

	c.mu.Lock()
	if gen != c.loadGen {
		// A newer selection won while this fetch was in flight.
		c.mu.Unlock()
		return nil
	}
	if sErr != nil || mErr != nil {
		err := sErr
		if err == nil {
			err = mErr
		}
		c.applyChatLocked(nil, nil)
		return c.publish(err)
	}

	msgs := normalize.Messages(raws)
	cs := settings
	c.cache.Put(chatID, msgs, &cs)
	if last, ok := model.LastMessage(msgs); ok {
		c.setMetaLocked(chatID, model.ChatMeta{LastMessageAt: last.Timestamp, Model: cs.Model})
	} else {
		c.setMetaLocked(chatID, model.ChatMeta{Model: cs.Model})
	}
	c.applyChatLocked(msgs, &cs)
	return c.publish(nil)
}

// applyChatLocked installs a chat's data as the active state.
func (c *Controller) applyChatLocked(msgs []model.Message, settings *model.ChatSettings) {
	c.messages = msgs
	c.chatSettings = settings
	c.loading = false
	c.reresolveLocked()
}

// ClearSelection returns to the "no chat selected" state.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.activeChat = 0
	c.loadGen++
	c.messages = nil
	c.chatSettings = nil
	c.reresolveLocked()
	_ = c.publish(nil)
}

// =============================================================================
// CHAT LIFECYCLE
// =============================================================================

// CreateChat creates and selects a chat. A normal chat goes through the
// directory and is prepended to the list; an incognito chat is a purely
// local object that replaces any previous incognito chat.
func (c *Controller) CreateChat(ctx context.Context, title string, incognito bool) (model.Chat, error) {
	c.mu.Lock()
	if c.user == nil {
		return model.Chat{}, c.publish(ErrNoUser)
	}
	c.lastErr = ""

	if incognito {
		chat := c.createIncognitoLocked(title)
		return chat, c.publish(nil)
	}

	userID := c.user.ID
	c.mu.Unlock()

	if title == "" {
		title = "New chat"
	}
	created, err := c.dir.CreateChat(ctx, api.CreateChatRequest{Title: title, UserID: userID})
	c.mu.Lock()
	if err != nil {
		return model.Chat{}, c.publish(err)
	}
	c.adoptChatLocked(created)
	return created, c.publish(nil)
}

// createIncognitoLocked builds the local incognito chat. Only one exists at
// a time; a prior one is discarded without any server traffic.
func (c *Controller) createIncognitoLocked(title string) model.Chat {
	if c.incognito != nil {
		c.cache.Invalidate(c.incognito.ID)
		delete(c.meta, c.incognito.ID)
	}
	if title == "" {
		title = "Incognito chat"
	}
	c.incognitoSeq--
	chat := model.Chat{ID: c.incognitoSeq, Title: title, IsIncognito: true}
	c.incognito = &chat
	c.cache.Put(chat.ID, nil, nil)
	c.selectCreatedLocked(chat.ID)
	return chat
}

// adoptChatLocked registers a freshly created directory chat and selects it.
func (c *Controller) adoptChatLocked(chat model.Chat) {
	c.chats = append([]model.Chat{chat}, c.chats...)
	delete(c.meta, chat.ID)
	c.cache.Put(chat.ID, nil, nil)
	c.selectCreatedLocked(chat.ID)
}

func (c *Controller) selectCreatedLocked(chatID int64) {
	c.activeChat = chatID
	c.loadGen++
	c.messages = nil
	c.chatSettings = nil
	c.reresolveLocked()
}

// RenameChat retitles a chat. Incognito chats rename locally only.
func (c *Controller) RenameChat(ctx context.Context, chatID int64, title string) error {
	c.mu.Lock()
	c.lastErr = ""

	if c.isIncognitoLocked(chatID) {
		c.incognito.Title = title
		return c.publish(nil)
	}
	if c.user == nil {
		return c.publish(ErrNoUser)
	}
	c.mu.Unlock()

	err := c.dir.RenameChat(ctx, chatID, title)
	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	for i := range c.chats {
		if c.chats[i].ID == chatID {
			c.chats[i].Title = title
			break
		}
	}
	return c.publish(nil)
}

// DeleteChat removes a chat and its cache entry. Deleting the active chat
// clears the selection. The incognito chat is dropped without any network
// call.
func (c *Controller) DeleteChat(ctx context.Context, chatID int64) error {
	c.mu.Lock()
	c.lastErr = ""

	if c.isIncognitoLocked(chatID) {
		c.incognito = nil
		c.dropChatLocked(chatID)
		return c.publish(nil)
	}
	if c.user == nil {
		return c.publish(ErrNoUser)
	}
	c.mu.Unlock()

	err := c.dir.DeleteChat(ctx, chatID)
	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	for i := range c.chats {
		if c.chats[i].ID == chatID {
			c.chats = append(c.chats[:i], c.chats[i+1:]...)
			break
		}
	}
	c.dropChatLocked(chatID)
	return c.publish(nil)
}

// dropChatLocked clears cache, meta, and (when active) the selection.
func (c *Controller) dropChatLocked(chatID int64) {
	c.cache.Invalidate(chatID)
	delete(c.meta, chatID)
	if c.activeChat == chatID {
		c.activeChat = 0
		c.loadGen++
		c.messages = nil
		c.chatSettings = nil
		c.reresolveLocked()
	}
}

// DeleteAllChats removes every chat of the user. The fan-out runs against
// the directory's authoritative list, not the local copy.
func (c *Controller) DeleteAllChats(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		return c.publish(ErrNoUser)
	}
	c.lastErr = ""
	userID := c.user.ID
	c.mu.Unlock()

	chats, err := c.dir.ListChats(ctx, userID)
	if err == nil {
		for _, chat := range chats {
			if err = c.dir.DeleteChat(ctx, chat.ID); err != nil {
				break
			}
		}
	}

	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	c.chats = nil
	c.meta = make(map[int64]model.ChatMeta)
	c.cache.Clear()
	c.incognito = nil
	c.activeChat = 0
	c.loadGen++
	c.messages = nil
	c.chatSettings = nil
	c.reresolveLocked()
	return c.publish(nil)
}

// ClearChat empties the active chat's history. For a normal chat the
// directory clears first; for incognito only local state is touched.
func (c *Controller) ClearChat(ctx context.Context) error {
	c.mu.Lock()
	chatID := c.activeChat
	if chatID == 0 {
		return c.publish(ErrNoActiveChat)
	}
	c.lastErr = ""

	if c.isIncognitoLocked(chatID) {
		c.messages = nil
		c.cache.PutMessages(chatID, nil)
		return c.publish(nil)
	}
	c.mu.Unlock()

	err := c.dir.ClearChat(ctx, chatID)
	c.mu.Lock()
	if err != nil {
		return c.publish(err)
	}
	if c.activeChat == chatID {
		c.messages = nil
	}
	c.cache.PutMessages(chatID, nil)
	cur := c.meta[chatID]
	cur.LastMessageAt = time.Time{}
	c.meta[chatID] = cur
	return c.publish(nil)
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessage performs an optimistic send: the user message is appended and
// published before the request goes out, so the UI reflects the send
// synchronously with the user action. The assistant reply is appended only
// on success; on failure the user's message stays and the error is
// surfaced. Sends are serialized; a second send while one is in flight is
// rejected.
func (c *Controller) SendMessage(ctx context.Context, text string, images []string) error {
	c.mu.Lock()
	if c.sending {
		return c.publish(ErrSendInFlight)
	}
	if strings.TrimSpace(text) == "" && len(images) == 0 {
		return c.publish(ErrEmptyMessage)
	}
	incogActive := c.isIncognitoLocked(c.activeChat)
	if c.user == nil && !incogActive && !c.incognitoMode {
		return c.publish(ErrNoUser)
	}

	c.sending = true
	c.lastErr = ""

	chatID := c.activeChat
	if chatID == 0 && c.incognitoMode {
		chat := c.createIncognitoLocked(implicitTitle(text, "Incognito chat"))
		chatID = chat.ID
	}
	var userID int64
	if c.user != nil {
		userID = c.user.ID
	}
	c.mu.Unlock()

	// Implicit chat creation: first send with nothing selected.
	if chatID == 0 {
		created, err := c.dir.CreateChat(ctx, api.CreateChatRequest{
			Title:  implicitTitle(text, "New chat"),
			UserID: userID,
		})
		c.mu.Lock()
		if err != nil {
			c.sending = false
			return c.publish(err)
		}
		c.adoptChatLocked(created)
		chatID = created.ID
		c.mu.Unlock()
	}

	previews := make([]string, len(images))
	for i, img := range images {
		previews[i] = normalize.ToDataURI(img)
	}

	c.mu.Lock()
	optimistic := model.NewOptimisticMessage(text, previews)
	// The base transcript must belong to the originating chat: a chat
	// switch may have replaced c.messages while the lock was released,
	// and during a pending load c.messages still holds the previous chat.
	live := c.activeChat == chatID && !c.loading
	base := c.messages
	if !live {
		entry, _ := c.cache.Get(chatID)
		base = entry.Messages
	}
	next := append(append([]model.Message(nil), base...), optimistic)
	if live {
		c.messages = next
	}
	incog := c.isIncognitoLocked(chatID)
	_ = c.publish(nil)

	// An incognito chat is unknown to the server; its sends go out without
	// a chat ID so nothing is persisted.
	sendID := chatID
	if incog {
		sendID = 0
	}

	resp, err := c.dir.Send(ctx, api.SendMessageRequest{
		ChatID:       sendID,
		UserID:       userID,
		Text:         text,
		Base64Images: images,
	})

	c.mu.Lock()
	c.sending = false
	if err != nil {
		return c.publish(err)
	}

	reply := normalize.Message(resp.AIMessage, len(next))
	updated := append(append([]model.Message(nil), next...), reply)

	entry, _ := c.cache.Get(chatID)
	settings := entry.Settings
	if settings == nil && c.activeChat == chatID && !c.loading {
		settings = c.chatSettings
	}
	c.cache.Put(chatID, updated, settings)

	if c.activeChat == chatID && !c.loading {
		c.messages = updated
	}
	at := reply.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	c.setMetaLocked(chatID, model.ChatMeta{LastMessageAt: at})
	return c.publish(nil)
}

// implicitTitle derives a chat title from the first message.
func implicitTitle(text, fallback string) string {
	title := util.TruncateRunesNoEllipsis(strings.TrimSpace(text), implicitTitleRunes)
	if title == "" {
		return fallback
	}
	return title
}

// =============================================================================
// GENERATION SETTINGS
// =============================================================================

// ChangeModel switches the active model and, when a normal chat is active,
// persists it to the chat's settings.
func (c *Controller) ChangeModel(ctx context.Context, name string) error {
	c.mu.Lock()
	c.lastErr = ""
	c.model = name
	if c.activeChat == 0 {
		return c.publish(nil)
	}
	return c.persistChatSettingsLocked(ctx)
}

// ChangeAdvancedSettings updates temperature and token limit and, when a
// normal chat is active, persists them.
func (c *Controller) ChangeAdvancedSettings(ctx context.Context, temperature float64, maxTokens int) error {
	c.mu.Lock()
	if temperature < 0 || temperature > 2 {
		return c.publish(ErrBadTemperature)
	}
	if maxTokens <= 0 {
		return c.publish(ErrBadMaxTokens)
	}
	c.lastErr = ""
	c.temperature = temperature
	c.maxTokens = maxTokens
	if c.activeChat == 0 {
		return c.publish(nil)
	}
	return c.persistChatSettingsLocked(ctx)
}

// persistChatSettingsLocked writes the current resolved settings back to
// the directory (for a normal chat) and into the cache entry (always).
// Called with the lock held; publishes before returning.
func (c *Controller) persistChatSettingsLocked(ctx context.Context) error {
	chatID := c.activeChat
	dto := model.ChatSettings{
		ChatID:      chatID,
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if c.chatSettings != nil {
		dto.ID = c.chatSettings.ID
	}

	if !c.isIncognitoLocked(chatID) {
		c.mu.Unlock()
		err := c.dir.SaveChatSettings(ctx, dto)
		c.mu.Lock()
		if err != nil {
			if !isCycleWarning(err) {
				return c.publish(err)
			}
			// Narrow workaround: the backend serializer sometimes trips over
			// its own object graph and reports a cycle even though the
			// settings were acceptable. Treat it as a warning and keep the
			// local update.
			c.log.Warn("chat settings save reported a cycle, keeping local state", zap.Error(err))
		}
	}

	cs := dto
	c.cache.PutSettings(chatID, &cs)
	if c.activeChat == chatID {
		c.chatSettings = &cs
	}
	c.setMetaLocked(chatID, model.ChatMeta{Model: cs.Model})
	return c.publish(nil)
}

// isCycleWarning identifies the non-fatal settings-save rejection.
func isCycleWarning(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "cycle")
}

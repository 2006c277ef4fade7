// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive chat REPL for the chatai client.
//
// Reads input with history support, dispatches slash commands, and routes
// plain text through the session controller as chat messages.
//
// Interactive commands:
//   /help               Show available commands
//   /login NAME         Sign in (prompts for password)
//   /register NAME      Create an account (prompts for password)
//   /logout             Sign out and drop all local state
//   /account rename N   Change the account login
//   /account delete     Delete the account
//   /chats              List chats
//   /select ID          Open a chat
//   /new [TITLE]        Create a chat
//   /incognito [on|off] Toggle incognito mode, or start an incognito chat
//   /rename ID TITLE    Rename a chat
//   /delete ID          Delete a chat
//   /deleteall          Delete every chat
//   /clear              Clear the active chat's messages
//   /model [NAME]       Show or switch the model
//   /models             List available models
//   /settings [T N]     Show or set temperature and max tokens
//   /attach FILE        Attach an image to the next message
//   /export [md|json]   Export the active chat to a file
//   /archive            List archived transcripts
//   /search QUERY       Full-text search the local archive
//   /status             Show session status
//   /quit               Exit
//   Ctrl+C              Cancel the operation in flight
//   Ctrl+D              Exit

package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/chatai-client/internal/api"
	"github.com/jeranaias/chatai-client/internal/archive"
	"github.com/jeranaias/chatai-client/internal/config"
	"github.com/jeranaias/chatai-client/internal/export"
	"github.com/jeranaias/chatai-client/internal/session"
	"github.com/jeranaias/chatai-client/internal/util"
)

// =============================================================================
// REPL SESSION
// =============================================================================

// Repl holds the state of one interactive session.
type Repl struct {
	cfg        *config.Config
	client     *api.Client
	controller *session.Controller
	archive    *archive.Archive
	log        *zap.Logger

	input *Input
	view  *TranscriptView

	// pendingImages are base64 payloads queued by /attach for the next send.
	pendingImages []string

	// reloaded holds a hot-reloaded config until the REPL goroutine picks
	// it up between prompts.
	reloaded atomic.Pointer[config.Config]

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// Options configure a Repl.
type Options struct {
	Config     *config.Config
	Client     *api.Client
	Controller *session.Controller
	Archive    *archive.Archive // nil disables archive commands
	Logger     *zap.Logger
}

// NewRepl creates a Repl and hooks the controller's change stream into the
// transcript view.
func NewRepl(opts Options) *Repl {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Repl{
		cfg:        opts.Config,
		client:     opts.Client,
		controller: opts.Controller,
		archive:    opts.Archive,
		log:        log,
		input:      NewInput(opts.Config.UI.HistoryFile),
		view:       NewTranscriptView(opts.Config.UI.RenderMarkdown),
	}
	ApplyTheme(opts.Config.UI.Theme)
	configureMarkdown(opts.Config.UI.Theme)
	r.controller.SetOnChange(r.view.Apply)
	return r
}

// ApplyConfig schedules a reloaded config. It takes effect on the REPL
// goroutine before the next prompt; safe to call from any goroutine.
func (r *Repl) ApplyConfig(cfg *config.Config) {
	r.reloaded.Store(cfg)
}

// applyPendingConfig applies a hot-reloaded config. Transport settings need
// a restart; everything presentation- and default-related applies live.
func (r *Repl) applyPendingConfig() {
	updated := r.reloaded.Swap(nil)
	if updated == nil {
		return
	}

	if updated.UI.Theme != r.cfg.UI.Theme {
		ApplyTheme(updated.UI.Theme)
		configureMarkdown(updated.UI.Theme)
	}
	r.view.SetMarkdown(updated.UI.RenderMarkdown)
	if updated.Chat.IncognitoByDefault != r.cfg.Chat.IncognitoByDefault {
		r.controller.SetIncognitoMode(updated.Chat.IncognitoByDefault)
	}
	r.controller.SetDefaults(session.Defaults{
		Model:       updated.Chat.DefaultModel,
		Temperature: updated.Chat.Temperature,
		MaxTokens:   updated.Chat.MaxTokens,
	})

	r.cfg.Chat = updated.Chat
	r.cfg.UI = updated.UI
	r.cfg.Export = updated.Export
	fmt.Println(infoStyle.Render("Configuration reloaded."))
}

// Run drives the REPL until the user exits. Blocks.
func (r *Repl) Run() error {
	defer r.input.Close()

	// Verify the backend is reachable before dropping into the loop.
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Backend.Timeout())
	version, err := r.client.Version(ctx)
	cancel()
	if err != nil {
		if api.IsUnreachable(err) {
			return fmt.Errorf("backend is not running at %s: %w", r.client.BaseURL(), err)
		}
		return fmt.Errorf("backend check failed: %w", err)
	}

	r.printWelcome(version)

	// First Ctrl+C cancels the operation in flight rather than exiting.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			r.cancelMu.Lock()
			if r.cancel != nil {
				r.cancel()
				r.cancel = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
			r.cancelMu.Unlock()
		}
	}()

	for {
		r.applyPendingConfig()

		input, err := r.input.ReadLine(promptStyle.Render("chatai> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C at an empty prompt; EOF is
			// Ctrl+D. Both exit cleanly.
			if err != liner.ErrPromptAborted {
				fmt.Println()
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := r.dispatch(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := r.sendMessage(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

func (r *Repl) printWelcome(version string) {
	fmt.Println(welcomeStyle.Render("chatai " + version))
	fmt.Println(infoStyle.Render("Type a message to chat, /help for commands, /quit to exit."))
	if _, ok := r.controller.User(); !ok {
		fmt.Println(infoStyle.Render("Sign in with /login to access your chats."))
	}
	fmt.Println()
}

// opCtx returns a cancellable context registered as the in-flight operation.
func (r *Repl) opCtx(send bool) (context.Context, context.CancelFunc) {
	timeout := r.cfg.Backend.Timeout()
	if send {
		timeout = r.cfg.Backend.SendTimeout()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	r.cancelMu.Lock()
	r.cancel = cancel
	r.cancelMu.Unlock()

	return ctx, func() {
		r.cancelMu.Lock()
		r.cancel = nil
		r.cancelMu.Unlock()
		cancel()
	}
}

// =============================================================================
// MESSAGE SENDING
// =============================================================================

func (r *Repl) sendMessage(text string) error {
	ctx, done := r.opCtx(true)
	defer done()

	images := r.pendingImages
	r.pendingImages = nil

	if err := r.controller.SendMessage(ctx, text, images); err != nil {
		return err
	}
	r.archiveActive()
	return nil
}

// archiveActive snapshots the active chat into the local archive. Failures
// are logged, never surfaced; the archive is best effort.
func (r *Repl) archiveActive() {
	if r.archive == nil {
		return
	}
	snap := r.controller.Snapshot()
	chat, ok := snap.ActiveChat()
	if !ok || chat.IsIncognito {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Backend.Timeout())
	defer cancel()
	if err := r.archive.SaveTranscript(ctx, chat, snap.Messages); err != nil {
		r.log.Warn("archive save failed", zap.Int64("chatID", chat.ID), zap.Error(err))
	}
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// dispatch handles a slash command. The bool reports whether the loop
// should continue.
func (r *Repl) dispatch(input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help", "/h":
		r.cmdHelp()
		return true, nil
	case "/quit", "/q", "/exit":
		return false, nil
	case "/login":
		return true, r.cmdLogin(args, false)
	case "/register":
		return true, r.cmdLogin(args, true)
	case "/logout":
		r.controller.ClearUser()
		fmt.Println(successStyle.Render("Signed out."))
		return true, nil
	case "/account":
		return true, r.cmdAccount(args)
	case "/chats":
		return true, r.cmdChats()
	case "/select":
		return true, r.cmdSelect(args)
	case "/new":
		return true, r.cmdNew(args, false)
	case "/incognito":
		return true, r.cmdIncognito(args)
	case "/rename":
		return true, r.cmdRename(args)
	case "/delete":
		return true, r.cmdDelete(args)
	case "/deleteall":
		return true, r.cmdDeleteAll()
	case "/clear":
		ctx, done := r.opCtx(false)
		defer done()
		return true, r.controller.ClearChat(ctx)
	case "/model":
		return true, r.cmdModel(args)
	case "/models":
		return true, r.cmdModels()
	case "/settings":
		return true, r.cmdSettings(args)
	case "/attach":
		return true, r.cmdAttach(args)
	case "/export":
		return true, r.cmdExport(args)
	case "/archive":
		return true, r.cmdArchive()
	case "/search":
		return true, r.cmdSearch(args)
	case "/status", "/s":
		r.cmdStatus()
		return true, nil
	default:
		return true, fmt.Errorf("unknown command %s, try /help", cmd)
	}
}

func (r *Repl) cmdHelp() {
	rows := [][2]string{
		{"/login NAME", "sign in (prompts for password)"},
		{"/register NAME", "create an account"},
		{"/logout", "sign out"},
		{"/account rename N", "change the account login"},
		{"/account delete", "delete the account"},
		{"/chats", "list chats"},
		{"/select ID", "open a chat"},
		{"/new [TITLE]", "create a chat"},
		{"/incognito [on|off]", "toggle incognito mode or start an incognito chat"},
		{"/rename ID TITLE", "rename a chat"},
		{"/delete ID", "delete a chat"},
		{"/deleteall", "delete every chat"},
		{"/clear", "clear the active chat"},
		{"/model [NAME]", "show or switch the model"},
		{"/models", "list available models"},
		{"/settings [T N]", "show or set temperature and max tokens"},
		{"/attach FILE", "attach an image to the next message"},
		{"/export [md|json]", "export the active chat"},
		{"/archive", "list archived transcripts"},
		{"/search QUERY", "search the local archive"},
		{"/status", "show session status"},
		{"/quit", "exit"},
	}
	fmt.Println(welcomeStyle.Render("Commands"))
	for _, row := range rows {
		fmt.Printf("  %s %s\n",
			commandStyle.Render(util.PadRight(row[0], 22)),
			infoStyle.Render(row[1]))
	}
}

// =============================================================================
// AUTH COMMANDS
// =============================================================================

func (r *Repl) cmdLogin(args []string, register bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /login NAME")
	}
	login := args[0]

	fmt.Print(infoStyle.Render("Password: "))
	password, err := ReadPassword()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	ctx, done := r.opCtx(false)
	defer done()

	authenticate := r.client.Login
	if register {
		authenticate = r.client.Register
	}
	u, err := authenticate(ctx, login, password)
	if err != nil {
		return err
	}

	r.controller.SetUser(u)
	if err := r.controller.RefreshModels(ctx); err != nil {
		r.log.Warn("model catalog refresh failed", zap.Error(err))
	}
	if err := r.controller.RefreshUserSettings(ctx); err != nil {
		r.log.Warn("user settings refresh failed", zap.Error(err))
	}
	if err := r.controller.RefreshChats(ctx); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("Signed in as " + u.Login + "."))
	return r.cmdChats()
}

func (r *Repl) cmdAccount(args []string) error {
	user, ok := r.controller.User()
	if !ok {
		return fmt.Errorf("sign in first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: /account rename NEWLOGIN | /account delete")
	}

	switch strings.ToLower(args[0]) {
	case "rename":
		if len(args) != 2 {
			return fmt.Errorf("usage: /account rename NEWLOGIN")
		}
		ctx, done := r.opCtx(false)
		defer done()
		if err := r.client.UpdateLogin(ctx, user.ID, args[1]); err != nil {
			return err
		}
		user.Login = args[1]
		r.controller.SetUser(user)
		fmt.Println(successStyle.Render("Login changed to " + user.Login + "."))
		return nil
	case "delete":
		confirm, err := r.input.ReadLine(warningStyle.Render("Delete the account and all its chats? Type yes to confirm: "))
		if err != nil || !strings.EqualFold(strings.TrimSpace(confirm), "yes") {
			fmt.Println(infoStyle.Render("Aborted."))
			return nil
		}
		ctx, done := r.opCtx(false)
		defer done()
		if err := r.client.DeleteUser(ctx, user.ID); err != nil {
			return err
		}
		r.controller.ClearUser()
		fmt.Println(successStyle.Render("Account deleted."))
		return nil
	default:
		return fmt.Errorf("usage: /account rename NEWLOGIN | /account delete")
	}
}

// =============================================================================
// CHAT COMMANDS
// =============================================================================

func (r *Repl) cmdChats() error {
	snap := r.controller.Snapshot()
	if len(snap.Chats) == 0 {
		fmt.Println(infoStyle.Render("No chats. Start one with /new or just type a message."))
		return nil
	}
	for _, chat := range snap.Chats {
		marker := "  "
		if chat.ID == snap.ActiveChatID {
			marker = commandStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%4d  %s", marker, chat.ID, util.TruncateRunes(chat.Title, 50))
		if chat.IsIncognito {
			line += " " + warningStyle.Render("(incognito)")
		}
		if !chat.LastMessageAt.IsZero() {
			line += " " + infoStyle.Render(chat.LastMessageAt.Format("2006-01-02 15:04"))
		}
		fmt.Println(line)
	}
	return nil
}

func (r *Repl) cmdSelect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /select ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q", args[0])
	}
	ctx, done := r.opCtx(false)
	defer done()
	return r.controller.SelectChat(ctx, id)
}

func (r *Repl) cmdNew(args []string, incognito bool) error {
	title := strings.Join(args, " ")
	ctx, done := r.opCtx(false)
	defer done()
	_, err := r.controller.CreateChat(ctx, title, incognito)
	return err
}

func (r *Repl) cmdIncognito(args []string) error {
	if len(args) == 0 {
		// Bare /incognito starts an incognito chat immediately.
		return r.cmdNew(nil, true)
	}
	switch strings.ToLower(args[0]) {
	case "on":
		r.controller.SetIncognitoMode(true)
		fmt.Println(warningStyle.Render("Incognito mode on: new chats stay local and are never archived."))
	case "off":
		r.controller.SetIncognitoMode(false)
		fmt.Println(infoStyle.Render("Incognito mode off."))
	default:
		return fmt.Errorf("usage: /incognito [on|off]")
	}
	return nil
}

func (r *Repl) cmdRename(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: /rename ID TITLE")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q", args[0])
	}
	ctx, done := r.opCtx(false)
	defer done()
	return r.controller.RenameChat(ctx, id, strings.Join(args[1:], " "))
}

func (r *Repl) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /delete ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q", args[0])
	}
	ctx, done := r.opCtx(false)
	defer done()
	if err := r.controller.DeleteChat(ctx, id); err != nil {
		return err
	}
	if r.archive != nil && id > 0 {
		if err := r.archive.Delete(context.Background(), id); err != nil {
			r.log.Warn("archive delete failed", zap.Int64("chatID", id), zap.Error(err))
		}
	}
	return nil
}

func (r *Repl) cmdDeleteAll() error {
	confirm, err := r.input.ReadLine(warningStyle.Render("Delete ALL chats? Type yes to confirm: "))
	if err != nil || !strings.EqualFold(strings.TrimSpace(confirm), "yes") {
		fmt.Println(infoStyle.Render("Aborted."))
		return nil
	}
	ctx, done := r.opCtx(false)
	defer done()
	return r.controller.DeleteAllChats(ctx)
}

// =============================================================================
// MODEL AND SETTINGS COMMANDS
// =============================================================================

func (r *Repl) cmdModel(args []string) error {
	snap := r.controller.Snapshot()
	if len(args) == 0 {
		if snap.Model == "" {
			fmt.Println(infoStyle.Render("No model resolved yet."))
		} else {
			fmt.Println(infoStyle.Render("Model: ") + commandStyle.Render(snap.Model))
		}
		return nil
	}
	ctx, done := r.opCtx(false)
	defer done()
	return r.controller.ChangeModel(ctx, args[0])
}

func (r *Repl) cmdModels() error {
	snap := r.controller.Snapshot()
	if len(snap.Models) == 0 {
		ctx, done := r.opCtx(false)
		defer done()
		if err := r.controller.RefreshModels(ctx); err != nil {
			return err
		}
		snap = r.controller.Snapshot()
	}
	if len(snap.Models) == 0 {
		fmt.Println(infoStyle.Render("The backend reports no models."))
		return nil
	}
	for _, m := range snap.Models {
		marker := "  "
		if m.Name == snap.Model {
			marker = commandStyle.Render("> ")
		}
		fmt.Println(marker + m.Label())
	}
	return nil
}

func (r *Repl) cmdSettings(args []string) error {
	snap := r.controller.Snapshot()
	if len(args) == 0 {
		fmt.Printf("%s temperature=%.2f maxTokens=%d\n",
			infoStyle.Render("Settings:"), snap.Temperature, snap.MaxTokens)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: /settings TEMPERATURE MAX_TOKENS")
	}
	temp, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad temperature %q", args[0])
	}
	tokens, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad max tokens %q", args[1])
	}
	ctx, done := r.opCtx(false)
	defer done()
	return r.controller.ChangeAdvancedSettings(ctx, temp, tokens)
}

// =============================================================================
// ATTACHMENTS, EXPORT, SEARCH
// =============================================================================

func (r *Repl) cmdAttach(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /attach FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	r.pendingImages = append(r.pendingImages, base64.StdEncoding.EncodeToString(data))
	fmt.Println(successStyle.Render(fmt.Sprintf("Attached %s (%d image(s) queued).", args[0], len(r.pendingImages))))
	return nil
}

func (r *Repl) cmdExport(args []string) error {
	snap := r.controller.Snapshot()
	chat, ok := snap.ActiveChat()
	if !ok {
		return fmt.Errorf("no chat selected")
	}

	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	opts := export.DefaultOptions()
	if r.cfg.Export.Dir != "" {
		opts.OutputDir = r.cfg.Export.Dir
	}

	var path string
	var err error
	switch format {
	case "md", "markdown":
		path, err = export.Markdown(chat, snap.Messages, opts)
	case "json":
		path, err = export.JSON(chat, snap.Messages, opts)
	default:
		return fmt.Errorf("unknown format %q, use md or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Exported to " + path))
	return nil
}

func (r *Repl) cmdArchive() error {
	if r.archive == nil {
		return fmt.Errorf("archive is disabled in the configuration")
	}
	ctx, done := r.opCtx(false)
	defer done()

	chats, err := r.archive.Chats(ctx)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println(infoStyle.Render("Archive is empty."))
		return nil
	}
	for _, chat := range chats {
		line := fmt.Sprintf("  %4d  %s", chat.ID, util.TruncateRunes(chat.Title, 50))
		if !chat.LastMessageAt.IsZero() {
			line += " " + infoStyle.Render(chat.LastMessageAt.Format("2006-01-02 15:04"))
		}
		fmt.Println(line)
	}
	return nil
}

func (r *Repl) cmdSearch(args []string) error {
	if r.archive == nil {
		return fmt.Errorf("archive is disabled in the configuration")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: /search QUERY")
	}
	ctx, done := r.opCtx(false)
	defer done()

	results, err := r.archive.Search(ctx, strings.Join(args, " "), 20)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println(infoStyle.Render("No matches."))
		return nil
	}
	for _, res := range results {
		fmt.Printf("%s %s %s\n",
			commandStyle.Render(fmt.Sprintf("[%d]", res.ChatID)),
			infoStyle.Render(util.TruncateRunes(res.Title, 30)),
			util.TruncateRunes(strings.ReplaceAll(res.Content, "\n", " "), 80))
	}
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

func (r *Repl) cmdStatus() {
	snap := r.controller.Snapshot()

	fmt.Println(welcomeStyle.Render("Session"))
	if user, ok := r.controller.User(); ok {
		fmt.Println(infoStyle.Render("  user:        ") + user.Login)
	} else {
		fmt.Println(infoStyle.Render("  user:        ") + "(signed out)")
	}
	fmt.Println(infoStyle.Render("  backend:     ") + r.client.BaseURL())
	fmt.Println(infoStyle.Render("  chats:       ") + strconv.Itoa(len(snap.Chats)))
	if chat, ok := snap.ActiveChat(); ok {
		fmt.Println(infoStyle.Render("  active:      ") + chat.Title)
	}
	fmt.Println(infoStyle.Render("  model:       ") + snap.Model)
	fmt.Printf("%s temperature=%.2f maxTokens=%d\n", infoStyle.Render("  generation: "), snap.Temperature, snap.MaxTokens)
	if snap.IsIncognito {
		fmt.Println(warningStyle.Render("  incognito:   active"))
	}
	if r.archive != nil {
		if stats, err := r.archive.Stats(context.Background()); err == nil {
			fmt.Println(infoStyle.Render("  archive:     ") +
				fmt.Sprintf("%d chat(s), %d message(s)", stats.Chats, stats.Messages))
		}
	}
	cache := r.controller.Cache().Stats()
	fmt.Println(infoStyle.Render("  cache:       ") +
		fmt.Sprintf("%d entry(ies), %d hit(s), %d miss(es)", cache.Entries, cache.Hits, cache.Misses))
}

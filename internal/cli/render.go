// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Transcript rendering for the REPL.
//
// Session snapshots carry a viewport decision (snap, smooth, none); the
// terminal analogue is reprinting the whole transcript versus appending
// only the new tail.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatai-client/internal/model"
	"github.com/jeranaias/chatai-client/internal/session"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders assistant replies with formatting and syntax
// highlighting. Nil when initialization failed; rendering then falls back
// to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// configureMarkdown rebuilds the renderer for an explicit theme. "auto"
// (or anything else) keeps terminal background detection. A failed rebuild
// keeps the previous renderer.
func configureMarkdown(theme string) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(TerminalWidth())}
	switch theme {
	case "dark", "light":
		opts = append(opts, glamour.WithStandardStyle(theme))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	if r, err := glamour.NewTermRenderer(opts...); err == nil {
		markdownRenderer = r
	}
}

// renderMarkdown renders markdown for terminal display, returning the
// original content when rendering is unavailable or fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// TRANSCRIPT VIEW
// =============================================================================

// TranscriptView prints session snapshots to stdout. It remembers how much
// of the active transcript has been printed so that appends only emit the
// new tail while chat switches reprint from the top.
type TranscriptView struct {
	out      io.Writer
	markdown bool

	lastChatID int64
	printed    int
}

// NewTranscriptView creates a view. Markdown rendering applies to assistant
// messages only and is suppressed on non-TTY output regardless of enabled.
func NewTranscriptView(markdown bool) *TranscriptView {
	return &TranscriptView{out: os.Stdout, markdown: markdown && IsStdoutTTY()}
}

// SetMarkdown toggles markdown rendering; used on config hot reload.
func (v *TranscriptView) SetMarkdown(enabled bool) {
	v.markdown = enabled && IsStdoutTTY()
}

// Apply prints whatever the snapshot's scroll decision calls for.
func (v *TranscriptView) Apply(snap session.Snapshot) {
	switch snap.Scroll {
	case session.ScrollSnap:
		v.printAll(snap)
	case session.ScrollSmooth:
		v.printTail(snap)
	}

	if snap.ActiveChatID != v.lastChatID {
		v.lastChatID = snap.ActiveChatID
	}

	if snap.Err != "" {
		fmt.Fprintln(v.out, errorStyle.Render("[Error] ")+snap.Err)
	}
}

func (v *TranscriptView) printAll(snap session.Snapshot) {
	fmt.Fprintln(v.out)
	if chat, ok := snap.ActiveChat(); ok {
		header := chat.Title
		if chat.IsIncognito {
			header += " (incognito)"
		}
		fmt.Fprintln(v.out, welcomeStyle.Render("=== "+header+" ==="))
		fmt.Fprintln(v.out)
	}
	for _, msg := range snap.Messages {
		v.printMessage(msg)
	}
	v.printed = len(snap.Messages)
}

func (v *TranscriptView) printTail(snap session.Snapshot) {
	start := v.printed
	if snap.ActiveChatID != v.lastChatID || start > len(snap.Messages) {
		start = 0
	}
	for _, msg := range snap.Messages[start:] {
		v.printMessage(msg)
	}
	v.printed = len(snap.Messages)
}

func (v *TranscriptView) printMessage(msg model.Message) {
	label := msg.Author
	if label == "" {
		label = msg.Role.DefaultAuthor()
	}

	style := userLabelStyle
	if msg.Role == model.RoleAssistant {
		style = assistantLabelStyle
	}

	header := style.Render(label)
	if !msg.Timestamp.IsZero() {
		header += " " + infoStyle.Render(msg.Timestamp.Format("15:04:05"))
	}
	if msg.IsOptimistic() {
		header += " " + pendingStyle.Render("(sending)")
	}
	fmt.Fprintln(v.out, header)

	content := strings.TrimRight(msg.Content, "\n")
	if v.markdown && msg.Role == model.RoleAssistant {
		fmt.Fprint(v.out, renderMarkdown(content))
	} else {
		fmt.Fprintln(v.out, content)
	}

	if len(msg.Images) > 0 {
		fmt.Fprintln(v.out, infoStyle.Render(fmt.Sprintf("[%d attached image(s)]", len(msg.Images))))
	}
	fmt.Fprintln(v.out)
}

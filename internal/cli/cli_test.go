// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatai-client/internal/config"
	"github.com/jeranaias/chatai-client/internal/model"
	"github.com/jeranaias/chatai-client/internal/session"
)

// =============================================================================
// COLOR CONTROL TESTS
// =============================================================================

func TestColorsEnabledEnvOverrides(t *testing.T) {
	t.Setenv("FORCE_COLOR", "")
	t.Setenv("NO_COLOR", "1")
	if ColorsEnabled() {
		t.Error("NO_COLOR should disable colors")
	}

	t.Setenv("FORCE_COLOR", "1")
	if !ColorsEnabled() {
		t.Error("FORCE_COLOR should win over NO_COLOR")
	}
}

// =============================================================================
// TRANSCRIPT VIEW TESTS
// =============================================================================

func testView(buf *bytes.Buffer) *TranscriptView {
	return &TranscriptView{out: buf}
}

func msg(id, content string, role model.Role) model.Message {
	return model.Message{ID: id, Role: role, Content: content, Timestamp: time.Now()}
}

func TestViewSnapPrintsWholeTranscript(t *testing.T) {
	var buf bytes.Buffer
	v := testView(&buf)

	v.Apply(session.Snapshot{
		ActiveChatID: 1,
		Chats:        []model.Chat{{ID: 1, Title: "hiking"}},
		Messages: []model.Message{
			msg("m1", "first", model.RoleUser),
			msg("m2", "second", model.RoleAssistant),
		},
		Scroll: session.ScrollSnap,
	})

	out := buf.String()
	for _, want := range []string{"hiking", "first", "second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestViewSmoothPrintsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	v := testView(&buf)

	base := session.Snapshot{
		ActiveChatID: 1,
		Chats:        []model.Chat{{ID: 1, Title: "hiking"}},
		Messages:     []model.Message{msg("m1", "first", model.RoleUser)},
		Scroll:       session.ScrollSnap,
	}
	v.Apply(base)
	buf.Reset()

	base.Messages = append(base.Messages, msg("m2", "second", model.RoleAssistant))
	base.Scroll = session.ScrollSmooth
	v.Apply(base)

	out := buf.String()
	if strings.Contains(out, "first") {
		t.Errorf("tail print repeated old message:\n%s", out)
	}
	if !strings.Contains(out, "second") {
		t.Errorf("tail print missing new message:\n%s", out)
	}
}

func TestViewNonePrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	v := testView(&buf)

	v.Apply(session.Snapshot{
		ActiveChatID: 1,
		Messages:     []model.Message{msg("m1", "first", model.RoleUser)},
		Scroll:       session.ScrollNone,
	})
	if buf.Len() != 0 {
		t.Errorf("ScrollNone produced output:\n%s", buf.String())
	}
}

func TestViewReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	v := testView(&buf)

	v.Apply(session.Snapshot{Err: "boom", Scroll: session.ScrollNone})
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("error not surfaced:\n%s", buf.String())
	}
}

func TestViewIncognitoHeader(t *testing.T) {
	var buf bytes.Buffer
	v := testView(&buf)

	v.Apply(session.Snapshot{
		ActiveChatID: -1,
		IsIncognito:  true,
		Chats:        []model.Chat{{ID: -1, Title: "secret", IsIncognito: true}},
		Messages:     []model.Message{msg("m1", "hi", model.RoleUser)},
		Scroll:       session.ScrollSnap,
	})
	if !strings.Contains(buf.String(), "(incognito)") {
		t.Errorf("incognito marker missing:\n%s", buf.String())
	}
}

func TestViewOptimisticMarker(t *testing.T) {
	var buf bytes.Buffer
	v := testView(&buf)

	v.Apply(session.Snapshot{
		ActiveChatID: 1,
		Messages:     []model.Message{{ID: model.LocalIDPrefix + "x", Role: model.RoleUser, Content: "hi"}},
		Scroll:       session.ScrollSnap,
	})
	if !strings.Contains(buf.String(), "(sending)") {
		t.Errorf("optimistic marker missing:\n%s", buf.String())
	}
}

// =============================================================================
// THEME AND RELOAD TESTS
// =============================================================================

func TestApplyThemeForcesBackground(t *testing.T) {
	was := lipgloss.HasDarkBackground()
	defer lipgloss.SetHasDarkBackground(was)

	ApplyTheme("light")
	if lipgloss.HasDarkBackground() {
		t.Error("light theme should force a light background")
	}
	ApplyTheme("dark")
	if !lipgloss.HasDarkBackground() {
		t.Error("dark theme should force a dark background")
	}
}

func TestApplyConfigReachesController(t *testing.T) {
	var buf bytes.Buffer
	controller := session.New(session.Config{})
	r := &Repl{
		cfg:        config.Default(),
		controller: controller,
		view:       testView(&buf),
	}

	updated := config.Default()
	updated.Chat.DefaultModel = "configured"
	updated.Chat.Temperature = 0.4
	updated.Chat.MaxTokens = 256
	updated.Export.Dir = "/tmp/exports"

	r.ApplyConfig(updated)
	r.applyPendingConfig()

	snap := controller.Snapshot()
	if snap.Model != "configured" || snap.Temperature != 0.4 || snap.MaxTokens != 256 {
		t.Errorf("defaults not applied: model=%q temp=%v max=%d", snap.Model, snap.Temperature, snap.MaxTokens)
	}
	if r.cfg.Export.Dir != "/tmp/exports" {
		t.Errorf("Export.Dir = %q, want /tmp/exports", r.cfg.Export.Dir)
	}

	// A second pass with nothing pending is a no-op.
	r.applyPendingConfig()
}

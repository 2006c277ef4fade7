// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// SCROLL HEURISTIC TESTS
// =============================================================================

func msg(id, content string) model.Message {
	return model.Message{ID: id, Role: model.RoleUser, Content: content}
}

func TestScrollInitialLoadSnaps(t *testing.T) {
	var tr ScrollTracker

	history := []model.Message{msg("1", "a"), msg("2", "b")}
	if got := tr.Observe(10, history); got != ScrollSnap {
		t.Errorf("initial history load = %v, want snap", got)
	}
	if got := tr.Observe(10, history); got != ScrollNone {
		t.Errorf("unchanged list = %v, want none", got)
	}
}

func TestScrollChatSwitchSnaps(t *testing.T) {
	var tr ScrollTracker

	tr.Observe(10, []model.Message{msg("1", "a")})
	if got := tr.Observe(20, []model.Message{msg("9", "z")}); got != ScrollSnap {
		t.Errorf("chat switch = %v, want snap", got)
	}
}

func TestScrollAppendIsSmooth(t *testing.T) {
	var tr ScrollTracker

	tr.Observe(10, []model.Message{msg("1", "a")})
	if got := tr.Observe(10, []model.Message{msg("1", "a"), msg("2", "b")}); got != ScrollSmooth {
		t.Errorf("append = %v, want smooth", got)
	}
}

func TestScrollLastMessageGrowthSnaps(t *testing.T) {
	var tr ScrollTracker

	tr.Observe(10, []model.Message{msg("1", "par")})
	if got := tr.Observe(10, []model.Message{msg("1", "partial rep")}); got != ScrollSnap {
		t.Errorf("in-place growth = %v, want snap", got)
	}

	// Same length means no growth.
	if got := tr.Observe(10, []model.Message{msg("1", "partial rep")}); got != ScrollNone {
		t.Errorf("no growth = %v, want none", got)
	}
}

func TestScrollImageCountsAsGrowth(t *testing.T) {
	var tr ScrollTracker

	tr.Observe(10, []model.Message{msg("1", "hi")})
	grown := msg("1", "hi")
	grown.Images = []string{"data:image/png;base64,xyz"}
	if got := tr.Observe(10, []model.Message{grown}); got != ScrollSnap {
		t.Errorf("image growth = %v, want snap", got)
	}
}

func TestScrollEmptyList(t *testing.T) {
	var tr ScrollTracker

	if got := tr.Observe(10, nil); got != ScrollNone {
		t.Errorf("empty list = %v, want none", got)
	}
	// First content after empty is an initial load.
	if got := tr.Observe(10, []model.Message{msg("1", "a")}); got != ScrollSnap {
		t.Errorf("first content after empty = %v, want snap", got)
	}
}

func TestScrollReset(t *testing.T) {
	var tr ScrollTracker

	tr.Observe(10, []model.Message{msg("1", "a")})
	tr.Reset()
	if got := tr.Observe(10, []model.Message{msg("1", "a")}); got != ScrollSnap {
		t.Errorf("after reset = %v, want snap", got)
	}
}

func TestScrollActionString(t *testing.T) {
	if ScrollNone.String() != "none" || ScrollSnap.String() != "snap" || ScrollSmooth.String() != "smooth" {
		t.Error("ScrollAction.String mismatch")
	}
}

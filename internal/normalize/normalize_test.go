// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jeranaias/chatai-client/internal/api"
	"github.com/jeranaias/chatai-client/internal/model"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// =============================================================================
// ROLE CASCADE TESTS
// =============================================================================

func TestResolveRoleCascade(t *testing.T) {
	tests := []struct {
		name string
		raw  api.RawMessage
		want model.Role
	}{
		{
			name: "numeric zero is assistant",
			raw:  api.RawMessage{Role: float64(0)},
			want: model.RoleAssistant,
		},
		{
			name: "numeric nonzero is user",
			raw:  api.RawMessage{Role: float64(1)},
			want: model.RoleUser,
		},
		{
			// The numeric rule outranks every textual hint.
			name: "numeric wins over conflicting author",
			raw:  api.RawMessage{Role: float64(1), Author: "AI assistant"},
			want: model.RoleUser,
		},
		{
			name: "string assistant",
			raw:  api.RawMessage{Role: "Assistant"},
			want: model.RoleAssistant,
		},
		{
			name: "string bot",
			raw:  api.RawMessage{Role: "bot"},
			want: model.RoleAssistant,
		},
		{
			name: "string user",
			raw:  api.RawMessage{Role: "user"},
			want: model.RoleUser,
		},
		{
			name: "unknown string falls through to isAI",
			raw:  api.RawMessage{Role: "moderator", IsAI: boolPtr(true)},
			want: model.RoleAssistant,
		},
		{
			name: "isAI true",
			raw:  api.RawMessage{IsAI: boolPtr(true)},
			want: model.RoleAssistant,
		},
		{
			name: "isAI false stops the cascade",
			raw:  api.RawMessage{IsAI: boolPtr(false), Type: "ai"},
			want: model.RoleUser,
		},
		{
			name: "type exact keyword",
			raw:  api.RawMessage{Type: "System"},
			want: model.RoleAssistant,
		},
		{
			// Type matches whole words only; author matches substrings.
			name: "type substring does not match",
			raw:  api.RawMessage{Type: "maintenance"},
			want: model.RoleUser,
		},
		{
			name: "author substring",
			raw:  api.RawMessage{Author: "Support Bot v2"},
			want: model.RoleAssistant,
		},
		{
			name: "userLogin fallback for author",
			raw:  api.RawMessage{UserLogin: "ai-service"},
			want: model.RoleAssistant,
		},
		{
			name: "plain author is user",
			raw:  api.RawMessage{Author: "carol"},
			want: model.RoleUser,
		},
		{
			name: "everything absent defaults to user",
			raw:  api.RawMessage{},
			want: model.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveRole(tt.raw); got != tt.want {
				t.Errorf("resolveRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoleFromWireJSON(t *testing.T) {
	// Numeric roles arrive as JSON numbers and must decode into the untyped
	// field as float64.
	var raw api.RawMessage
	if err := json.Unmarshal([]byte(`{"role":0,"content":"hi"}`), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := resolveRole(raw); got != model.RoleAssistant {
		t.Errorf("wire role 0 = %v, want assistant", got)
	}

	// Both isAi and isAI spellings land in the same field.
	raw = api.RawMessage{}
	if err := json.Unmarshal([]byte(`{"isAI":true}`), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw.IsAI == nil || !*raw.IsAI {
		t.Error("isAI spelling should populate the IsAI field")
	}
}

// =============================================================================
// CONTENT AND AUTHOR TESTS
// =============================================================================

func TestMessageContentFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  api.RawMessage
		want string
	}{
		{"content preferred", api.RawMessage{Content: strPtr("a"), Text: strPtr("b")}, "a"},
		{"empty content still wins", api.RawMessage{Content: strPtr(""), Text: strPtr("b")}, ""},
		{"text fallback", api.RawMessage{Text: strPtr("b")}, "b"},
		{"both absent", api.RawMessage{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.raw, 0).Content; got != tt.want {
				t.Errorf("Content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageAuthorFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  api.RawMessage
		want string
	}{
		{"author field", api.RawMessage{Author: "carol", UserLogin: "c123"}, "carol"},
		{"login fallback", api.RawMessage{UserLogin: "c123"}, "c123"},
		{"assistant default", api.RawMessage{Role: "assistant"}, "AI assistant"},
		{"user default", api.RawMessage{Role: "user"}, "You"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.raw, 0).Author; got != tt.want {
				t.Errorf("Author = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageIDFallback(t *testing.T) {
	tests := []struct {
		name  string
		id    any
		index int
		want  string
	}{
		{"string id", "abc", 3, "abc"},
		{"numeric id", float64(42), 3, "42"},
		{"fractionless rendering", float64(7), 0, "7"},
		{"empty string falls back", "", 3, "3"},
		{"absent falls back", nil, 5, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Message(api.RawMessage{ID: tt.id}, tt.index).ID
			if got != tt.want {
				t.Errorf("ID = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// IMAGE RESOLUTION TESTS
// =============================================================================

func TestResolveImagesShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  api.RawMessage
		want []string
	}{
		{
			name: "plural base64 field",
			raw:  api.RawMessage{Base64Images: []string{"AAA", "BBB"}},
			want: []string{"data:image/png;base64,AAA", "data:image/png;base64,BBB"},
		},
		{
			name: "urls pass through",
			raw:  api.RawMessage{ImageURLs: []string{"https://x/y.png"}},
			want: []string{"https://x/y.png"},
		},
		{
			name: "data uri passes through",
			raw:  api.RawMessage{ImageBlob: "data:image/jpeg;base64,CCC"},
			want: []string{"data:image/jpeg;base64,CCC"},
		},
		{
			name: "singular fields",
			raw:  api.RawMessage{Base64Image: "AAA", ImageURL: "https://x/z.png"},
			want: []string{"data:image/png;base64,AAA", "https://x/z.png"},
		},
		{
			name: "duplicate across fields collapses",
			raw:  api.RawMessage{Base64Images: []string{"AAA"}, Base64Image: "AAA", ImageBlob: "AAA"},
			want: []string{"data:image/png;base64,AAA"},
		},
		{
			name: "polymorphic string",
			raw:  api.RawMessage{Images: "AAA"},
			want: []string{"data:image/png;base64,AAA"},
		},
		{
			name: "polymorphic nested array of objects",
			raw: api.RawMessage{Images: []any{
				map[string]any{"imageBlob": "AAA"},
				[]any{map[string]any{"url": "https://x/a.png"}},
				"BBB",
			}},
			want: []string{
				"data:image/png;base64,AAA",
				"https://x/a.png",
				"data:image/png;base64,BBB",
			},
		},
		{
			name: "empty values dropped",
			raw:  api.RawMessage{Base64Images: []string{"", "AAA"}, ImageURL: ""},
			want: []string{"data:image/png;base64,AAA"},
		},
		{
			name: "no images",
			raw:  api.RawMessage{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveImages(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("images = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("images[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToDataURI(t *testing.T) {
	if got := ToDataURI("data:image/png;base64,X"); got != "data:image/png;base64,X" {
		t.Errorf("data uri changed: %q", got)
	}
	if got := ToDataURI("http://a/b.png"); got != "http://a/b.png" {
		t.Errorf("http url changed: %q", got)
	}
	if got := ToDataURI("QUJD"); got != "data:image/png;base64,QUJD" {
		t.Errorf("bare base64 = %q", got)
	}
}

// =============================================================================
// TIMESTAMP TESTS
// =============================================================================

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2025-03-01T10:00:00Z", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2025-03-01T10:00:00.5Z", time.Date(2025, 3, 1, 10, 0, 0, 500000000, time.UTC)},
		{"no zone", "2025-03-01T10:00:00", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Timestamp(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("Timestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestMessagesPositionalIDs(t *testing.T) {
	raws := []api.RawMessage{
		{Content: strPtr("first")},
		{ID: "server-id", Content: strPtr("second")},
		{Content: strPtr("third")},
	}

	msgs := Messages(raws)
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].ID != "0" || msgs[1].ID != "server-id" || msgs[2].ID != "2" {
		t.Errorf("IDs = %q, %q, %q", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
}

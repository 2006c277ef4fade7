// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize converts raw server message records into the canonical
// Message model.
//
// The backend has accumulated several generations of message shapes; this
// package owns the fallback rules that fold them into one. Everything here
// is a pure function of its input so the rules stay unit-testable.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/chatai-client/internal/api"
	"github.com/jeranaias/chatai-client/internal/model"
)

// assistantKeywords are the markers that identify an assistant message when
// they appear in a type, author, or login field.
var assistantKeywords = []string{"assistant", "ai", "bot", "system"}

// =============================================================================
// MESSAGE NORMALIZATION
// =============================================================================

// Messages normalizes a raw history slice. The positional index serves as
// the identifier fallback for records that carry none.
func Messages(raws []api.RawMessage) []model.Message {
	msgs := make([]model.Message, len(raws))
	for i, raw := range raws {
		msgs[i] = Message(raw, i)
	}
	return msgs
}

// Message normalizes a single raw record.
func Message(raw api.RawMessage, index int) model.Message {
	role := resolveRole(raw)
	images := resolveImages(raw)

	author := raw.Author
	if author == "" {
		author = raw.UserLogin
	}
	if author == "" {
		author = role.DefaultAuthor()
	}

	var content string
	switch {
	case raw.Content != nil:
		content = *raw.Content
	case raw.Text != nil:
		content = *raw.Text
	}

	return model.Message{
		ID:        resolveID(raw.ID, index),
		Role:      role,
		Author:    author,
		Content:   content,
		Images:    images,
		Timestamp: Timestamp(raw.CreatedAt),
	}
}

// =============================================================================
// ROLE RESOLUTION
// =============================================================================

// resolveRole applies the role fallback cascade. The order is load-bearing:
// a later rule only fires when every earlier field is absent or
// non-matching.
func resolveRole(raw api.RawMessage) model.Role {
	// (a) numeric role code: 0 is the assistant on the oldest endpoints.
	if code, ok := numericRole(raw.Role); ok {
		if code == 0 {
			return model.RoleAssistant
		}
		return model.RoleUser
	}

	// (b) string role field.
	if s, ok := raw.Role.(string); ok {
		switch strings.ToLower(s) {
		case "assistant", "ai", "bot":
			return model.RoleAssistant
		case "user":
			return model.RoleUser
		}
	}

	// (c) boolean is-AI flag.
	if raw.IsAI != nil {
		if *raw.IsAI {
			return model.RoleAssistant
		}
		return model.RoleUser
	}

	// (d) free-text type field.
	if containsKeyword(strings.ToLower(raw.Type)) {
		return model.RoleAssistant
	}

	// (e) author / login text.
	author := raw.Author
	if author == "" {
		author = raw.UserLogin
	}
	if keywordSubstring(strings.ToLower(author)) {
		return model.RoleAssistant
	}

	// (f) default.
	return model.RoleUser
}

// numericRole extracts an integer role code from the untyped role field.
// JSON numbers decode as float64; test fixtures may use int.
func numericRole(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func containsKeyword(s string) bool {
	for _, kw := range assistantKeywords {
		if s == kw {
			return true
		}
	}
	return false
}

func keywordSubstring(s string) bool {
	if s == "" {
		return false
	}
	for _, kw := range assistantKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// =============================================================================
// IMAGE RESOLUTION
// =============================================================================

// resolveImages gathers image references from every field shape the backend
// uses, deduplicates them by raw value, and maps each to a displayable URI.
func resolveImages(raw api.RawMessage) []string {
	var candidates []string
	candidates = append(candidates, raw.Base64Images...)
	candidates = append(candidates, raw.ImageURLs...)
	candidates = append(candidates, raw.ImageBlobs...)
	candidates = append(candidates, flattenImageValues(raw.Images)...)
	candidates = append(candidates, raw.Base64Image, raw.ImageBlob, raw.ImageURL)

	seen := make(map[string]struct{}, len(candidates))
	var images []string
	for _, v := range candidates {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		images = append(images, ToDataURI(v))
	}
	return images
}

// flattenImageValues unwraps the polymorphic images field: a bare string, an
// object with any known image key, or arbitrarily nested arrays of either.
func flattenImageValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, flattenImageValues(item)...)
		}
		return out
	case map[string]any:
		var out []string
		for _, key := range []string{"imageBlob", "base64Image", "imageUrl", "url"} {
			if s, ok := val[key].(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ToDataURI maps an image value to a displayable form. Values already in
// URI form pass through; bare base64 payloads are wrapped as PNG data URIs.
func ToDataURI(v string) string {
	if strings.HasPrefix(v, "data:") || strings.HasPrefix(v, "http") {
		return v
	}
	return "data:image/png;base64," + v
}

// =============================================================================
// SCALAR HELPERS
// =============================================================================

// resolveID renders whatever identifier the record carries, falling back to
// the positional index.
func resolveID(id any, index int) string {
	switch v := id.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return strconv.Itoa(index)
}

// Timestamp parses the backend's creation timestamps, which arrive as
// RFC 3339 with or without fractional seconds or zone. Returns the zero
// time when the field is absent or unparseable.
func Timestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// CONFIGURATION CASCADE TESTS
// =============================================================================

func TestResolveModelCascade(t *testing.T) {
	catalog := []model.ModelInfo{{Name: "first"}, {Name: "second"}}

	tests := []struct {
		name string
		in   ResolveInputs
		want string
	}{
		{
			name: "chat settings win over everything",
			in: ResolveInputs{
				ChatSettings: &model.ChatSettings{Model: "chat-model"},
				UserSettings: &model.UserSettings{Model: "user-model", DefaultModel: "default-model"},
				Catalog:      catalog,
			},
			want: "chat-model",
		},
		{
			name: "empty chat model falls through to user model",
			in: ResolveInputs{
				ChatSettings: &model.ChatSettings{},
				UserSettings: &model.UserSettings{Model: "user-model", DefaultModel: "default-model"},
				Catalog:      catalog,
			},
			want: "user-model",
		},
		{
			name: "user default model next",
			in: ResolveInputs{
				UserSettings: &model.UserSettings{DefaultModel: "default-model"},
				Catalog:      catalog,
			},
			want: "default-model",
		},
		{
			name: "catalog head last",
			in:   ResolveInputs{Catalog: catalog},
			want: "first",
		},
		{
			name: "nothing available",
			in:   ResolveInputs{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.in).Model; got != tt.want {
				t.Errorf("Resolve().Model = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveGenerationParams(t *testing.T) {
	tests := []struct {
		name     string
		in       ResolveInputs
		wantTemp float64
		wantMax  int
	}{
		{
			name: "chat settings win wholesale",
			in: ResolveInputs{
				ChatSettings: &model.ChatSettings{Temperature: 0.3, MaxTokens: 2048},
				UserSettings: &model.UserSettings{Temperature: 0.9, MaxTokens: 100},
			},
			wantTemp: 0.3,
			wantMax:  2048,
		},
		{
			// A chat with explicit settings keeps them even when they are
			// zero; later user-default changes must not leak in.
			name: "zero-valued chat settings still win",
			in: ResolveInputs{
				ChatSettings: &model.ChatSettings{},
				UserSettings: &model.UserSettings{Temperature: 0.9, MaxTokens: 100},
			},
			wantTemp: 0,
			wantMax:  0,
		},
		{
			name: "user settings when no chat settings",
			in: ResolveInputs{
				UserSettings: &model.UserSettings{Temperature: 0.5, MaxTokens: 1024},
			},
			wantTemp: 0.5,
			wantMax:  1024,
		},
		{
			name: "zero user values fall back to defaults",
			in: ResolveInputs{
				UserSettings: &model.UserSettings{},
			},
			wantTemp: model.DefaultTemperature,
			wantMax:  model.DefaultMaxTokens,
		},
		{
			name:     "hardcoded defaults when nothing set",
			in:       ResolveInputs{},
			wantTemp: model.DefaultTemperature,
			wantMax:  model.DefaultMaxTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.in)
			if r.Temperature != tt.wantTemp {
				t.Errorf("Temperature = %v, want %v", r.Temperature, tt.wantTemp)
			}
			if r.MaxTokens != tt.wantMax {
				t.Errorf("MaxTokens = %v, want %v", r.MaxTokens, tt.wantMax)
			}
		})
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	defaults := Defaults{Model: "configured", Temperature: 0.7, MaxTokens: 1024}
	catalog := []model.ModelInfo{{Name: "first"}}

	tests := []struct {
		name string
		in   ResolveInputs
		want Resolved
	}{
		{
			name: "defaults fill the bottom layer",
			in:   ResolveInputs{Defaults: defaults, Catalog: catalog},
			want: Resolved{Model: "configured", Temperature: 0.7, MaxTokens: 1024},
		},
		{
			name: "configured model beats the catalog head",
			in:   ResolveInputs{Defaults: Defaults{Model: "configured"}, Catalog: catalog},
			want: Resolved{Model: "configured", Temperature: model.DefaultTemperature, MaxTokens: model.DefaultMaxTokens},
		},
		{
			name: "user settings beat defaults",
			in: ResolveInputs{
				Defaults:     defaults,
				UserSettings: &model.UserSettings{Model: "user-model", Temperature: 0.9, MaxTokens: 100},
			},
			want: Resolved{Model: "user-model", Temperature: 0.9, MaxTokens: 100},
		},
		{
			name: "chat settings beat defaults",
			in: ResolveInputs{
				Defaults:     defaults,
				ChatSettings: &model.ChatSettings{Model: "chat-model", Temperature: 0.2, MaxTokens: 64},
			},
			want: Resolved{Model: "chat-model", Temperature: 0.2, MaxTokens: 64},
		},
		{
			name: "zero defaults fall back to the hardcoded values",
			in:   ResolveInputs{Defaults: Defaults{}},
			want: Resolved{Temperature: model.DefaultTemperature, MaxTokens: model.DefaultMaxTokens},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.in); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

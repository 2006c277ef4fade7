// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/jeranaias/chatai-client/internal/model"

// =============================================================================
// CONFIGURATION CASCADE RESOLVER
// =============================================================================

// Defaults is the bottom layer of the cascade, sourced from the client
// configuration file. Zero values mean the layer provides nothing and the
// hardcoded fallbacks apply.
type Defaults struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ResolveInputs are the layers the cascade draws from, most specific first.
// Nil pointers mean the layer is absent.
type ResolveInputs struct {
	ChatSettings *model.ChatSettings
	UserSettings *model.UserSettings
	Catalog      []model.ModelInfo
	Defaults     Defaults
}

// Resolved is the effective generation configuration for the active chat.
type Resolved struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Resolve computes the effective model, temperature and token limit.
//
// Model falls through chat settings, the user's model, the user's service
// default model, the configured default model, and finally the first
// catalog entry; an empty string means no layer could provide one.
// Temperature and MaxTokens fall through chat settings, user settings,
// configured defaults, and the hardcoded fallbacks. Because chat settings
// are consulted first, catalog or default changes never override a chat
// that has explicit settings.
func Resolve(in ResolveInputs) Resolved {
	r := Resolved{
		Temperature: in.Defaults.Temperature,
		MaxTokens:   in.Defaults.MaxTokens,
	}
	if r.Temperature == 0 {
		r.Temperature = model.DefaultTemperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = model.DefaultMaxTokens
	}

	switch {
	case in.ChatSettings != nil && in.ChatSettings.Model != "":
		r.Model = in.ChatSettings.Model
	case in.UserSettings != nil && in.UserSettings.Model != "":
		r.Model = in.UserSettings.Model
	case in.UserSettings != nil && in.UserSettings.DefaultModel != "":
		r.Model = in.UserSettings.DefaultModel
	case in.Defaults.Model != "":
		r.Model = in.Defaults.Model
	case len(in.Catalog) > 0:
		r.Model = in.Catalog[0].Name
	}

	switch {
	case in.ChatSettings != nil:
		r.Temperature = in.ChatSettings.Temperature
		r.MaxTokens = in.ChatSettings.MaxTokens
	case in.UserSettings != nil:
		if in.UserSettings.Temperature != 0 {
			r.Temperature = in.UserSettings.Temperature
		}
		if in.UserSettings.MaxTokens != 0 {
			r.MaxTokens = in.UserSettings.MaxTokens
		}
	}

	return r
}

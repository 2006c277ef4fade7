// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strconv"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// USER SETTINGS SERVICE
// =============================================================================

// saveUserSettingsRequest is the user settings record plus the owning user.
type saveUserSettingsRequest struct {
	model.UserSettings
	UserID int64 `json:"userId"`
}

// UserSettings loads the persisted per-user defaults.
func (c *Client) UserSettings(ctx context.Context, userID int64) (model.UserSettings, error) {
	var settings model.UserSettings
	if err := c.get(ctx, "/Settings/"+strconv.FormatInt(userID, 10), &settings); err != nil {
		return model.UserSettings{}, err
	}
	return settings, nil
}

// SaveUserSettings persists the per-user defaults.
func (c *Client) SaveUserSettings(ctx context.Context, userID int64, settings model.UserSettings) error {
	return c.post(ctx, "/Settings/save", saveUserSettingsRequest{UserSettings: settings, UserID: userID}, nil)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// MODEL CATALOG SERVICE
// =============================================================================

// Models lists the models the backend can serve. Older backends answer with
// a bare array of names, newer ones with {name, displayName} records; both
// are folded into ModelInfo.
func (c *Client) Models(ctx context.Context) ([]model.ModelInfo, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, "/Ai/models", &raw); err != nil {
		return nil, err
	}

	models := make([]model.ModelInfo, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			models = append(models, model.ModelInfo{Name: name, DisplayName: name})
			continue
		}
		var info model.ModelInfo
		if err := json.Unmarshal(item, &info); err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "unrecognized model catalog entry", Cause: err}
		}
		models = append(models, info)
	}
	return models, nil
}

// Version reports the model runtime version; used as a connectivity check.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.get(ctx, "/Ai/ollama-version", &version); err != nil {
		return "", err
	}
	return version, nil
}

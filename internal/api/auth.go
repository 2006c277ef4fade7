// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strconv"

	"github.com/jeranaias/chatai-client/internal/model"
)

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================
//
// Auth policy lives on the server; these calls only establish the identity
// the session controller gates on.

// Login authenticates and returns the account identity.
func (c *Client) Login(ctx context.Context, login, password string) (model.User, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/WebAPIChatAI/Login", AuthRequest{Login: login, Password: password}, &resp); err != nil {
		return model.User{}, err
	}
	return model.User{ID: resp.ID, Login: resp.Login, Model: resp.Model}, nil
}

// Register creates an account and returns the new identity.
func (c *Client) Register(ctx context.Context, login, password string) (model.User, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/WebAPIChatAI/AddUser", AuthRequest{Login: login, Password: password}, &resp); err != nil {
		return model.User{}, err
	}
	return model.User{ID: resp.ID, Login: resp.Login, Model: resp.Model}, nil
}

// UpdateLogin changes the account's display login.
func (c *Client) UpdateLogin(ctx context.Context, userID int64, login string) error {
	body := struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
	}{ID: userID, Login: login}
	return c.put(ctx, "/WebAPIChatAI/UpdateUser/"+strconv.FormatInt(userID, 10), body, nil)
}

// DeleteUser removes the account.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.delete(ctx, "/WebAPIChatAI/DeleteUser/"+strconv.FormatInt(userID, 10))
}

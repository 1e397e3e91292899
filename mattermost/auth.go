// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/communicator/errcode"
)

// loginRequest is the body of POST /users/login.
type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	// Token is the MFA code, when the account requires one.
	Token string `json:"token,omitempty"`
}

// Login authenticates with a login ID (email or username) and
// password. The session token arrives in the Token response header and
// is moved into protected memory; the response body is the
// authenticated user record.
func (c *Client) Login(ctx context.Context, loginID, password string) (*User, error) {
	return c.login(ctx, loginRequest{LoginID: loginID, Password: password})
}

// LoginWithMFA authenticates with login ID, password, and a one-time
// MFA code.
func (c *Client) LoginWithMFA(ctx context.Context, loginID, password, mfaCode string) (*User, error) {
	return c.login(ctx, loginRequest{LoginID: loginID, Password: password, Token: mfaCode})
}

func (c *Client) login(ctx context.Context, request loginRequest) (*User, error) {
	if request.LoginID == "" || request.Password == "" {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: login requires both login_id and password")
	}

	body, response, err := c.doRequest(ctx, http.MethodPost, "/users/login", request, nil)
	if err != nil {
		return nil, fmt.Errorf("mattermost: login failed: %w", err)
	}

	token := response.Header.Get("Token")
	if token == "" {
		return nil, fmt.Errorf("mattermost: login failed: %w",
			errcode.New(errcode.AuthFailed, "no session token in login response"))
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("mattermost: parsing login response: %w", err)
	}

	if err := c.setSession(token, user.ID); err != nil {
		return nil, err
	}

	c.logger.Info("logged in to mattermost",
		"server", c.serverURL,
		"user_id", user.ID,
		"username", user.Username,
	)
	return &user, nil
}

// LoginWithToken installs a personal access token (or an existing
// session token) and validates it with a /users/me round trip. On
// validation failure the token is not retained.
func (c *Client) LoginWithToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: token must not be empty")
	}
	if err := c.setSession(token, ""); err != nil {
		return nil, err
	}

	user, err := c.Me(ctx)
	if err != nil {
		c.clearSession()
		return nil, fmt.Errorf("mattermost: token validation failed: %w", err)
	}

	c.mu.Lock()
	c.userID = user.ID
	c.mu.Unlock()

	c.logger.Info("logged in to mattermost with token",
		"server", c.serverURL,
		"user_id", user.ID,
		"username", user.Username,
	)
	return user, nil
}

// Logout revokes the session server-side and releases the local token.
// The local session is cleared even when the revocation call fails,
// since the caller is disconnecting either way.
func (c *Client) Logout(ctx context.Context) error {
	_, _, err := c.doRequest(ctx, http.MethodPost, "/users/logout", struct{}{}, nil)
	c.clearSession()
	if err != nil {
		return fmt.Errorf("mattermost: logout failed: %w", err)
	}
	return nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Me returns the authenticated user's own record.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("mattermost: get current user: %w", err)
	}
	return &user, nil
}

// UserByID fetches a user by ID.
func (c *Client) UserByID(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, fmt.Errorf("mattermost: get user %q: %w", userID, err)
	}
	return &user, nil
}

// UserByUsername fetches a user by username.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/users/username/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, fmt.Errorf("mattermost: get user by username %q: %w", username, err)
	}
	return &user, nil
}

// UserByEmail fetches a user by email address.
func (c *Client) UserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/users/email/"+url.PathEscape(email), nil, &user); err != nil {
		return nil, fmt.Errorf("mattermost: get user by email %q: %w", email, err)
	}
	return &user, nil
}

// UsersByIDs fetches a batch of users in one round trip.
func (c *Client) UsersByIDs(ctx context.Context, userIDs []string) ([]User, error) {
	var users []User
	if err := c.postJSON(ctx, "/users/ids", userIDs, &users); err != nil {
		return nil, fmt.Errorf("mattermost: get users by ids: %w", err)
	}
	return users, nil
}

// userSearchRequest is the body of POST /users/search.
type userSearchRequest struct {
	Term   string `json:"term"`
	TeamID string `json:"team_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SearchUsers searches users by name within the active team scope.
func (c *Client) SearchUsers(ctx context.Context, term string, limit int) ([]User, error) {
	teamID, err := c.requireTeamID("user search")
	if err != nil {
		return nil, err
	}
	var users []User
	request := userSearchRequest{Term: term, TeamID: teamID, Limit: limit}
	if err := c.postJSON(ctx, "/users/search", request, &users); err != nil {
		return nil, fmt.Errorf("mattermost: search users %q: %w", term, err)
	}
	return users, nil
}

// AutocompleteUsers returns username completions for a partial term,
// scoped to the active team and, optionally, a channel.
func (c *Client) AutocompleteUsers(ctx context.Context, channelID, term string, limit int) ([]User, error) {
	teamID, err := c.requireTeamID("user autocomplete")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("in_team", teamID)
	if channelID != "" {
		query.Set("in_channel", channelID)
	}
	query.Set("name", term)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	// The endpoint nests completions under "users".
	var response struct {
		Users []User `json:"users"`
	}
	if err := c.getJSON(ctx, "/users/autocomplete", query, &response); err != nil {
		return nil, fmt.Errorf("mattermost: autocomplete users %q: %w", term, err)
	}
	return response.Users, nil
}

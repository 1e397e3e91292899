// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bureau-foundation/communicator/errcode"
)

// GetUserStatus fetches one user's presence.
func (c *Client) GetUserStatus(ctx context.Context, userID string) (Status, error) {
	var status UserStatus
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID)+"/status", nil, &status); err != nil {
		return StatusUnknown, fmt.Errorf("mattermost: get status for %q: %w", userID, err)
	}
	return ParseStatus(status.Status), nil
}

// GetStatusesByIDs fetches presence for a batch of users, returned as
// a user-ID → status map.
func (c *Client) GetStatusesByIDs(ctx context.Context, userIDs []string) (map[string]Status, error) {
	var statuses []UserStatus
	if err := c.postJSON(ctx, "/users/status/ids", userIDs, &statuses); err != nil {
		return nil, fmt.Errorf("mattermost: get statuses by ids: %w", err)
	}
	result := make(map[string]Status, len(statuses))
	for _, status := range statuses {
		result[status.UserID] = ParseStatus(status.Status)
	}
	return result, nil
}

// SetStatus sets the authenticated user's own presence.
func (c *Client) SetStatus(ctx context.Context, status Status) error {
	if status == StatusUnknown {
		return errcode.New(errcode.InvalidArgument, "mattermost: status must be one of online, away, dnd, offline")
	}
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	request := UserStatus{UserID: userID, Status: string(status)}
	if err := c.putJSON(ctx, "/users/"+url.PathEscape(userID)+"/status", request, nil); err != nil {
		return fmt.Errorf("mattermost: set status %q: %w", status, err)
	}
	return nil
}

// CustomStatus is a user-authored status line (emoji + text) with an
// optional expiry.
type CustomStatus struct {
	Emoji     string `json:"emoji,omitempty"`
	Text      string `json:"text,omitempty"`
	Duration  string `json:"duration,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// SetCustomStatus sets the authenticated user's custom status line.
// expiresAt of zero means no expiry.
func (c *Client) SetCustomStatus(ctx context.Context, emoji, text string, expiresAt time.Time) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	status := CustomStatus{Emoji: emoji, Text: text}
	if !expiresAt.IsZero() {
		status.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	}
	if err := c.putJSON(ctx, "/users/"+url.PathEscape(userID)+"/status/custom", status, nil); err != nil {
		return fmt.Errorf("mattermost: set custom status: %w", err)
	}
	return nil
}

// RemoveCustomStatus clears the authenticated user's custom status
// line.
func (c *Client) RemoveCustomStatus(ctx context.Context) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	if err := c.deleteJSON(ctx, "/users/"+url.PathEscape(userID)+"/status/custom"); err != nil {
		return fmt.Errorf("mattermost: remove custom status: %w", err)
	}
	return nil
}

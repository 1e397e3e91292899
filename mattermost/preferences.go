// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bureau-foundation/communicator/errcode"
)

// MyPreferences lists all of the authenticated user's preferences.
func (c *Client) MyPreferences(ctx context.Context) ([]Preference, error) {
	userID, err := c.requireUserID()
	if err != nil {
		return nil, err
	}
	var preferences []Preference
	path := "/users/" + url.PathEscape(userID) + "/preferences"
	if err := c.getJSON(ctx, path, nil, &preferences); err != nil {
		return nil, fmt.Errorf("mattermost: list preferences: %w", err)
	}
	return preferences, nil
}

// PreferencesByCategory lists the authenticated user's preferences in
// one category (e.g., "direct_channel_show", "favorite_channel").
func (c *Client) PreferencesByCategory(ctx context.Context, category string) ([]Preference, error) {
	userID, err := c.requireUserID()
	if err != nil {
		return nil, err
	}
	var preferences []Preference
	path := "/users/" + url.PathEscape(userID) + "/preferences/" + url.PathEscape(category)
	if err := c.getJSON(ctx, path, nil, &preferences); err != nil {
		return nil, fmt.Errorf("mattermost: preferences in %q: %w", category, err)
	}
	return preferences, nil
}

// SavePreferences upserts a batch of the authenticated user's
// preferences. The server requires each entry's UserID to match the
// session; it is filled in here so callers can leave it blank.
func (c *Client) SavePreferences(ctx context.Context, preferences []Preference) error {
	if len(preferences) == 0 {
		return errcode.New(errcode.InvalidArgument, "mattermost: SavePreferences requires at least one entry")
	}
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	for i := range preferences {
		preferences[i].UserID = userID
	}
	path := "/users/" + url.PathEscape(userID) + "/preferences"
	if err := c.putJSON(ctx, path, preferences, nil); err != nil {
		return fmt.Errorf("mattermost: save preferences: %w", err)
	}
	return nil
}

// DeletePreferences removes a batch of the authenticated user's
// preferences.
func (c *Client) DeletePreferences(ctx context.Context, preferences []Preference) error {
	if len(preferences) == 0 {
		return errcode.New(errcode.InvalidArgument, "mattermost: DeletePreferences requires at least one entry")
	}
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	for i := range preferences {
		preferences[i].UserID = userID
	}
	path := "/users/" + url.PathEscape(userID) + "/preferences/delete"
	if err := c.postJSON(ctx, path, preferences, nil); err != nil {
		return fmt.Errorf("mattermost: delete preferences: %w", err)
	}
	return nil
}

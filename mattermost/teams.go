// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"fmt"
	"net/url"
)

// MyTeams lists the teams the authenticated user belongs to.
func (c *Client) MyTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.getJSON(ctx, "/users/me/teams", nil, &teams); err != nil {
		return nil, fmt.Errorf("mattermost: list my teams: %w", err)
	}
	return teams, nil
}

// GetTeam fetches a team by ID.
func (c *Client) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	var team Team
	if err := c.getJSON(ctx, "/teams/"+url.PathEscape(teamID), nil, &team); err != nil {
		return nil, fmt.Errorf("mattermost: get team %q: %w", teamID, err)
	}
	return &team, nil
}

// GetTeamByName fetches a team by its URL name.
func (c *Client) GetTeamByName(ctx context.Context, name string) (*Team, error) {
	var team Team
	if err := c.getJSON(ctx, "/teams/name/"+url.PathEscape(name), nil, &team); err != nil {
		return nil, fmt.Errorf("mattermost: get team by name %q: %w", name, err)
	}
	return &team, nil
}

// TeamUnreads reports unread message and mention counts across all of
// the authenticated user's teams.
func (c *Client) TeamUnreads(ctx context.Context) ([]ChannelUnread, error) {
	var unreads []ChannelUnread
	if err := c.getJSON(ctx, "/users/me/teams/unread", nil, &unreads); err != nil {
		return nil, fmt.Errorf("mattermost: team unreads: %w", err)
	}
	return unreads, nil
}

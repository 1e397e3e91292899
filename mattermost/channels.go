// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bureau-foundation/communicator/errcode"
)

// MyChannels lists the channels the authenticated user belongs to in
// the active team scope, ordered as the server returns them.
func (c *Client) MyChannels(ctx context.Context) ([]Channel, error) {
	teamID, err := c.requireTeamID("MyChannels")
	if err != nil {
		return nil, err
	}
	var channels []Channel
	path := "/users/me/teams/" + url.PathEscape(teamID) + "/channels"
	if err := c.getJSON(ctx, path, nil, &channels); err != nil {
		return nil, fmt.Errorf("mattermost: list my channels: %w", err)
	}
	return channels, nil
}

// GetChannel fetches a channel by ID.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	var channel Channel
	if err := c.getJSON(ctx, "/channels/"+url.PathEscape(channelID), nil, &channel); err != nil {
		return nil, fmt.Errorf("mattermost: get channel %q: %w", channelID, err)
	}
	return &channel, nil
}

// GetChannelByName fetches a channel by its URL name within the active
// team scope.
func (c *Client) GetChannelByName(ctx context.Context, name string) (*Channel, error) {
	teamID, err := c.requireTeamID("GetChannelByName")
	if err != nil {
		return nil, err
	}
	var channel Channel
	path := "/teams/" + url.PathEscape(teamID) + "/channels/name/" + url.PathEscape(name)
	if err := c.getJSON(ctx, path, nil, &channel); err != nil {
		return nil, fmt.Errorf("mattermost: get channel by name %q: %w", name, err)
	}
	return &channel, nil
}

// CreateChannelRequest describes a channel to create. Type must be
// ChannelOpen or ChannelPrivate; use CreateDirectChannel and
// CreateGroupChannel for the other kinds.
type CreateChannelRequest struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Type        ChannelType `json:"type"`
	Purpose     string      `json:"purpose,omitempty"`
	Header      string      `json:"header,omitempty"`
	TeamID      string      `json:"team_id"`
}

// CreateChannel creates an open or private channel in the active team
// scope.
func (c *Client) CreateChannel(ctx context.Context, request CreateChannelRequest) (*Channel, error) {
	if request.Type != ChannelOpen && request.Type != ChannelPrivate {
		return nil, errcode.Newf(errcode.InvalidArgument, "mattermost: CreateChannel type must be O or P, got %q", request.Type)
	}
	if request.TeamID == "" {
		teamID, err := c.requireTeamID("CreateChannel")
		if err != nil {
			return nil, err
		}
		request.TeamID = teamID
	}
	var channel Channel
	if err := c.postJSON(ctx, "/channels", request, &channel); err != nil {
		return nil, fmt.Errorf("mattermost: create channel %q: %w", request.Name, err)
	}
	return &channel, nil
}

// CreateDirectChannel opens (or returns the existing) direct-message
// channel between the authenticated user and another user.
func (c *Client) CreateDirectChannel(ctx context.Context, otherUserID string) (*Channel, error) {
	userID, err := c.requireUserID()
	if err != nil {
		return nil, err
	}
	var channel Channel
	if err := c.postJSON(ctx, "/channels/direct", []string{userID, otherUserID}, &channel); err != nil {
		return nil, fmt.Errorf("mattermost: create direct channel with %q: %w", otherUserID, err)
	}
	return &channel, nil
}

// CreateGroupChannel opens (or returns the existing) group-message
// channel among the given users. The authenticated user is included
// automatically by the server.
func (c *Client) CreateGroupChannel(ctx context.Context, userIDs []string) (*Channel, error) {
	if len(userIDs) < 2 {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: group channel needs at least two other users")
	}
	var channel Channel
	if err := c.postJSON(ctx, "/channels/group", userIDs, &channel); err != nil {
		return nil, fmt.Errorf("mattermost: create group channel: %w", err)
	}
	return &channel, nil
}

// UpdateChannelRequest carries the mutable channel fields. Empty
// fields are left unchanged by the server.
type UpdateChannelRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	Header      string `json:"header,omitempty"`
}

// UpdateChannel patches a channel's display name, purpose, or header.
func (c *Client) UpdateChannel(ctx context.Context, request UpdateChannelRequest) (*Channel, error) {
	if request.ID == "" {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: UpdateChannel requires a channel ID")
	}
	var channel Channel
	path := "/channels/" + url.PathEscape(request.ID) + "/patch"
	if err := c.putJSON(ctx, path, request, &channel); err != nil {
		return nil, fmt.Errorf("mattermost: update channel %q: %w", request.ID, err)
	}
	return &channel, nil
}

// DeleteChannel archives a channel. Archived channels stop delivering
// events but remain readable until purged server-side.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	if err := c.deleteJSON(ctx, "/channels/"+url.PathEscape(channelID)); err != nil {
		return fmt.Errorf("mattermost: delete channel %q: %w", channelID, err)
	}
	return nil
}

// ChannelMembers lists a page of a channel's membership.
func (c *Client) ChannelMembers(ctx context.Context, channelID string, page, perPage int) ([]ChannelMember, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	var members []ChannelMember
	path := "/channels/" + url.PathEscape(channelID) + "/members"
	if err := c.getJSON(ctx, path, query, &members); err != nil {
		return nil, fmt.Errorf("mattermost: list members of %q: %w", channelID, err)
	}
	return members, nil
}

// AddChannelMember adds a user to a channel.
func (c *Client) AddChannelMember(ctx context.Context, channelID, userID string) (*ChannelMember, error) {
	request := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}
	var member ChannelMember
	path := "/channels/" + url.PathEscape(channelID) + "/members"
	if err := c.postJSON(ctx, path, request, &member); err != nil {
		return nil, fmt.Errorf("mattermost: add %q to channel %q: %w", userID, channelID, err)
	}
	return &member, nil
}

// RemoveChannelMember removes a user from a channel.
func (c *Client) RemoveChannelMember(ctx context.Context, channelID, userID string) error {
	path := "/channels/" + url.PathEscape(channelID) + "/members/" + url.PathEscape(userID)
	if err := c.deleteJSON(ctx, path); err != nil {
		return fmt.Errorf("mattermost: remove %q from channel %q: %w", userID, channelID, err)
	}
	return nil
}

// MuteChannel silences desktop and mobile notifications for a channel.
func (c *Client) MuteChannel(ctx context.Context, channelID string) error {
	return c.setChannelMuted(ctx, channelID, true)
}

// UnmuteChannel restores a channel's notifications to their defaults.
func (c *Client) UnmuteChannel(ctx context.Context, channelID string) error {
	return c.setChannelMuted(ctx, channelID, false)
}

func (c *Client) setChannelMuted(ctx context.Context, channelID string, muted bool) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	markUnread := "all"
	if muted {
		markUnread = "mention"
	}
	request := struct {
		UserID      string            `json:"user_id"`
		ChannelID   string            `json:"channel_id"`
		NotifyProps map[string]string `json:"notify_props"`
	}{
		UserID:    userID,
		ChannelID: channelID,
		NotifyProps: map[string]string{
			"mark_unread": markUnread,
		},
	}
	path := "/channels/" + url.PathEscape(channelID) + "/members/" + url.PathEscape(userID) + "/notify_props"
	if err := c.putJSON(ctx, path, request, nil); err != nil {
		return fmt.Errorf("mattermost: set channel %q muted=%t: %w", channelID, muted, err)
	}
	return nil
}

// ViewChannel marks a channel as viewed, clearing its unread counters
// and advancing the read cursor for all of the user's sessions.
func (c *Client) ViewChannel(ctx context.Context, channelID string) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	request := struct {
		ChannelID string `json:"channel_id"`
	}{ChannelID: channelID}
	path := "/channels/members/" + url.PathEscape(userID) + "/view"
	if err := c.postJSON(ctx, path, request, nil); err != nil {
		return fmt.Errorf("mattermost: view channel %q: %w", channelID, err)
	}
	return nil
}

// ChannelUnreads reports a single channel's unread message and mention
// counts for the authenticated user.
func (c *Client) ChannelUnreads(ctx context.Context, channelID string) (*ChannelUnread, error) {
	userID, err := c.requireUserID()
	if err != nil {
		return nil, err
	}
	var unread ChannelUnread
	path := "/users/" + url.PathEscape(userID) + "/channels/" + url.PathEscape(channelID) + "/unread"
	if err := c.getJSON(ctx, path, nil, &unread); err != nil {
		return nil, fmt.Errorf("mattermost: channel unreads for %q: %w", channelID, err)
	}
	return &unread, nil
}

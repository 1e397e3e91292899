// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AddReaction attaches an emoji reaction to a post on behalf of the
// authenticated user. emojiName is the bare name without colons.
func (c *Client) AddReaction(ctx context.Context, postID, emojiName string) (*Reaction, error) {
	userID, err := c.requireUserID()
	if err != nil {
		return nil, err
	}
	request := Reaction{UserID: userID, PostID: postID, EmojiName: emojiName}
	var reaction Reaction
	if err := c.postJSON(ctx, "/reactions", request, &reaction); err != nil {
		return nil, fmt.Errorf("mattermost: add reaction %q to %q: %w", emojiName, postID, err)
	}
	return &reaction, nil
}

// RemoveReaction removes the authenticated user's emoji reaction from
// a post.
func (c *Client) RemoveReaction(ctx context.Context, postID, emojiName string) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	path := "/users/" + url.PathEscape(userID) + "/posts/" + url.PathEscape(postID) +
		"/reactions/" + url.PathEscape(emojiName)
	if err := c.deleteJSON(ctx, path); err != nil {
		return fmt.Errorf("mattermost: remove reaction %q from %q: %w", emojiName, postID, err)
	}
	return nil
}

// PostReactions lists all reactions on a post.
func (c *Client) PostReactions(ctx context.Context, postID string) ([]Reaction, error) {
	var reactions []Reaction
	path := "/posts/" + url.PathEscape(postID) + "/reactions"
	if err := c.getJSON(ctx, path, nil, &reactions); err != nil {
		return nil, fmt.Errorf("mattermost: reactions on %q: %w", postID, err)
	}
	return reactions, nil
}

// CustomEmojis lists a page of the server's custom emojis.
func (c *Client) CustomEmojis(ctx context.Context, page, perPage int) ([]Emoji, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	var emojis []Emoji
	if err := c.getJSON(ctx, "/emoji", query, &emojis); err != nil {
		return nil, fmt.Errorf("mattermost: list custom emojis: %w", err)
	}
	return emojis, nil
}

// EmojiByName fetches a custom emoji by name.
func (c *Client) EmojiByName(ctx context.Context, name string) (*Emoji, error) {
	var emoji Emoji
	if err := c.getJSON(ctx, "/emoji/name/"+url.PathEscape(name), nil, &emoji); err != nil {
		return nil, fmt.Errorf("mattermost: get emoji %q: %w", name, err)
	}
	return &emoji, nil
}

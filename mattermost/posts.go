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

// LatestPosts fetches the most recent page of posts in a channel.
// PostList.Order is newest-first; use InOrder for display order.
func (c *Client) LatestPosts(ctx context.Context, channelID string, perPage int) (*PostList, error) {
	query := url.Values{"per_page": {strconv.Itoa(perPage)}}
	return c.channelPosts(ctx, channelID, query)
}

// PostsBefore fetches the page of posts older than postID.
func (c *Client) PostsBefore(ctx context.Context, channelID, postID string, perPage int) (*PostList, error) {
	query := url.Values{
		"before":   {postID},
		"per_page": {strconv.Itoa(perPage)},
	}
	return c.channelPosts(ctx, channelID, query)
}

// PostsAfter fetches the page of posts newer than postID. Used to
// backfill a gap after a reconnect.
func (c *Client) PostsAfter(ctx context.Context, channelID, postID string, perPage int) (*PostList, error) {
	query := url.Values{
		"after":    {postID},
		"per_page": {strconv.Itoa(perPage)},
	}
	return c.channelPosts(ctx, channelID, query)
}

func (c *Client) channelPosts(ctx context.Context, channelID string, query url.Values) (*PostList, error) {
	var list PostList
	path := "/channels/" + url.PathEscape(channelID) + "/posts"
	if err := c.getJSON(ctx, path, query, &list); err != nil {
		return nil, fmt.Errorf("mattermost: posts in channel %q: %w", channelID, err)
	}
	return &list, nil
}

// CreatePostRequest describes a post to create. RootID makes the post
// a threaded reply.
type CreatePostRequest struct {
	ChannelID string         `json:"channel_id"`
	Message   string         `json:"message"`
	RootID    string         `json:"root_id,omitempty"`
	FileIDs   []string       `json:"file_ids,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
}

// CreatePost sends a message to a channel.
func (c *Client) CreatePost(ctx context.Context, request CreatePostRequest) (*Post, error) {
	if request.ChannelID == "" {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: CreatePost requires a channel ID")
	}
	var post Post
	if err := c.postJSON(ctx, "/posts", request, &post); err != nil {
		return nil, fmt.Errorf("mattermost: create post in %q: %w", request.ChannelID, err)
	}
	return &post, nil
}

// UpdatePost replaces a post's message text. Only the author may edit.
func (c *Client) UpdatePost(ctx context.Context, postID, message string) (*Post, error) {
	request := struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}{ID: postID, Message: message}
	var post Post
	path := "/posts/" + url.PathEscape(postID) + "/patch"
	if err := c.putJSON(ctx, path, request, &post); err != nil {
		return nil, fmt.Errorf("mattermost: update post %q: %w", postID, err)
	}
	return &post, nil
}

// DeletePost deletes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := c.deleteJSON(ctx, "/posts/"+url.PathEscape(postID)); err != nil {
		return fmt.Errorf("mattermost: delete post %q: %w", postID, err)
	}
	return nil
}

// GetPost fetches a single post by ID.
func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	var post Post
	if err := c.getJSON(ctx, "/posts/"+url.PathEscape(postID), nil, &post); err != nil {
		return nil, fmt.Errorf("mattermost: get post %q: %w", postID, err)
	}
	return &post, nil
}

// SearchPosts runs a full-text search over the active team's posts.
// The terms use Mattermost search syntax (from:, in:, quoted phrases).
func (c *Client) SearchPosts(ctx context.Context, terms string, orSearch bool) (*PostList, error) {
	teamID, err := c.requireTeamID("SearchPosts")
	if err != nil {
		return nil, err
	}
	request := struct {
		Terms    string `json:"terms"`
		OrSearch bool   `json:"is_or_search"`
	}{Terms: terms, OrSearch: orSearch}
	var list PostList
	path := "/teams/" + url.PathEscape(teamID) + "/posts/search"
	if err := c.postJSON(ctx, path, request, &list); err != nil {
		return nil, fmt.Errorf("mattermost: search posts: %w", err)
	}
	return &list, nil
}

// PinPost pins a post to its channel.
func (c *Client) PinPost(ctx context.Context, postID string) error {
	path := "/posts/" + url.PathEscape(postID) + "/pin"
	if err := c.postJSON(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("mattermost: pin post %q: %w", postID, err)
	}
	return nil
}

// UnpinPost unpins a post from its channel.
func (c *Client) UnpinPost(ctx context.Context, postID string) error {
	path := "/posts/" + url.PathEscape(postID) + "/unpin"
	if err := c.postJSON(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("mattermost: unpin post %q: %w", postID, err)
	}
	return nil
}

// PinnedPosts lists a channel's pinned posts.
func (c *Client) PinnedPosts(ctx context.Context, channelID string) (*PostList, error) {
	var list PostList
	path := "/channels/" + url.PathEscape(channelID) + "/pinned"
	if err := c.getJSON(ctx, path, nil, &list); err != nil {
		return nil, fmt.Errorf("mattermost: pinned posts in %q: %w", channelID, err)
	}
	return &list, nil
}

// GetThread fetches a root post together with all of its replies.
func (c *Client) GetThread(ctx context.Context, rootPostID string) (*PostList, error) {
	var list PostList
	path := "/posts/" + url.PathEscape(rootPostID) + "/thread"
	if err := c.getJSON(ctx, path, nil, &list); err != nil {
		return nil, fmt.Errorf("mattermost: get thread %q: %w", rootPostID, err)
	}
	return &list, nil
}

// FollowThread subscribes the authenticated user to a thread's
// notifications.
func (c *Client) FollowThread(ctx context.Context, rootPostID string) error {
	return c.setThreadFollowing(ctx, rootPostID, true)
}

// UnfollowThread unsubscribes the authenticated user from a thread.
func (c *Client) UnfollowThread(ctx context.Context, rootPostID string) error {
	return c.setThreadFollowing(ctx, rootPostID, false)
}

func (c *Client) setThreadFollowing(ctx context.Context, rootPostID string, following bool) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	teamID, err := c.requireTeamID("thread following")
	if err != nil {
		return err
	}
	path := "/users/" + url.PathEscape(userID) + "/teams/" + url.PathEscape(teamID) +
		"/threads/" + url.PathEscape(rootPostID) + "/following"
	if following {
		err = c.putJSON(ctx, path, nil, nil)
	} else {
		err = c.deleteJSON(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("mattermost: set thread %q following=%t: %w", rootPostID, following, err)
	}
	return nil
}

// MarkThreadRead clears a thread's unread state for the authenticated
// user.
func (c *Client) MarkThreadRead(ctx context.Context, rootPostID string) error {
	userID, err := c.requireUserID()
	if err != nil {
		return err
	}
	teamID, err := c.requireTeamID("MarkThreadRead")
	if err != nil {
		return err
	}
	path := "/users/" + url.PathEscape(userID) + "/teams/" + url.PathEscape(teamID) +
		"/threads/" + url.PathEscape(rootPostID) + "/read"
	if err := c.putJSON(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("mattermost: mark thread %q read: %w", rootPostID, err)
	}
	return nil
}

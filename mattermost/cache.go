// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"sync"
	"time"

	"github.com/bureau-foundation/communicator/lib/clock"
)

// Directory entities change rarely relative to how often message
// handling needs them, so repeated lookups are served from short-lived
// per-kind caches. The platform package invalidates entries from its
// event delivery path when a stream event modifies the cached entity.
const (
	userCacheTTL    = 5 * time.Minute
	channelCacheTTL = 2 * time.Minute
	teamCacheTTL    = 10 * time.Minute
)

// ttlCache is a string-keyed cache whose entries expire after a fixed
// TTL. Expired entries are dropped on access. Safe for concurrent use.
type ttlCache[V any] struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]ttlEntry[V]
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func newTTLCache[V any](clk clock.Clock, ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[string]ttlEntry[V]),
	}
}

func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && c.clock.Now().Before(entry.expiresAt) {
		return entry.value, true
	}
	if ok {
		delete(c.entries, key)
	}
	var zero V
	return zero, false
}

func (c *ttlCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

func (c *ttlCache[V]) invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

func (c *ttlCache[V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]ttlEntry[V])
}

func (c *ttlCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CachedUser returns the user by ID, serving repeated lookups from the
// user cache. A miss or expired entry falls through to UserByID and
// refills the cache.
func (c *Client) CachedUser(ctx context.Context, userID string) (*User, error) {
	if c.userCache == nil {
		return c.UserByID(ctx, userID)
	}
	if user, ok := c.userCache.get(userID); ok {
		return &user, nil
	}
	user, err := c.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.userCache.set(userID, *user)
	return user, nil
}

// CachedUsers returns the given users, fetching only the IDs not
// already cached in a single batch call. Result order does not follow
// userIDs.
func (c *Client) CachedUsers(ctx context.Context, userIDs []string) ([]User, error) {
	if c.userCache == nil {
		return c.UsersByIDs(ctx, userIDs)
	}
	users := make([]User, 0, len(userIDs))
	var missing []string
	for _, userID := range userIDs {
		if user, ok := c.userCache.get(userID); ok {
			users = append(users, user)
		} else {
			missing = append(missing, userID)
		}
	}
	if len(missing) > 0 {
		fetched, err := c.UsersByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, user := range fetched {
			c.userCache.set(user.ID, user)
		}
		users = append(users, fetched...)
	}
	return users, nil
}

// CachedChannel is GetChannel behind the channel cache.
func (c *Client) CachedChannel(ctx context.Context, channelID string) (*Channel, error) {
	if c.channelCache == nil {
		return c.GetChannel(ctx, channelID)
	}
	if channel, ok := c.channelCache.get(channelID); ok {
		return &channel, nil
	}
	channel, err := c.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	c.channelCache.set(channelID, *channel)
	return channel, nil
}

// CachedTeam is GetTeam behind the team cache.
func (c *Client) CachedTeam(ctx context.Context, teamID string) (*Team, error) {
	if c.teamCache == nil {
		return c.GetTeam(ctx, teamID)
	}
	if team, ok := c.teamCache.get(teamID); ok {
		return &team, nil
	}
	team, err := c.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	c.teamCache.set(teamID, *team)
	return team, nil
}

// InvalidateUser drops the user's cache entry. Called when a stream
// event reports the user changed server-side.
func (c *Client) InvalidateUser(userID string) {
	if c.userCache != nil {
		c.userCache.invalidate(userID)
	}
}

// InvalidateChannel drops the channel's cache entry.
func (c *Client) InvalidateChannel(channelID string) {
	if c.channelCache != nil {
		c.channelCache.invalidate(channelID)
	}
}

// InvalidateTeam drops the team's cache entry.
func (c *Client) InvalidateTeam(teamID string) {
	if c.teamCache != nil {
		c.teamCache.invalidate(teamID)
	}
}

// InvalidateCaches empties all caches. Called on structural changes
// (team switch) that may affect entries across kinds.
func (c *Client) InvalidateCaches() {
	if c.userCache != nil {
		c.userCache.clear()
	}
	if c.channelCache != nil {
		c.channelCache.clear()
	}
	if c.teamCache != nil {
		c.teamCache.clear()
	}
}

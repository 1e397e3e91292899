// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/communicator/lib/clock"
)

// cacheTestClient is newTestClient with an injected fake clock so
// tests control cache expiry.
func cacheTestClient(t *testing.T, handler http.Handler, clk clock.Clock) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{ServerURL: server.URL, Clock: clk})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := client.setSession("test-token", "user1"); err != nil {
		t.Fatalf("setSession failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// countingDirectory serves user, channel, and team lookups and counts
// the requests per path.
type countingDirectory struct {
	fetches map[string]int
}

func newCountingDirectory() *countingDirectory {
	return &countingDirectory{fetches: make(map[string]int)}
}

func (d *countingDirectory) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	path := strings.TrimPrefix(request.URL.Path, "/api/v4")
	d.fetches[path]++
	switch {
	case path == "/users/ids":
		var ids []string
		json.NewDecoder(request.Body).Decode(&ids)
		users := make([]User, 0, len(ids))
		for _, id := range ids {
			users = append(users, User{ID: id, Username: "name-" + id})
		}
		writeJSON(writer, users)
	case strings.HasPrefix(path, "/users/"):
		id := strings.TrimPrefix(path, "/users/")
		writeJSON(writer, User{ID: id, Username: "name-" + id})
	case strings.HasPrefix(path, "/channels/"):
		id := strings.TrimPrefix(path, "/channels/")
		writeJSON(writer, Channel{ID: id, Name: "chan-" + id})
	case strings.HasPrefix(path, "/teams/"):
		id := strings.TrimPrefix(path, "/teams/")
		writeJSON(writer, Team{ID: id, Name: "team-" + id})
	default:
		writeAPIError(writer, http.StatusNotFound, "api.not_found.app_error", "not found")
	}
}

func TestCachedUserServesRepeatLookups(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	directory := newCountingDirectory()
	client := cacheTestClient(t, directory, fake)

	for i := 0; i < 3; i++ {
		user, err := client.CachedUser(context.Background(), "u1")
		if err != nil {
			t.Fatalf("CachedUser failed: %v", err)
		}
		if user.Username != "name-u1" {
			t.Fatalf("unexpected user: %+v", user)
		}
	}
	if got := directory.fetches["/users/u1"]; got != 1 {
		t.Errorf("expected 1 fetch for cached lookups, got %d", got)
	}

	// Past the TTL the entry expires and the next lookup refetches.
	fake.Advance(userCacheTTL + time.Second)
	if _, err := client.CachedUser(context.Background(), "u1"); err != nil {
		t.Fatalf("CachedUser after expiry failed: %v", err)
	}
	if got := directory.fetches["/users/u1"]; got != 2 {
		t.Errorf("expected refetch after expiry, got %d fetches", got)
	}
}

func TestCachedUserInvalidation(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	directory := newCountingDirectory()
	client := cacheTestClient(t, directory, fake)

	if _, err := client.CachedUser(context.Background(), "u1"); err != nil {
		t.Fatalf("CachedUser failed: %v", err)
	}
	client.InvalidateUser("u1")
	if _, err := client.CachedUser(context.Background(), "u1"); err != nil {
		t.Fatalf("CachedUser after invalidation failed: %v", err)
	}
	if got := directory.fetches["/users/u1"]; got != 2 {
		t.Errorf("expected refetch after invalidation, got %d fetches", got)
	}
}

func TestCachedUsersFetchesOnlyMisses(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	directory := newCountingDirectory()
	client := cacheTestClient(t, directory, fake)

	// Prime u1; the batch then only needs u2.
	if _, err := client.CachedUser(context.Background(), "u1"); err != nil {
		t.Fatalf("CachedUser failed: %v", err)
	}
	users, err := client.CachedUsers(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("CachedUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if got := directory.fetches["/users/ids"]; got != 1 {
		t.Errorf("expected 1 batch fetch, got %d", got)
	}

	// Fully cached: no further requests at all.
	if _, err := client.CachedUsers(context.Background(), []string{"u1", "u2"}); err != nil {
		t.Fatalf("second CachedUsers failed: %v", err)
	}
	if got := directory.fetches["/users/ids"]; got != 1 {
		t.Errorf("fully cached batch hit the server: %d fetches", got)
	}
}

func TestCachedChannelExpiry(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	directory := newCountingDirectory()
	client := cacheTestClient(t, directory, fake)

	for i := 0; i < 2; i++ {
		if _, err := client.CachedChannel(context.Background(), "c1"); err != nil {
			t.Fatalf("CachedChannel failed: %v", err)
		}
	}
	if got := directory.fetches["/channels/c1"]; got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}

	fake.Advance(channelCacheTTL + time.Second)
	if _, err := client.CachedChannel(context.Background(), "c1"); err != nil {
		t.Fatalf("CachedChannel after expiry failed: %v", err)
	}
	if got := directory.fetches["/channels/c1"]; got != 2 {
		t.Errorf("expected refetch after expiry, got %d fetches", got)
	}
}

func TestCachedTeamAndClear(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	directory := newCountingDirectory()
	client := cacheTestClient(t, directory, fake)

	if _, err := client.CachedTeam(context.Background(), "t1"); err != nil {
		t.Fatalf("CachedTeam failed: %v", err)
	}
	if _, err := client.CachedTeam(context.Background(), "t1"); err != nil {
		t.Fatalf("second CachedTeam failed: %v", err)
	}
	if got := directory.fetches["/teams/t1"]; got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}

	client.InvalidateCaches()
	if client.teamCache.size() != 0 || client.userCache.size() != 0 || client.channelCache.size() != 0 {
		t.Error("InvalidateCaches left entries behind")
	}
	if _, err := client.CachedTeam(context.Background(), "t1"); err != nil {
		t.Fatalf("CachedTeam after clear failed: %v", err)
	}
	if got := directory.fetches["/teams/t1"]; got != 2 {
		t.Errorf("expected refetch after clear, got %d fetches", got)
	}
}

func TestDisabledCacheAlwaysFetches(t *testing.T) {
	directory := newCountingDirectory()
	server := httptest.NewServer(directory)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{ServerURL: server.URL, DisableCache: true})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	for i := 0; i < 2; i++ {
		if _, err := client.CachedUser(context.Background(), "u1"); err != nil {
			t.Fatalf("CachedUser failed: %v", err)
		}
	}
	if got := directory.fetches["/users/u1"]; got != 2 {
		t.Errorf("disabled cache served a stale lookup: %d fetches", got)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"encoding/json"
	"testing"

	"github.com/bureau-foundation/communicator/mattermost"
)

func decodeFrame(t *testing.T, payload string) *frame {
	t.Helper()
	var f frame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	return &f
}

func TestConvertPostedFrame(t *testing.T) {
	// The server embeds the post as a JSON string inside the data
	// object.
	f := decodeFrame(t, `{
		"event": "posted",
		"data": {"post": "{\"id\":\"post1\",\"channel_id\":\"chan1\",\"message\":\"hello\"}"},
		"broadcast": {"channel_id": "chan1"},
		"seq": 7
	}`)

	event, ok := convertFrame(f)
	if !ok {
		t.Fatal("posted frame produced no event")
	}
	if event.Type != EventMessagePosted {
		t.Errorf("unexpected type: %s", event.Type)
	}
	if event.Post == nil || event.Post.ID != "post1" || event.Post.Message != "hello" {
		t.Errorf("unexpected post payload: %+v", event.Post)
	}
}

func TestConvertStatusChangeFrame(t *testing.T) {
	f := decodeFrame(t, `{
		"event": "status_change",
		"data": {"user_id": "userB", "status": "do_not_disturb"},
		"broadcast": {}
	}`)

	event, ok := convertFrame(f)
	if !ok {
		t.Fatal("status_change frame produced no event")
	}
	if event.Type != EventStatusChanged || event.UserID != "userB" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Status != mattermost.StatusDND {
		t.Errorf("status not normalized: %v", event.Status)
	}
}

func TestConvertIgnoredFrames(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"hello greeting", `{"event": "hello", "data": {}, "broadcast": {}}`},
		{"unknown kind", `{"event": "custom_plugin_event", "data": {}, "broadcast": {}}`},
		{"posted with broken payload", `{"event": "posted", "data": {"post": "not json"}, "broadcast": {}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := convertFrame(decodeFrame(t, tc.payload)); ok {
				t.Error("frame unexpectedly produced an event")
			}
		})
	}
}

func TestConvertMessageDeletedFrame(t *testing.T) {
	f := decodeFrame(t, `{
		"event": "post_deleted",
		"data": {"post": "post1"},
		"broadcast": {"channel_id": "chan1"}
	}`)

	event, ok := convertFrame(f)
	if !ok {
		t.Fatal("post_deleted frame produced no event")
	}
	if event.Type != EventMessageDeleted || event.PostID != "post1" || event.ChannelID != "chan1" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestDecodeStatusMap(t *testing.T) {
	t.Run("flat object", func(t *testing.T) {
		var data map[string]json.RawMessage
		if err := json.Unmarshal([]byte(`{"u1": "online", "u2": "away"}`), &data); err != nil {
			t.Fatal(err)
		}
		statuses := decodeStatusMap(data)
		if statuses["u1"] != mattermost.StatusOnline || statuses["u2"] != mattermost.StatusAway {
			t.Errorf("unexpected map: %v", statuses)
		}
	})

	t.Run("wrapped under statuses", func(t *testing.T) {
		var data map[string]json.RawMessage
		if err := json.Unmarshal([]byte(`{"statuses": {"u1": "offline"}}`), &data); err != nil {
			t.Fatal(err)
		}
		statuses := decodeStatusMap(data)
		if statuses["u1"] != mattermost.StatusOffline {
			t.Errorf("unexpected map: %v", statuses)
		}
	})
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"encoding/json"

	"github.com/bureau-foundation/communicator/mattermost"
)

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	// EventMessagePosted carries Post: a new message in a channel.
	EventMessagePosted EventType = "message_posted"
	// EventMessageUpdated carries Post: an edited message.
	EventMessageUpdated EventType = "message_updated"
	// EventMessageDeleted carries PostID and ChannelID.
	EventMessageDeleted EventType = "message_deleted"
	// EventTyping carries UserID and ChannelID.
	EventTyping EventType = "typing"
	// EventUserJoinedChannel carries UserID and ChannelID.
	EventUserJoinedChannel EventType = "user_joined_channel"
	// EventUserLeftChannel carries UserID and ChannelID.
	EventUserLeftChannel EventType = "user_left_channel"
	// EventChannelCreated carries Channel.
	EventChannelCreated EventType = "channel_created"
	// EventChannelUpdated carries Channel.
	EventChannelUpdated EventType = "channel_updated"
	// EventChannelDeleted carries ChannelID.
	EventChannelDeleted EventType = "channel_deleted"
	// EventStatusChanged carries UserID and Status: a single user's
	// presence changed.
	EventStatusChanged EventType = "status_changed"
	// EventReactionAdded carries Reaction.
	EventReactionAdded EventType = "reaction_added"
	// EventReactionRemoved carries Reaction.
	EventReactionRemoved EventType = "reaction_removed"
	// EventStatusesReply carries SeqReply and Statuses: the correlated
	// answer to RequestAllStatuses or RequestUsersStatuses.
	EventStatusesReply EventType = "statuses_reply"
	// EventAck carries SeqReply: the server acknowledged a stream
	// request that returns no data (SendTyping).
	EventAck EventType = "ack"
)

// Event is one unit delivered through the stream: either a
// server-initiated notification or the correlated reply to an earlier
// Request* call. Only the fields relevant to Type are populated.
// Events are immutable once enqueued.
type Event struct {
	Type EventType

	// SeqReply is the sequence number of the request this event
	// answers. Zero for server-initiated events.
	SeqReply int64

	// Error is the server's error message when a correlated request
	// was rejected. Empty on success and on server-initiated events.
	Error string

	Post      *mattermost.Post
	Channel   *mattermost.Channel
	Reaction  *mattermost.Reaction
	UserID    string
	ChannelID string
	PostID    string
	Status    mattermost.Status
	// Statuses maps user ID to presence for EventStatusesReply.
	Statuses map[string]mattermost.Status
}

// frame is the wire shape of every websocket message from the server.
// Server-initiated events populate Event/Data/Broadcast; replies to
// client actions populate Status and SeqReply instead.
type frame struct {
	Event     string                     `json:"event"`
	Data      map[string]json.RawMessage `json:"data"`
	Broadcast frameBroadcast             `json:"broadcast"`
	Seq       int64                      `json:"seq"`
	SeqReply  int64                      `json:"seq_reply"`
	Status    string                     `json:"status"`
	Error     *frameError                `json:"error"`
}

type frameBroadcast struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	TeamID    string `json:"team_id"`
}

type frameError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// dataString extracts a plain string field from a frame's data map.
func (f *frame) dataString(key string) string {
	raw, ok := f.Data[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// convertFrame maps a server-initiated frame onto an Event. The second
// return is false for frames that produce no event: the hello
// greeting, event kinds this engine does not model, and frames whose
// payload fails to decode.
func convertFrame(f *frame) (Event, bool) {
	switch f.Event {
	case "posted":
		post, ok := decodeEmbeddedPost(f)
		if !ok {
			return Event{}, false
		}
		return Event{Type: EventMessagePosted, Post: post}, true

	case "post_edited":
		post, ok := decodeEmbeddedPost(f)
		if !ok {
			return Event{}, false
		}
		return Event{Type: EventMessageUpdated, Post: post}, true

	case "post_deleted":
		return Event{
			Type:      EventMessageDeleted,
			PostID:    f.dataString("post"),
			ChannelID: f.Broadcast.ChannelID,
		}, true

	case "typing":
		return Event{
			Type:      EventTyping,
			UserID:    f.dataString("user_id"),
			ChannelID: f.Broadcast.ChannelID,
		}, true

	case "user_added":
		return Event{
			Type:      EventUserJoinedChannel,
			UserID:    f.dataString("user_id"),
			ChannelID: f.Broadcast.ChannelID,
		}, true

	case "user_removed":
		return Event{
			Type:      EventUserLeftChannel,
			UserID:    f.dataString("user_id"),
			ChannelID: f.Broadcast.ChannelID,
		}, true

	case "channel_created", "channel_updated":
		channel, ok := decodeEmbeddedChannel(f)
		if !ok {
			return Event{}, false
		}
		eventType := EventChannelCreated
		if f.Event == "channel_updated" {
			eventType = EventChannelUpdated
		}
		return Event{Type: eventType, Channel: channel}, true

	case "channel_deleted":
		return Event{
			Type:      EventChannelDeleted,
			ChannelID: f.Broadcast.ChannelID,
		}, true

	case "status_change":
		return Event{
			Type:   EventStatusChanged,
			UserID: f.dataString("user_id"),
			Status: mattermost.ParseStatus(f.dataString("status")),
		}, true

	case "reaction_added", "reaction_removed":
		reaction, ok := decodeEmbeddedReaction(f)
		if !ok {
			return Event{}, false
		}
		eventType := EventReactionAdded
		if f.Event == "reaction_removed" {
			eventType = EventReactionRemoved
		}
		return Event{Type: eventType, Reaction: reaction}, true

	case "hello":
		// Connection greeting, not a caller-visible event.
		return Event{}, false

	default:
		return Event{}, false
	}
}

// decodeEmbeddedPost unpacks the "post" data field, which the server
// delivers as a JSON string containing JSON.
func decodeEmbeddedPost(f *frame) (*mattermost.Post, bool) {
	encoded := f.dataString("post")
	if encoded == "" {
		return nil, false
	}
	var post mattermost.Post
	if err := json.Unmarshal([]byte(encoded), &post); err != nil {
		return nil, false
	}
	return &post, true
}

func decodeEmbeddedChannel(f *frame) (*mattermost.Channel, bool) {
	encoded := f.dataString("channel")
	if encoded == "" {
		return nil, false
	}
	var channel mattermost.Channel
	if err := json.Unmarshal([]byte(encoded), &channel); err != nil {
		return nil, false
	}
	return &channel, true
}

func decodeEmbeddedReaction(f *frame) (*mattermost.Reaction, bool) {
	encoded := f.dataString("reaction")
	if encoded == "" {
		return nil, false
	}
	var reaction mattermost.Reaction
	if err := json.Unmarshal([]byte(encoded), &reaction); err != nil {
		return nil, false
	}
	return &reaction, true
}

// decodeStatusMap parses a reply frame's data payload into a user-ID
// to presence map. Reply data arrives either as a flat user→status
// object or wrapped under a "statuses" key, depending on the action.
func decodeStatusMap(data map[string]json.RawMessage) map[string]mattermost.Status {
	source := data
	if wrapped, ok := data["statuses"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err == nil {
			source = inner
		}
	}
	statuses := make(map[string]mattermost.Status, len(source))
	for userID, raw := range source {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		statuses[userID] = mattermost.ParseStatus(value)
	}
	return statuses
}

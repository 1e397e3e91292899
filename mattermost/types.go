// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

// User is a Mattermost user record. Timestamps are milliseconds since
// the Unix epoch, as the server reports them.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Roles     string `json:"roles"`
	CreateAt  int64  `json:"create_at"`
	UpdateAt  int64  `json:"update_at"`
	DeleteAt  int64  `json:"delete_at"`
}

// DisplayName returns the best human-readable name for the user:
// first/last name when set, then nickname, then username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Nickname != "":
		return u.Nickname
	default:
		return u.Username
	}
}

// ChannelType discriminates channel kinds: "O" open, "P" private,
// "D" direct message, "G" group message.
type ChannelType string

const (
	ChannelOpen    ChannelType = "O"
	ChannelPrivate ChannelType = "P"
	ChannelDirect  ChannelType = "D"
	ChannelGroup   ChannelType = "G"
)

// Channel is a Mattermost channel record.
type Channel struct {
	ID            string      `json:"id"`
	TeamID        string      `json:"team_id"`
	Type          ChannelType `json:"type"`
	Name          string      `json:"name"`
	DisplayName   string      `json:"display_name"`
	Header        string      `json:"header"`
	Purpose       string      `json:"purpose"`
	CreatorID     string      `json:"creator_id"`
	TotalMsgCount int64       `json:"total_msg_count"`
	CreateAt      int64       `json:"create_at"`
	UpdateAt      int64       `json:"update_at"`
	DeleteAt      int64       `json:"delete_at"`
	LastPostAt    int64       `json:"last_post_at"`
}

// ChannelMember links a user to a channel.
type ChannelMember struct {
	ChannelID    string            `json:"channel_id"`
	UserID       string            `json:"user_id"`
	Roles        string            `json:"roles"`
	LastViewedAt int64             `json:"last_viewed_at"`
	MentionCount int64             `json:"mention_count"`
	MsgCount     int64             `json:"msg_count"`
	NotifyProps  map[string]string `json:"notify_props"`
}

// ChannelUnread reports unread message and mention counts for one
// channel.
type ChannelUnread struct {
	TeamID       string `json:"team_id"`
	ChannelID    string `json:"channel_id"`
	MsgCount     int64  `json:"msg_count"`
	MentionCount int64  `json:"mention_count"`
	LastViewedAt int64  `json:"last_viewed_at"`
}

// Team is a Mattermost team record.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Email       string `json:"email"`
	CreateAt    int64  `json:"create_at"`
	UpdateAt    int64  `json:"update_at"`
	DeleteAt    int64  `json:"delete_at"`
}

// Post is a Mattermost post record. RootID is set on thread replies.
type Post struct {
	ID        string         `json:"id"`
	ChannelID string         `json:"channel_id"`
	UserID    string         `json:"user_id"`
	RootID    string         `json:"root_id"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	FileIDs   []string       `json:"file_ids,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
	CreateAt  int64          `json:"create_at"`
	UpdateAt  int64          `json:"update_at"`
	DeleteAt  int64          `json:"delete_at"`
	EditAt    int64          `json:"edit_at"`
	IsPinned  bool           `json:"is_pinned"`
}

// PostList is the server's ordered post container: Order holds post
// IDs newest-first, Posts maps ID to record.
type PostList struct {
	Order []string        `json:"order"`
	Posts map[string]Post `json:"posts"`
}

// InOrder returns the posts in the server's Order sequence, skipping
// IDs the Posts map does not contain.
func (l PostList) InOrder() []Post {
	ordered := make([]Post, 0, len(l.Order))
	for _, id := range l.Order {
		if post, ok := l.Posts[id]; ok {
			ordered = append(ordered, post)
		}
	}
	return ordered
}

// FileInfo describes an uploaded file attachment.
type FileInfo struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreateAt  int64  `json:"create_at"`
}

// Emoji is a custom emoji record.
type Emoji struct {
	ID        string `json:"id"`
	CreatorID string `json:"creator_id"`
	Name      string `json:"name"`
	CreateAt  int64  `json:"create_at"`
	UpdateAt  int64  `json:"update_at"`
	DeleteAt  int64  `json:"delete_at"`
}

// Reaction records one user's emoji reaction to a post.
type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	EmojiName string `json:"emoji_name"`
	CreateAt  int64  `json:"create_at"`
}

// Preference is one entry in a user's preference store, addressed by
// (category, name).
type Preference struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// Status is a user presence value. The server's closed set is online,
// away, dnd, and offline; anything else decodes as StatusUnknown.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusDND     Status = "dnd"
	StatusOffline Status = "offline"
	StatusUnknown Status = ""
)

// ParseStatus maps a server status string onto the closed Status set.
// The server sometimes spells do-not-disturb out in full.
func ParseStatus(raw string) Status {
	switch raw {
	case "online":
		return StatusOnline
	case "away":
		return StatusAway
	case "dnd", "do_not_disturb":
		return StatusDND
	case "offline":
		return StatusOffline
	default:
		return StatusUnknown
	}
}

// UserStatus pairs a user ID with their presence value, as returned by
// the status endpoints.
type UserStatus struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
	Manual bool   `json:"manual"`
}

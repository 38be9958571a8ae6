package model

import "time"

// Community is the top-level group that channels belong to
type Community struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Channel is a named sub-space within a community where threads are posted.
// A channel is soft-deleted by setting DeletedAt; soft-deleted channels are
// excluded from all read queries. ArchivedAt marks a reversible archive.
type Channel struct {
	ID          string     `json:"id" db:"id"`
	CommunityID string     `json:"community_id" db:"community_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Slug        string     `json:"slug" db:"slug"`
	IsPrivate   bool       `json:"is_private" db:"is_private"`
	IsDefault   bool       `json:"is_default" db:"is_default"`
	Members     []string   `json:"members,omitempty" db:"members"` // legacy embedded member list
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty" db:"archived_at"`
}

// Thread is a conversation posted in a channel
type Thread struct {
	ID        string     `json:"id" db:"id"`
	ChannelID string     `json:"channel_id" db:"channel_id"`
	CreatorID string     `json:"creator_id" db:"creator_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// UserChannel is the membership join record between a user and a channel.
// A user is an active member iff IsMember is set and neither IsBlocked nor
// IsPending is.
type UserChannel struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	IsMember  bool      `json:"is_member" db:"is_member"`
	IsBlocked bool      `json:"is_blocked" db:"is_blocked"`
	IsPending bool      `json:"is_pending" db:"is_pending"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChannelMetaData holds the per-channel counts shown on channel headers
type ChannelMetaData struct {
	ThreadCount int `json:"thread_count"`
	MemberCount int `json:"member_count"`
}

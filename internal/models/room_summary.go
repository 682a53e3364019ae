package models

import "time"

// RoomSummary is one entry in a user's room list. Soft-left rooms are
// included; IsActive tells the caller which ones they have left.
type RoomSummary struct {
	RoomID             string     `json:"room_id"`
	OtherUserID        string     `json:"other_user_id"`
	OtherDisplayName   string     `json:"other_display_name"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	IsActive           bool       `json:"is_active"`
}

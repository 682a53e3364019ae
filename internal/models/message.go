package models

import "time"

// Message is a persisted chat message. Immutable once created; room history
// is ordered by CreatedAt with ID breaking ties (insertion order).
type Message struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RoomID   string `gorm:"not null;index:idx_room_created" json:"room_id"`
	SenderID string `gorm:"not null" json:"sender_id"`
	// SenderDisplayName is denormalized at send time so history renders
	// without a user lookup per message.
	SenderDisplayName string    `json:"sender_display_name"`
	Body              string    `gorm:"type:text;not null" json:"body"`
	CreatedAt         time.Time `gorm:"index:idx_room_created" json:"sent_at"`
}

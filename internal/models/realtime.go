package models

import "time"

// Event types pushed over a live connection.
const (
	EventMessage    = "message"     // chat message fan-out
	EventMatchFound = "match_found" // targeted notification after a handshake completes
)

// Event is the JSON frame exchanged over a live connection, both for
// targeted notifications and for room broadcasts.
type Event struct {
	Type       string    `json:"type"`
	RoomID     string    `json:"room_id,omitempty"`
	SenderID   string    `json:"sender_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`
	Body       string    `json:"body,omitempty"`
	MovieID    int64     `json:"movie_id,omitempty"`
	// OtherUserID is set on match_found: the user the recipient was matched with.
	OtherUserID string    `json:"other_user_id,omitempty"`
	MessageID   uint      `json:"message_id,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// InboundFrame is what a websocket client sends: currently only chat
// messages addressed to a room.
type InboundFrame struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Body   string `json:"body"`
}

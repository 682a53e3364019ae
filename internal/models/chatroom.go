package models

import "time"

// ChatRoom is a 1-on-1 chat session created by a confirmed mutual match.
// PairKey is the unordered user pair ("smaller:larger"); its unique index is
// what guarantees that two opposite-direction match requests racing each
// other commit exactly one room.
type ChatRoom struct {
	RoomID    string    `gorm:"primaryKey" json:"room_id"` // UUID
	PairKey   string    `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	Memberships []ChatMembership `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
}

// PairKey builds the canonical unordered key for two user IDs.
func PairKey(userA, userB string) string {
	if userA < userB {
		return userA + ":" + userB
	}
	return userB + ":" + userA
}

// ChatMembership is one user's seat in a room. Leaving flips IsActive off
// (soft leave) rather than deleting the row, so history stays reachable.
type ChatMembership struct {
	RoomID   string     `gorm:"primaryKey" json:"room_id"`
	UserID   string     `gorm:"primaryKey" json:"user_id"`
	IsActive bool       `json:"is_active"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
}

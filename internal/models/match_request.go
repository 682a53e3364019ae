package models

import "time"

// MatchRequest is one directed "I want to chat with you about this movie"
// action. The unique index on the ordered (requestor, target, movie) triple
// makes a replayed request a no-op instead of a second row, and the rows are
// never updated or deleted: they double as the audit trail of the handshake.
//
// A request from A to B and the reciprocal request from B to A are two
// distinct rows; both exist once a mutual match has been confirmed.
type MatchRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RequestorID  string    `gorm:"uniqueIndex:idx_match_request_triple;not null" json:"requestor_id"`
	TargetUserID string    `gorm:"uniqueIndex:idx_match_request_triple;not null" json:"target_user_id"`
	MovieID      int64     `gorm:"uniqueIndex:idx_match_request_triple;not null" json:"movie_id"`
	CreatedAt    time.Time `json:"created_at"`
}

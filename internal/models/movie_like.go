package models

import "time"

// MovieLike records that a user marked a catalog movie as liked (or took
// the like back). One row per (user, movie); flipping Liked keeps the row.
type MovieLike struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	MovieID   int64     `gorm:"primaryKey" json:"movie_id"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

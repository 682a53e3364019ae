package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is an account in the system. Likes, match requests and chat
// memberships all reference users by ID.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"` // UUID
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	// DisplayName is what other users see on messages and candidate lists.
	DisplayName string `json:"display_name"`
	// FavoriteGenres is a free-form tag list, stored as a PostgreSQL array.
	FavoriteGenres pq.StringArray `gorm:"type:text[]" json:"favorite_genres"`
	CreatedAt      time.Time      `json:"created_at"`
}

// BeforeCreate is a GORM hook that generates a UUID for the user
// if the ID has not been set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

package models

import "time"

// UserProfile is the per-account document keyed by the OAuth account name.
type UserProfile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"size:255;not null;uniqueIndex" json:"userId"`
	ProfileImageURL string    `gorm:"size:512" json:"profileImageUrl"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

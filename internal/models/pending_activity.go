package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states. The transition is one way: pending records
// become approved and never go back.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// PendingActivity is a student-submitted activity awaiting, or past, admin
// review. Approved records stay in this table; status is the only thing that
// changes.
type PendingActivity struct {
	ID          uint                       `gorm:"primaryKey" json:"id"`
	Name        string                     `gorm:"size:255;not null" json:"name"`
	Description string                     `gorm:"type:text" json:"description"`
	Skills      datatypes.JSONSlice[Skill] `gorm:"type:json" json:"skills"`
	Status      string                     `gorm:"size:32;not null;default:pending;index" json:"status"`
	FileURL     *string                    `gorm:"size:512" json:"fileUrl"`
	UserID      string                     `gorm:"size:255;not null;index" json:"userId"`
	Firstname   string                     `gorm:"size:255" json:"firstname"`
	Lastname    string                     `gorm:"size:255" json:"lastname"`
	StudentID   string                     `gorm:"size:64" json:"studentId"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// TableName keeps the collection name the frontend has always used.
func (PendingActivity) TableName() string { return "pending_activities" }

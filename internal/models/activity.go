package models

import (
	"time"

	"gorm.io/datatypes"
)

// Skill is a named competency category paired with a level.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// SkillNames are the six categories offered by the skill rubric. Stored
// skills are not constrained to this set; submissions are validated against
// it, admin catalog entries are not.
var SkillNames = []string{
	"Teamwork",
	"Adaptability to Technological Changes",
	"Interdisciplinary Collaboration",
	"Effective Communication",
	"Entrepreneurial Mindset",
	"Innovation Mindset",
}

// Activity is a published activity announcement authored by an admin.
type Activity struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Dates       datatypes.JSONSlice[string] `gorm:"type:json" json:"dates"`
	Skills      datatypes.JSONSlice[Skill]  `gorm:"type:json" json:"skills"`
	ImageURLs   datatypes.JSONSlice[string] `gorm:"type:json" json:"imageUrls"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// TableName keeps the collection name the frontend has always used.
func (Activity) TableName() string { return "admin_activities" }

package model

import (
	"gorm.io/datatypes"
)

type CourseStatus string

const (
	CourseActive   CourseStatus = "active"
	CourseInactive CourseStatus = "inactive"
)

type CourseLevel string

const (
	CourseBeginner     CourseLevel = "beginner"
	CourseIntermediate CourseLevel = "intermediate"
	CourseAdvanced     CourseLevel = "advanced"
)

type CourseCategory string

const (
	CategoryTechnical  CourseCategory = "technical"
	CategoryCompliance CourseCategory = "compliance"
	CategoryLeadership CourseCategory = "leadership"
	CategorySoftSkills CourseCategory = "soft_skills"
	CategoryOnboarding CourseCategory = "onboarding"
	CategoryOther      CourseCategory = "other"
)

// swagger:model Course
type Course struct {
	Record
	Title         string                      `gorm:"size:255;not null" json:"title"`
	Description   string                      `gorm:"type:text" json:"description"`
	Category      CourseCategory              `gorm:"size:32;index" json:"category"`
	Level         CourseLevel                 `gorm:"size:32" json:"level"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Prerequisites datatypes.JSONSlice[uint]   `json:"prerequisites"`
	ContentURL    string                      `gorm:"size:500" json:"content_url"`
	DurationHours float64                     `gorm:"default:0" json:"duration_hours"`
	Status        CourseStatus                `gorm:"size:16;not null;index;default:'active'" json:"status"`
	CreatedBy     uint                        `gorm:"index" json:"created_by"`

	// Materialized from learning_progress rows; rewritten inside every
	// transaction that inserts or deletes a row for this course.
	EnrolledCount int                       `gorm:"not null;default:0" json:"enrolled_count"`
	EnrolledUsers datatypes.JSONSlice[uint] `json:"enrolled_users"`
}

func (Course) TableName() string {
	return "courses"
}

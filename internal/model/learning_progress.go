package model

import "time"

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressOverdue    ProgressStatus = "overdue"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted, ProgressOverdue:
		return true
	}
	return false
}

type EnrollmentSource string

const (
	SourceDirect       EnrollmentSource = "direct"
	SourceLearningPlan EnrollmentSource = "learning_plan"
)

func (s EnrollmentSource) Valid() bool {
	return s == SourceDirect || s == SourceLearningPlan
}

// LearningProgress is a ledger row: one user's membership and progress in one
// course. The (user_id, course_id) key is unique at the storage level.
// swagger:model LearningProgress
type LearningProgress struct {
	Record
	UserID       uint             `gorm:"not null;uniqueIndex:uk_user_course,priority:1" json:"user_id"`
	CourseID     uint             `gorm:"not null;uniqueIndex:uk_user_course,priority:2;index" json:"course_id"`
	Progress     int              `gorm:"not null;default:0" json:"progress"`
	Status       ProgressStatus   `gorm:"size:16;not null;index" json:"status"`
	Source       EnrollmentSource `gorm:"size:16;not null" json:"source"`
	SourceID     *uint            `gorm:"index" json:"source_id"`
	Score        *int             `json:"score"`
	Notes        string           `gorm:"type:text" json:"notes"`
	LastAccessed *time.Time       `json:"last_accessed"`
	CompletedAt  *time.Time       `json:"completed_at"`
}

func (LearningProgress) TableName() string {
	return "learning_progress"
}

func (p *LearningProgress) IsCompleted() bool {
	return p.Status == ProgressCompleted
}

package model

import "time"

type LearningPlanStatus string

const (
	PlanDraft     LearningPlanStatus = "draft"
	PlanActive    LearningPlanStatus = "active"
	PlanCompleted LearningPlanStatus = "completed"
	PlanOverdue   LearningPlanStatus = "overdue"
)

// swagger:model LearningPlan
type LearningPlan struct {
	BaseModel
	Title       string             `gorm:"size:255;not null" json:"title"`
	Description string             `gorm:"type:text" json:"description"`
	DueDate     *time.Time         `json:"due_date"`
	Status      LearningPlanStatus `gorm:"size:16;not null;index;default:'draft'" json:"status"`
	CreatedBy   uint               `gorm:"index" json:"created_by"`

	// Loaded from learning_plan_courses (ordered by position) and
	// learning_plan_assignments.
	CourseIDs     []uint `gorm:"-" json:"courses"`
	AssignedUsers []uint `gorm:"-" json:"assigned_users"`
}

func (LearningPlan) TableName() string {
	return "learning_plans"
}

// LearningPlanCourse keeps the ordered course set of a plan.
type LearningPlanCourse struct {
	ID        uint `gorm:"primaryKey"`
	PlanID    uint `gorm:"not null;uniqueIndex:uk_plan_course,priority:1"`
	CourseID  uint `gorm:"not null;uniqueIndex:uk_plan_course,priority:2;index"`
	Position  int  `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (LearningPlanCourse) TableName() string {
	return "learning_plan_courses"
}

// LearningPlanAssignment is one member of a plan's assigned user set.
type LearningPlanAssignment struct {
	ID         uint      `gorm:"primaryKey"`
	PlanID     uint      `gorm:"not null;uniqueIndex:uk_plan_user,priority:1"`
	UserID     uint      `gorm:"not null;uniqueIndex:uk_plan_user,priority:2;index"`
	AssignedBy uint      `gorm:"default:0"`
	AssignedAt time.Time `gorm:"not null"`
}

func (LearningPlanAssignment) TableName() string {
	return "learning_plan_assignments"
}

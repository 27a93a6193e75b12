package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
	ApplicationCompleted ApplicationStatus = "completed"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:  {ApplicationApproved, ApplicationRejected, ApplicationCancelled},
	ApplicationApproved: {ApplicationCancelled, ApplicationCompleted},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationApproved, ApplicationRejected, ApplicationCancelled, ApplicationCompleted:
		return true
	}
	return false
}

func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, next := range applicationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationRejected || s == ApplicationCancelled || s == ApplicationCompleted
}

// IsActive reports whether the status blocks a new application for the same
// employee and training.
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationApplied || s == ApplicationApproved
}

// swagger:model TrainingApplication
type TrainingApplication struct {
	Record
	TrainingID         uint              `gorm:"not null;index" json:"training_id"`
	EmployeeID         uint              `gorm:"not null;index" json:"employee_id"`
	Status             ApplicationStatus `gorm:"size:16;not null;index" json:"status"`
	Notes              string            `gorm:"type:text" json:"notes"`
	SubmittedAt        time.Time         `gorm:"not null" json:"submitted_at"`
	ApprovedBy         *uint             `json:"approved_by"`
	ManagerApprovedAt  *time.Time        `json:"manager_approved_at"`
	RejectionReason    string            `gorm:"type:text" json:"rejection_reason"`
	CancellationReason string            `gorm:"type:text" json:"cancellation_reason"`
	CancelledAt        *time.Time        `json:"cancelled_at"`
	CompletedAt        *time.Time        `json:"completed_at"`

	// Non-null only while the application is active. NULLs never collide in a
	// unique index, so this enforces one active application per
	// (employee, training) in storage.
	ActiveKey *string `gorm:"size:64;uniqueIndex" json:"-"`
}

func (TrainingApplication) TableName() string {
	return "training_applications"
}

func ApplicationActiveKey(employeeID, trainingID uint) string {
	return fmt.Sprintf("%d:%d", employeeID, trainingID)
}

func (a *TrainingApplication) BeforeSave(tx *gorm.DB) error {
	if a.Status.IsActive() {
		key := ApplicationActiveKey(a.EmployeeID, a.TrainingID)
		a.ActiveKey = &key
	} else {
		a.ActiveKey = nil
	}
	return nil
}

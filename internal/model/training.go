package model

import "time"

type TrainingStatus string

const (
	TrainingActive   TrainingStatus = "active"
	TrainingInactive TrainingStatus = "inactive"
)

// swagger:model Training
type Training struct {
	Record
	ProgramName     string         `gorm:"size:255;not null" json:"program_name"`
	Description     string         `gorm:"type:text" json:"description"`
	Provider        string         `gorm:"size:255" json:"provider"`
	Trainer         string         `gorm:"size:255" json:"trainer"`
	Location        string         `gorm:"size:255" json:"location"`
	StartDate       *time.Time     `json:"start_date"`
	EndDate         *time.Time     `json:"end_date"`
	MaxParticipants int            `gorm:"not null;default:0" json:"max_participants"` // 0 = unlimited
	EnrolledCount   int            `gorm:"not null;default:0" json:"enrolled_count"`   // approved applications
	Status          TrainingStatus `gorm:"size:16;not null;index;default:'active'" json:"status"`
	CreatedBy       uint           `gorm:"index" json:"created_by"`
}

func (Training) TableName() string {
	return "trainings"
}

func (t *Training) IsFull() bool {
	return t.MaxParticipants > 0 && t.EnrolledCount >= t.MaxParticipants
}

// AvailableSlots returns nil for unlimited trainings.
func (t *Training) AvailableSlots() *int {
	if t.MaxParticipants <= 0 {
		return nil
	}
	slots := t.MaxParticipants - t.EnrolledCount
	if slots < 0 {
		slots = 0
	}
	return &slots
}

// swagger:model TrainingSession
type TrainingSession struct {
	Record
	TrainingID uint      `gorm:"not null;index" json:"training_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	StartsAt   time.Time `gorm:"not null" json:"starts_at"`
	EndsAt     time.Time `gorm:"not null" json:"ends_at"`
	Location   string    `gorm:"size:255" json:"location"`
	Trainer    string    `gorm:"size:255" json:"trainer"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}

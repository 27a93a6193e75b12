package model

import "time"

// swagger:model TrainingCompletion
type TrainingCompletion struct {
	Record
	EmployeeID        uint      `gorm:"not null;index" json:"employee_id"`
	TrainingID        *uint     `gorm:"index" json:"training_id"`
	ApplicationID     *uint     `gorm:"uniqueIndex" json:"application_id"`
	CompletionDate    time.Time `gorm:"not null" json:"completion_date"`
	ScorePercentage   *float64  `json:"score_percentage"`
	Grade             string    `gorm:"size:16" json:"grade"`
	CertificateIssued bool      `gorm:"not null;default:false" json:"certificate_issued"`
	RecordedBy        uint      `json:"recorded_by"`
}

func (TrainingCompletion) TableName() string {
	return "training_completions"
}

// swagger:model TrainingCertificate
type TrainingCertificate struct {
	Record
	CompletionID      uint       `gorm:"not null;index" json:"completion_id"`
	CertificateNumber string     `gorm:"size:64;not null;uniqueIndex" json:"certificate_number"`
	IssuedBy          string     `gorm:"size:255;not null" json:"issued_by"`
	IssueDate         time.Time  `gorm:"not null" json:"issue_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	FilePath          string     `gorm:"size:500" json:"file_path"`
	FileURL           string     `gorm:"size:500" json:"file_url"`
}

func (TrainingCertificate) TableName() string {
	return "training_certificates"
}

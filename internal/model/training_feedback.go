package model

// Satellite records of an application. Each table holds at most one row per
// application; writes are upserts on application_id.

// swagger:model TrainingFeedback
type TrainingFeedback struct {
	Record
	ApplicationID  uint   `gorm:"not null;uniqueIndex" json:"application_id"`
	EmployeeID     uint   `gorm:"not null;index" json:"employee_id"`
	Rating         int    `gorm:"not null" json:"rating"`
	Comments       string `gorm:"type:text" json:"comments"`
	WouldRecommend bool   `json:"would_recommend"`
}

func (TrainingFeedback) TableName() string {
	return "training_feedback"
}

// swagger:model TrainerAssessment
type TrainerAssessment struct {
	Record
	ApplicationID uint   `gorm:"not null;uniqueIndex" json:"application_id"`
	AssessorID    uint   `gorm:"not null" json:"assessor_id"`
	Score         int    `gorm:"not null" json:"score"`
	Strengths     string `gorm:"type:text" json:"strengths"`
	Improvements  string `gorm:"type:text" json:"improvements"`
}

func (TrainerAssessment) TableName() string {
	return "trainer_assessments"
}

// swagger:model PerformanceNote
type PerformanceNote struct {
	Record
	ApplicationID uint   `gorm:"not null;uniqueIndex" json:"application_id"`
	AuthorID      uint   `gorm:"not null" json:"author_id"`
	Note          string `gorm:"type:text;not null" json:"note"`
	ImpactRating  int    `json:"impact_rating"`
}

func (PerformanceNote) TableName() string {
	return "performance_notes"
}

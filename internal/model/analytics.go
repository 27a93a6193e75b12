package model

// Read-side shapes produced by the analytics service. None of these are
// persisted.

type PlanCourseProgress struct {
	CourseID uint           `json:"course_id"`
	Exists   bool           `json:"exists"`
	Enrolled bool           `json:"enrolled"`
	Status   ProgressStatus `json:"status,omitempty"`
	Progress int            `json:"progress"`
}

type PlanProgress struct {
	PlanID           uint                 `json:"plan_id"`
	UserID           uint                 `json:"user_id"`
	TotalCourses     int                  `json:"total_courses"`
	CompletedCourses int                  `json:"completed_courses"`
	Percentage       int                  `json:"percentage"`
	Courses          []PlanCourseProgress `json:"courses"`
}

type TrainingStats struct {
	TrainingID      uint                      `json:"training_id"`
	StatusCounts    map[ApplicationStatus]int `json:"status_counts"`
	TotalApplicants int                       `json:"total_applicants"`
	EnrolledCount   int                       `json:"enrolled_count"`
	MaxParticipants int                       `json:"max_participants"`
	IsFull          bool                      `json:"is_full"`
	AvailableSlots  *int                      `json:"available_slots"`
}

type UserLearningSummary struct {
	UserID         uint                   `json:"user_id"`
	TotalCourses   int                    `json:"total_courses"`
	StatusCounts   map[ProgressStatus]int `json:"status_counts"`
	AverageScore   *float64               `json:"average_score"`
	LearningStreak int                    `json:"learning_streak"`
}

type CourseAnalytics struct {
	CourseID        uint    `json:"course_id"`
	Enrolled        int     `json:"enrolled"`
	Completed       int     `json:"completed"`
	CompletionRate  float64 `json:"completion_rate"`
	AverageProgress float64 `json:"average_progress"`
}

type EnrollmentCheck struct {
	CourseID    uint `json:"course_id"`
	CachedCount int  `json:"cached_count"`
	CachedUsers int  `json:"cached_users"`
	LedgerCount int  `json:"ledger_count"`
	Consistent  bool `json:"consistent"`
}

type ReconcileReport struct {
	CoursesChecked    int    `json:"courses_checked"`
	CoursesRepaired   []uint `json:"courses_repaired"`
	TrainingsChecked  int    `json:"trainings_checked"`
	TrainingsRepaired []uint `json:"trainings_repaired"`
}

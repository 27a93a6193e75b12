package service

import (
	"context"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"math"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// StreakWindowDays is the trailing window of the learning streak, today
// included.
const StreakWindowDays = 30

// AnalyticsService computes read-side aggregates from the ledger and the
// applications. Nothing here trusts the cached counters.
type AnalyticsService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	PlanRepo     *repository.LearningPlanRepository
	TrainingRepo *repository.TrainingRepository
	AppRepo      *repository.ApplicationRepository

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewAnalyticsService(
	db *gorm.DB,
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	planRepo *repository.LearningPlanRepository,
	trainingRepo *repository.TrainingRepository,
	appRepo *repository.ApplicationRepository,
) *AnalyticsService {
	return &AnalyticsService{
		DB:           db,
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		PlanRepo:     planRepo,
		TrainingRepo: trainingRepo,
		AppRepo:      appRepo,
		Now:          time.Now,
	}
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PlanProgress reports how many of a plan's courses the user has completed.
// Courses without a ledger row count as not completed.
func (s *AnalyticsService) PlanProgress(ctx context.Context, actor model.Actor, planID, userID uint) (*model.PlanProgress, error) {
	if !actor.ActsForUser(userID) {
		return nil, util.ErrPermissionDenied
	}
	db := s.DB.WithContext(ctx)
	plan, err := s.PlanRepo.WithTx(db).FindByID(planID)
	if err != nil {
		return nil, notFound(err, util.ErrPlanNotFound)
	}

	rows, err := s.ProgressRepo.WithTx(db).ListForUserCourses(userID, plan.CourseIDs)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[uint]model.LearningProgress, len(rows))
	for _, r := range rows {
		byCourse[r.CourseID] = r
	}
	existing, err := s.CourseRepo.WithTx(db).ExistingIDs(plan.CourseIDs)
	if err != nil {
		return nil, err
	}
	exists := make(map[uint]bool, len(existing))
	for _, id := range existing {
		exists[id] = true
	}

	result := &model.PlanProgress{
		PlanID:       planID,
		UserID:       userID,
		TotalCourses: len(plan.CourseIDs),
		Courses:      make([]model.PlanCourseProgress, 0, len(plan.CourseIDs)),
	}
	for _, courseID := range plan.CourseIDs {
		entry := model.PlanCourseProgress{CourseID: courseID, Exists: exists[courseID]}
		if row, ok := byCourse[courseID]; ok {
			entry.Enrolled = true
			entry.Status = row.Status
			entry.Progress = row.Progress
			if row.IsCompleted() {
				result.CompletedCourses++
			}
		}
		result.Courses = append(result.Courses, entry)
	}
	result.Percentage = percent(result.CompletedCourses, result.TotalCourses)
	return result, nil
}

// LearningStreak counts the distinct local calendar days within the trailing
// window on which the user touched any ledger row.
func (s *AnalyticsService) LearningStreak(ctx context.Context, actor model.Actor, userID uint) (int, error) {
	if !actor.ActsForUser(userID) {
		return 0, util.ErrPermissionDenied
	}
	return s.learningStreak(s.DB.WithContext(ctx), userID)
}

func (s *AnalyticsService) learningStreak(db *gorm.DB, userID uint) (int, error) {
	today := now.With(s.Now().In(time.Local)).BeginningOfDay()
	since := today.AddDate(0, 0, -(StreakWindowDays - 1))
	until := today.AddDate(0, 0, 1)

	times, err := s.ProgressRepo.WithTx(db).AccessTimesSince(userID, since)
	if err != nil {
		return 0, err
	}
	days := make(map[time.Time]struct{}, len(times))
	for _, t := range times {
		t = t.In(time.Local)
		if t.Before(since) || !t.Before(until) {
			continue
		}
		days[now.With(t).BeginningOfDay()] = struct{}{}
	}
	return len(days), nil
}

// TrainingStats derives capacity from the approved application count rather
// than from the cached enrolled_count.
func (s *AnalyticsService) TrainingStats(ctx context.Context, trainingID uint) (*model.TrainingStats, error) {
	db := s.DB.WithContext(ctx)
	training, err := s.TrainingRepo.WithTx(db).FindByID(trainingID)
	if err != nil {
		return nil, notFound(err, util.ErrTrainingNotFound)
	}
	counts, err := s.AppRepo.WithTx(db).CountByStatus(trainingID)
	if err != nil {
		return nil, err
	}

	stats := &model.TrainingStats{
		TrainingID:      trainingID,
		StatusCounts:    make(map[model.ApplicationStatus]int, 5),
		MaxParticipants: training.MaxParticipants,
	}
	for _, st := range []model.ApplicationStatus{
		model.ApplicationApplied,
		model.ApplicationApproved,
		model.ApplicationRejected,
		model.ApplicationCancelled,
		model.ApplicationCompleted,
	} {
		stats.StatusCounts[st] = counts[st]
		stats.TotalApplicants += counts[st]
	}

	training.EnrolledCount = counts[model.ApplicationApproved]
	stats.EnrolledCount = training.EnrolledCount
	stats.IsFull = training.IsFull()
	stats.AvailableSlots = training.AvailableSlots()
	return stats, nil
}

func (s *AnalyticsService) UserLearningSummary(ctx context.Context, actor model.Actor, userID uint) (*model.UserLearningSummary, error) {
	if !actor.ActsForUser(userID) {
		return nil, util.ErrPermissionDenied
	}
	db := s.DB.WithContext(ctx)
	rows, err := s.ProgressRepo.WithTx(db).ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &model.UserLearningSummary{
		UserID:       userID,
		TotalCourses: len(rows),
		StatusCounts: map[model.ProgressStatus]int{
			model.ProgressNotStarted: 0,
			model.ProgressInProgress: 0,
			model.ProgressCompleted:  0,
			model.ProgressOverdue:    0,
		},
	}
	var scoreSum, scored int
	for _, r := range rows {
		summary.StatusCounts[r.Status]++
		if r.IsCompleted() && r.Score != nil {
			scoreSum += *r.Score
			scored++
		}
	}
	if scored > 0 {
		avg := round2(float64(scoreSum) / float64(scored))
		summary.AverageScore = &avg
	}

	summary.LearningStreak, err = s.learningStreak(db, userID)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *AnalyticsService) CourseAnalytics(ctx context.Context, courseID uint) (*model.CourseAnalytics, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.CourseRepo.WithTx(db).FindByID(courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	rows, err := s.ProgressRepo.WithTx(db).ListByCourse(courseID)
	if err != nil {
		return nil, err
	}

	result := &model.CourseAnalytics{CourseID: courseID, Enrolled: len(rows)}
	if len(rows) == 0 {
		return result, nil
	}
	var progressSum int
	for _, r := range rows {
		progressSum += r.Progress
		if r.IsCompleted() {
			result.Completed++
		}
	}
	result.CompletionRate = round2(100 * float64(result.Completed) / float64(len(rows)))
	result.AverageProgress = round2(float64(progressSum) / float64(len(rows)))
	return result, nil
}

package service

import (
	"context"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"hrm_backend/pkg/logger"
	"hrm_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileService checks and repairs the cached enrollment counters against
// their sources of truth: ledger rows for courses, approved applications for
// trainings.
type ReconcileService struct {
	DB           *gorm.DB
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	TrainingRepo *repository.TrainingRepository
	AppRepo      *repository.ApplicationRepository
}

func NewReconcileService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	trainingRepo *repository.TrainingRepository,
	appRepo *repository.ApplicationRepository,
) *ReconcileService {
	return &ReconcileService{
		DB:           db,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		TrainingRepo: trainingRepo,
		AppRepo:      appRepo,
	}
}

func sameMembers(cached, ledger []uint) bool {
	if len(cached) != len(ledger) {
		return false
	}
	seen := make(map[uint]bool, len(cached))
	for _, id := range cached {
		seen[id] = true
	}
	for _, id := range ledger {
		if !seen[id] {
			return false
		}
	}
	return len(seen) == len(ledger)
}

// CheckCourse compares the cached counters of a course with its ledger rows
// without changing anything.
func (s *ReconcileService) CheckCourse(ctx context.Context, courseID uint) (*model.EnrollmentCheck, error) {
	db := s.DB.WithContext(ctx)
	course, err := s.CourseRepo.WithTx(db).FindByID(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	users, err := s.ProgressRepo.WithTx(db).UserIDsForCourse(courseID)
	if err != nil {
		return nil, err
	}
	count, err := s.ProgressRepo.WithTx(db).CountForCourse(courseID)
	if err != nil {
		return nil, err
	}

	check := &model.EnrollmentCheck{
		CourseID:    courseID,
		CachedCount: course.EnrolledCount,
		CachedUsers: len(course.EnrolledUsers),
		LedgerCount: int(count),
	}
	check.Consistent = check.CachedCount == check.LedgerCount &&
		check.CachedUsers == check.LedgerCount &&
		sameMembers(course.EnrolledUsers, users)
	return check, nil
}

// ReconcileAll rewrites every cache that drifted. Each entity is repaired in
// its own transaction under a row lock.
func (s *ReconcileService) ReconcileAll(ctx context.Context) (*model.ReconcileReport, error) {
	report := &model.ReconcileReport{CoursesRepaired: []uint{}, TrainingsRepaired: []uint{}}
	db := s.DB.WithContext(ctx)

	courseIDs, err := s.CourseRepo.WithTx(db).AllIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range courseIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		repaired, err := s.reconcileCourse(db, id)
		if err != nil {
			return report, err
		}
		report.CoursesChecked++
		if repaired {
			report.CoursesRepaired = append(report.CoursesRepaired, id)
			monitoring.CacheRepairs.WithLabelValues("course").Inc()
		}
	}

	trainingIDs, err := s.TrainingRepo.WithTx(db).AllIDs()
	if err != nil {
		return report, err
	}
	for _, id := range trainingIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		repaired, err := s.reconcileTraining(db, id)
		if err != nil {
			return report, err
		}
		report.TrainingsChecked++
		if repaired {
			report.TrainingsRepaired = append(report.TrainingsRepaired, id)
			monitoring.CacheRepairs.WithLabelValues("training").Inc()
		}
	}

	if len(report.CoursesRepaired) > 0 || len(report.TrainingsRepaired) > 0 {
		logger.Log.Warn("Enrollment caches repaired",
			zap.Uints("courses", report.CoursesRepaired),
			zap.Uints("trainings", report.TrainingsRepaired))
	}
	return report, nil
}

func (s *ReconcileService) reconcileCourse(db *gorm.DB, id uint) (bool, error) {
	repaired := false
	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := s.CourseRepo.WithTx(tx).Lock(id)
		if err != nil {
			return err
		}
		users, err := s.ProgressRepo.WithTx(tx).UserIDsForCourse(id)
		if err != nil {
			return err
		}
		if course.EnrolledCount == len(users) && sameMembers(course.EnrolledUsers, users) {
			return nil
		}
		repaired = true
		return s.CourseRepo.WithTx(tx).SetEnrollment(id, users)
	})
	return repaired, err
}

func (s *ReconcileService) reconcileTraining(db *gorm.DB, id uint) (bool, error) {
	repaired := false
	err := db.Transaction(func(tx *gorm.DB) error {
		training, err := s.TrainingRepo.WithTx(tx).Lock(id)
		if err != nil {
			return err
		}
		approved, err := s.AppRepo.WithTx(tx).CountApproved(id)
		if err != nil {
			return err
		}
		if training.EnrolledCount == int(approved) {
			return nil
		}
		repaired = true
		return s.TrainingRepo.WithTx(tx).SetEnrolledCount(id, int(approved))
	})
	return repaired, err
}

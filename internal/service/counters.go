package service

import (
	"errors"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"

	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto a domain sentinel.
func notFound(err error, sentinel *util.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// syncCourseEnrollment rewrites the cached membership of a course from its
// ledger rows. Must run in the transaction that changed the ledger.
func syncCourseEnrollment(tx *gorm.DB, courseID uint) error {
	users, err := repository.NewProgressRepository(tx).UserIDsForCourse(courseID)
	if err != nil {
		return err
	}
	return repository.NewCourseRepository(tx).SetEnrollment(courseID, users)
}

// syncTrainingEnrollment recomputes enrolled_count from approved
// applications and returns the new value.
func syncTrainingEnrollment(tx *gorm.DB, trainingID uint) (int, error) {
	approved, err := repository.NewApplicationRepository(tx).CountApproved(trainingID)
	if err != nil {
		return 0, err
	}
	if err := repository.NewTrainingRepository(tx).SetEnrolledCount(trainingID, int(approved)); err != nil {
		return 0, err
	}
	return int(approved), nil
}

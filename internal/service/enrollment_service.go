package service

import (
	"context"
	"errors"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"hrm_backend/pkg/logger"
	"hrm_backend/pkg/monitoring"
	"hrm_backend/pkg/tracing"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService owns the enrollment ledger. Every mutation rewrites the
// cached membership of the affected courses in the same transaction.
type EnrollmentService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	PlanRepo     *repository.LearningPlanRepository
	Publisher    EventPublisher
}

func NewEnrollmentService(
	db *gorm.DB,
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	planRepo *repository.LearningPlanRepository,
	publisher EventPublisher,
) *EnrollmentService {
	return &EnrollmentService{
		DB:           db,
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		PlanRepo:     planRepo,
		Publisher:    publisher,
	}
}

type EnrollRequest struct {
	UserID   uint                   `json:"user_id" binding:"required"`
	CourseID uint                   `json:"course_id" binding:"required"`
	Source   model.EnrollmentSource `json:"source" binding:"omitempty,oneof=direct learning_plan"`
	SourceID *uint                  `json:"source_id"`
}

type UnenrollRequest struct {
	UserID   uint `json:"user_id" binding:"required"`
	CourseID uint `json:"course_id" binding:"required"`
}

type UpdateProgressRequest struct {
	Progress *int                  `json:"progress" binding:"omitempty,gte=0,lte=100"`
	Status   *model.ProgressStatus `json:"status" binding:"omitempty,oneof=not_started in_progress completed overdue"`
	Score    *int                  `json:"score" binding:"omitempty,gte=0,lte=100"`
	Notes    *string               `json:"notes"`
}

type CompleteRequest struct {
	Score *int `json:"score" binding:"omitempty,gte=0,lte=100"`
}

type PlanMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type PlanEnrollResult struct {
	PlanID          uint   `json:"plan_id"`
	UserID          uint   `json:"user_id"`
	CoursesEnrolled int    `json:"courses_enrolled"`
	AlreadyEnrolled []uint `json:"already_enrolled"`
	Skipped         []uint `json:"skipped"`
}

type PlanUnenrollResult struct {
	PlanID         uint `json:"plan_id"`
	UserID         uint `json:"user_id"`
	CoursesRemoved int  `json:"courses_removed"`
}

func (s *EnrollmentService) publish(ctx context.Context, eventType string, courseID, userID uint) {
	s.Publisher.Publish(ctx, Event{Type: eventType, EntityID: courseID, UserID: userID, At: time.Now()})
}

// insertLedgerRow enrolls userID in courseID inside tx. The course row is
// locked first so concurrent enrollments into one course serialize on it.
func insertLedgerRow(tx *gorm.DB, userID, courseID uint, source model.EnrollmentSource, sourceID *uint) (*model.LearningProgress, error) {
	if _, err := repository.NewCourseRepository(tx).Lock(courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}

	progressRepo := repository.NewProgressRepository(tx)
	if _, err := progressRepo.FindByUserCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := &model.LearningProgress{
		UserID:   userID,
		CourseID: courseID,
		Progress: 0,
		Status:   model.ProgressNotStarted,
		Source:   source,
		SourceID: sourceID,
	}
	if err := progressRepo.Create(row); err != nil {
		if isDuplicate(err) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}

	if err := syncCourseEnrollment(tx, courseID); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *EnrollmentService) Enroll(ctx context.Context, actor model.Actor, req EnrollRequest) (row *model.LearningProgress, err error) {
	ctx, span := tracing.StartSpan(ctx, "EnrollmentService.Enroll",
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.Int64("course.id", int64(req.CourseID)))
	defer func() {
		monitoring.ObserveEnrollment("enroll", err)
		tracing.End(span, err)
	}()

	if !actor.ActsForUser(req.UserID) {
		return nil, util.ErrPermissionDenied
	}
	source := req.Source
	if source == "" {
		source = model.SourceDirect
	}
	if !source.Valid() {
		return nil, util.ValidationError(map[string]string{"source": "must be one of: direct learning_plan"})
	}
	if source == model.SourceLearningPlan && req.SourceID == nil {
		return nil, util.ValidationError(map[string]string{"source_id": "is required for learning_plan enrollments"})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if source == model.SourceLearningPlan {
			plan, err := s.PlanRepo.WithTx(tx).FindByID(*req.SourceID)
			if err != nil {
				return notFound(err, util.ErrPlanNotFound)
			}
			if !slices.Contains(plan.CourseIDs, req.CourseID) {
				return util.ValidationError(map[string]string{"source_id": "learning plan does not include this course"})
			}
		}
		var txErr error
		row, txErr = insertLedgerRow(tx, req.UserID, req.CourseID, source, req.SourceID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventEnrollmentCreated, req.CourseID, req.UserID)
	return row, nil
}

func (s *EnrollmentService) Unenroll(ctx context.Context, actor model.Actor, req UnenrollRequest) (err error) {
	defer func() { monitoring.ObserveEnrollment("unenroll", err) }()

	if !actor.ActsForUser(req.UserID) {
		return util.ErrPermissionDenied
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.CourseRepo.WithTx(tx).Lock(req.CourseID); err != nil {
			return notFound(err, util.ErrCourseNotFound)
		}
		progressRepo := s.ProgressRepo.WithTx(tx)
		row, err := progressRepo.FindByUserCourse(req.UserID, req.CourseID)
		if err != nil {
			return notFound(err, util.ErrNotEnrolled)
		}
		if row.IsCompleted() {
			return util.ErrEnrollmentCompleted
		}
		if err := progressRepo.Delete(row.ID); err != nil {
			return err
		}
		return syncCourseEnrollment(tx, req.CourseID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventEnrollmentRemoved, req.CourseID, req.UserID)
	return nil
}

// loadOwnedRow loads a ledger row and checks the actor may change it.
func (s *EnrollmentService) loadOwnedRow(tx *gorm.DB, actor model.Actor, id uint) (*model.LearningProgress, error) {
	row, err := s.ProgressRepo.WithTx(tx).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrProgressNotFound)
	}
	if !actor.ActsForUser(row.UserID) {
		return nil, util.ErrPermissionDenied
	}
	return row, nil
}

// UpdateProgress applies a partial update and stamps last_accessed. Reaching
// 100 without an explicit status marks the row completed.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, actor model.Actor, id uint, req UpdateProgressRequest) (*model.LearningProgress, error) {
	fields := map[string]string{}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		fields["progress"] = "must be between 0 and 100"
	}
	if req.Status != nil && !req.Status.Valid() {
		fields["status"] = "must be one of: not_started in_progress completed overdue"
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		fields["score"] = "must be between 0 and 100"
	}
	if len(fields) > 0 {
		return nil, util.ValidationError(fields)
	}

	var row *model.LearningProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.loadOwnedRow(tx, actor, id)
		if err != nil {
			return err
		}

		now := time.Now()
		if req.Progress != nil {
			r.Progress = *req.Progress
			if r.Progress == 100 && req.Status == nil {
				r.Status = model.ProgressCompleted
			}
		}
		if req.Status != nil {
			r.Status = *req.Status
		}
		if req.Score != nil {
			r.Score = req.Score
		}
		if req.Notes != nil {
			r.Notes = *req.Notes
		}
		if r.Status == model.ProgressCompleted {
			if r.CompletedAt == nil {
				r.CompletedAt = &now
			}
		} else {
			r.CompletedAt = nil
		}
		r.LastAccessed = &now

		row = r
		return s.ProgressRepo.WithTx(tx).Save(r)
	})
	monitoring.ObserveEnrollment("update_progress", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Complete marks a row finished. Calling it again on a completed row
// succeeds and keeps the original completion time.
func (s *EnrollmentService) Complete(ctx context.Context, actor model.Actor, id uint, score *int) (*model.LearningProgress, error) {
	if score != nil && (*score < 0 || *score > 100) {
		return nil, util.ValidationError(map[string]string{"score": "must be between 0 and 100"})
	}

	var row *model.LearningProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.loadOwnedRow(tx, actor, id)
		if err != nil {
			return err
		}

		now := time.Now()
		r.Progress = 100
		r.Status = model.ProgressCompleted
		if score != nil {
			r.Score = score
		}
		if r.CompletedAt == nil {
			r.CompletedAt = &now
		}
		r.LastAccessed = &now

		row = r
		return s.ProgressRepo.WithTx(tx).Save(r)
	})
	monitoring.ObserveEnrollment("complete", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *EnrollmentService) ResetProgress(ctx context.Context, actor model.Actor, id uint) (*model.LearningProgress, error) {
	var row *model.LearningProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.loadOwnedRow(tx, actor, id)
		if err != nil {
			return err
		}
		if r.IsCompleted() {
			return util.ErrEnrollmentCompleted
		}

		r.Progress = 0
		r.Status = model.ProgressNotStarted
		r.LastAccessed = nil
		r.Score = nil
		r.Notes = ""
		r.CompletedAt = nil

		row = r
		return s.ProgressRepo.WithTx(tx).Save(r)
	})
	monitoring.ObserveEnrollment("reset", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// EnrollInPlan assigns userID to a plan and enrolls them in every plan course
// they are not enrolled in yet. Each course runs in its own savepoint: a
// course that fails (for example because it was removed from the catalog) is
// skipped without undoing the others. The assignment is written in the same
// transaction as the enrollments.
func (s *EnrollmentService) EnrollInPlan(ctx context.Context, actor model.Actor, planID, userID uint) (result *PlanEnrollResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "EnrollmentService.EnrollInPlan",
		attribute.Int64("plan.id", int64(planID)),
		attribute.Int64("user.id", int64(userID)))
	defer func() {
		monitoring.ObserveEnrollment("plan_enroll", err)
		tracing.End(span, err)
	}()

	if !actor.ActsForUser(userID) {
		return nil, util.ErrPermissionDenied
	}

	result = &PlanEnrollResult{PlanID: planID, UserID: userID, AlreadyEnrolled: []uint{}, Skipped: []uint{}}
	var enrolled []uint

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		planRepo := s.PlanRepo.WithTx(tx)
		plan, err := planRepo.Lock(planID)
		if err != nil {
			return notFound(err, util.ErrPlanNotFound)
		}
		assigned, err := planRepo.IsAssigned(planID, userID)
		if err != nil {
			return err
		}
		if assigned {
			return util.ErrAlreadyAssigned
		}
		if len(plan.CourseIDs) == 0 {
			return util.ErrEmptyPlan
		}

		source := planID
		for _, courseID := range plan.CourseIDs {
			courseErr := tx.Transaction(func(sp *gorm.DB) error {
				_, err := insertLedgerRow(sp, userID, courseID, model.SourceLearningPlan, &source)
				return err
			})
			switch {
			case courseErr == nil:
				enrolled = append(enrolled, courseID)
			case errors.Is(courseErr, util.ErrAlreadyEnrolled):
				result.AlreadyEnrolled = append(result.AlreadyEnrolled, courseID)
			default:
				logger.Log.Warn("Skipping plan course",
					zap.Uint("plan_id", planID),
					zap.Uint("course_id", courseID),
					zap.Uint("user_id", userID),
					zap.Error(courseErr))
				result.Skipped = append(result.Skipped, courseID)
			}
		}

		if err := planRepo.AddAssignment(planID, userID, actor.UserID); err != nil {
			if isDuplicate(err) {
				return util.ErrAlreadyAssigned
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.CoursesEnrolled = len(enrolled)
	for _, courseID := range enrolled {
		s.publish(ctx, EventEnrollmentCreated, courseID, userID)
	}
	return result, nil
}

// UnenrollFromPlan removes the assignment and the ledger rows the plan
// created. Rows from direct enrollments and completed rows stay.
func (s *EnrollmentService) UnenrollFromPlan(ctx context.Context, actor model.Actor, planID, userID uint) (result *PlanUnenrollResult, err error) {
	defer func() { monitoring.ObserveEnrollment("plan_unenroll", err) }()

	if !actor.ActsForUser(userID) {
		return nil, util.ErrPermissionDenied
	}

	var removed []uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		planRepo := s.PlanRepo.WithTx(tx)
		if _, err := planRepo.FindByID(planID); err != nil {
			return notFound(err, util.ErrPlanNotFound)
		}
		ok, err := planRepo.RemoveAssignment(planID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrNotAssigned
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		rows, err := progressRepo.ListPlanSourced(userID, planID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := s.CourseRepo.WithTx(tx).Lock(row.CourseID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := progressRepo.Delete(row.ID); err != nil {
				return err
			}
			if err := syncCourseEnrollment(tx, row.CourseID); err != nil {
				return err
			}
			removed = append(removed, row.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, courseID := range removed {
		s.publish(ctx, EventEnrollmentRemoved, courseID, userID)
	}
	return &PlanUnenrollResult{PlanID: planID, UserID: userID, CoursesRemoved: len(removed)}, nil
}

func (s *EnrollmentService) GetProgress(ctx context.Context, actor model.Actor, id uint) (*model.LearningProgress, error) {
	row, err := s.ProgressRepo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrProgressNotFound)
	}
	if !actor.ActsForUser(row.UserID) {
		return nil, util.ErrPermissionDenied
	}
	return row, nil
}

// ListProgress lists ledger rows. Non-admin callers only see their own.
func (s *EnrollmentService) ListProgress(ctx context.Context, actor model.Actor, filter repository.ProgressFilter, page, limit int) ([]model.LearningProgress, int64, error) {
	if !actor.IsHRAdmin() {
		if actor.UserID == 0 || (filter.UserID != 0 && filter.UserID != actor.UserID) {
			return nil, 0, util.ErrPermissionDenied
		}
		filter.UserID = actor.UserID
	}
	return s.ProgressRepo.WithTx(s.DB.WithContext(ctx)).List(filter, page, limit)
}

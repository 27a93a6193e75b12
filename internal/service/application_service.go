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
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplicationService drives training applications through
// applied -> approved|rejected|cancelled and approved -> cancelled|completed.
type ApplicationService struct {
	DB           *gorm.DB
	Repo         *repository.ApplicationRepository
	TrainingRepo *repository.TrainingRepository
	Publisher    EventPublisher

	// RejectWhenFull makes Apply fail on a full training. When false,
	// applications queue up and capacity is only enforced on approval.
	RejectWhenFull bool
}

func NewApplicationService(db *gorm.DB, repo *repository.ApplicationRepository, trainingRepo *repository.TrainingRepository, publisher EventPublisher) *ApplicationService {
	return &ApplicationService{DB: db, Repo: repo, TrainingRepo: trainingRepo, Publisher: publisher}
}

type ApplyRequest struct {
	TrainingID uint   `json:"training_id" binding:"required"`
	EmployeeID uint   `json:"employee_id" binding:"required"`
	Notes      string `json:"notes"`
}

type ApproveRequest struct {
	Notes *string `json:"notes"`
}

type RejectRequest struct {
	RejectionReason string  `json:"rejection_reason"`
	Notes           *string `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (s *ApplicationService) transitioned(ctx context.Context, app *model.TrainingApplication, eventType string) {
	monitoring.TrainingTransitions.WithLabelValues(string(app.Status)).Inc()
	logger.Log.Info("Training application "+string(app.Status),
		zap.Uint("application_id", app.ID),
		zap.Uint("training_id", app.TrainingID),
		zap.Uint("employee_id", app.EmployeeID))
	s.Publisher.Publish(ctx, Event{Type: eventType, EntityID: app.ID, EmployeeID: app.EmployeeID, At: time.Now()})
}

// hasCapacity counts approved applications under the training row lock
// instead of trusting the cached enrolled_count.
func hasCapacity(tx *gorm.DB, training *model.Training) (bool, error) {
	if training.MaxParticipants <= 0 {
		return true, nil
	}
	approved, err := repository.NewApplicationRepository(tx).CountApproved(training.ID)
	if err != nil {
		return false, err
	}
	return int(approved) < training.MaxParticipants, nil
}

func (s *ApplicationService) Apply(ctx context.Context, actor model.Actor, req ApplyRequest) (app *model.TrainingApplication, err error) {
	ctx, span := tracing.StartSpan(ctx, "ApplicationService.Apply",
		attribute.Int64("training.id", int64(req.TrainingID)),
		attribute.Int64("employee.id", int64(req.EmployeeID)))
	defer func() { tracing.End(span, err) }()

	if !actor.ActsForEmployee(req.EmployeeID) {
		return nil, util.ErrPermissionDenied
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		training, err := s.TrainingRepo.WithTx(tx).Lock(req.TrainingID)
		if err != nil {
			return notFound(err, util.ErrTrainingNotFound)
		}
		if training.Status != model.TrainingActive {
			return util.ErrTrainingInactive
		}
		if s.RejectWhenFull {
			ok, err := hasCapacity(tx, training)
			if err != nil {
				return err
			}
			if !ok {
				return util.ErrTrainingFull
			}
		}

		repo := s.Repo.WithTx(tx)
		if _, err := repo.FindActive(req.EmployeeID, req.TrainingID); err == nil {
			return util.ErrDuplicateApplication
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		app = &model.TrainingApplication{
			TrainingID:  req.TrainingID,
			EmployeeID:  req.EmployeeID,
			Status:      model.ApplicationApplied,
			Notes:       strings.TrimSpace(req.Notes),
			SubmittedAt: time.Now(),
		}
		if err := repo.Create(app); err != nil {
			if isDuplicate(err) {
				return util.ErrDuplicateApplication
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(ctx, app, EventApplicationApplied)
	return app, nil
}

func (s *ApplicationService) Approve(ctx context.Context, actor model.Actor, id uint, req ApproveRequest) (app *model.TrainingApplication, err error) {
	ctx, span := tracing.StartSpan(ctx, "ApplicationService.Approve", attribute.Int64("application.id", int64(id)))
	defer func() { tracing.End(span, err) }()

	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		a, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrApplicationNotFound)
		}
		if a.Status != model.ApplicationApplied {
			return util.ErrApplicationNotPending
		}

		training, err := s.TrainingRepo.WithTx(tx).Lock(a.TrainingID)
		if err != nil {
			return notFound(err, util.ErrTrainingNotFound)
		}
		ok, err := hasCapacity(tx, training)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrTrainingFull
		}

		now := time.Now()
		approver := actor.UserID
		a.Status = model.ApplicationApproved
		a.ApprovedBy = &approver
		a.ManagerApprovedAt = &now
		if req.Notes != nil {
			a.Notes = *req.Notes
		}
		if err := repo.Save(a); err != nil {
			return err
		}
		if _, err := syncTrainingEnrollment(tx, a.TrainingID); err != nil {
			return err
		}
		app = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(ctx, app, EventApplicationApproved)
	return app, nil
}

func (s *ApplicationService) Reject(ctx context.Context, actor model.Actor, id uint, req RejectRequest) (*model.TrainingApplication, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}

	var app *model.TrainingApplication
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		a, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrApplicationNotFound)
		}
		if a.Status != model.ApplicationApplied {
			return util.ErrApplicationNotPending
		}

		a.Status = model.ApplicationRejected
		a.RejectionReason = strings.TrimSpace(req.RejectionReason)
		if req.Notes != nil {
			a.Notes = *req.Notes
		}
		app = a
		return repo.Save(a)
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(ctx, app, EventApplicationRejected)
	return app, nil
}

// Cancel withdraws an applied or approved application. The owner or an HR
// admin may cancel.
func (s *ApplicationService) Cancel(ctx context.Context, actor model.Actor, id uint, req CancelRequest) (*model.TrainingApplication, error) {
	var app *model.TrainingApplication
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		a, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrApplicationNotFound)
		}
		if !actor.ActsForEmployee(a.EmployeeID) {
			return util.ErrPermissionDenied
		}
		if !a.Status.CanTransition(model.ApplicationCancelled) {
			return util.ErrApplicationTerminal
		}
		if _, err := s.TrainingRepo.WithTx(tx).Lock(a.TrainingID); err != nil {
			return notFound(err, util.ErrTrainingNotFound)
		}

		now := time.Now()
		a.Status = model.ApplicationCancelled
		a.CancellationReason = strings.TrimSpace(req.Reason)
		a.CancelledAt = &now
		if err := repo.Save(a); err != nil {
			return err
		}
		if _, err := syncTrainingEnrollment(tx, a.TrainingID); err != nil {
			return err
		}
		app = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(ctx, app, EventApplicationCancelled)
	return app, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, actor model.Actor, id uint) (*model.TrainingApplication, error) {
	app, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrApplicationNotFound)
	}
	if !actor.ActsForEmployee(app.EmployeeID) {
		return nil, util.ErrPermissionDenied
	}
	return app, nil
}

// ListApplications restricts non-admin callers to their own applications.
func (s *ApplicationService) ListApplications(ctx context.Context, actor model.Actor, filter repository.ApplicationFilter, page, limit int) ([]model.TrainingApplication, int64, error) {
	if !actor.IsHRAdmin() {
		if actor.EmployeeID == 0 || (filter.EmployeeID != 0 && filter.EmployeeID != actor.EmployeeID) {
			return nil, 0, util.ErrPermissionDenied
		}
		filter.EmployeeID = actor.EmployeeID
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(filter, page, limit)
}

package service

import (
	"context"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"hrm_backend/pkg/logger"
	"hrm_backend/pkg/tracing"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TrainingService struct {
	DB        *gorm.DB
	Repo      *repository.TrainingRepository
	AppRepo   *repository.ApplicationRepository
	Publisher EventPublisher
}

func NewTrainingService(db *gorm.DB, repo *repository.TrainingRepository, appRepo *repository.ApplicationRepository, publisher EventPublisher) *TrainingService {
	return &TrainingService{DB: db, Repo: repo, AppRepo: appRepo, Publisher: publisher}
}

type CreateTrainingRequest struct {
	ProgramName     string     `json:"program_name" binding:"required,max=255"`
	Description     string     `json:"description"`
	Provider        string     `json:"provider" binding:"max=255"`
	Trainer         string     `json:"trainer" binding:"max=255"`
	Location        string     `json:"location" binding:"max=255"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	MaxParticipants int        `json:"max_participants" binding:"gte=0"`
}

type UpdateTrainingRequest struct {
	ProgramName     *string               `json:"program_name" binding:"omitempty,min=1,max=255"`
	Description     *string               `json:"description"`
	Provider        *string               `json:"provider" binding:"omitempty,max=255"`
	Trainer         *string               `json:"trainer" binding:"omitempty,max=255"`
	Location        *string               `json:"location" binding:"omitempty,max=255"`
	StartDate       *time.Time            `json:"start_date"`
	EndDate         *time.Time            `json:"end_date"`
	MaxParticipants *int                  `json:"max_participants" binding:"omitempty,gte=0"`
	Status          *model.TrainingStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

type SessionRequest struct {
	Title    string    `json:"title" binding:"required,max=255"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required,gtfield=StartsAt"`
	Location string    `json:"location" binding:"max=255"`
	Trainer  string    `json:"trainer" binding:"max=255"`
}

// TrainingView adds the derived capacity fields to a training.
type TrainingView struct {
	model.Training
	IsFull         bool `json:"is_full"`
	AvailableSlots *int `json:"available_slots"`
}

func NewTrainingView(t *model.Training) TrainingView {
	return TrainingView{Training: *t, IsFull: t.IsFull(), AvailableSlots: t.AvailableSlots()}
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return util.ValidationError(map[string]string{"end_date": "must not be before start_date"})
	}
	return nil
}

func (s *TrainingService) CreateTraining(ctx context.Context, actor model.Actor, req CreateTrainingRequest) (*model.Training, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	name := strings.TrimSpace(req.ProgramName)
	if name == "" {
		return nil, util.ValidationError(map[string]string{"program_name": "is required"})
	}
	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	training := &model.Training{
		ProgramName:     name,
		Description:     req.Description,
		Provider:        req.Provider,
		Trainer:         req.Trainer,
		Location:        req.Location,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		MaxParticipants: req.MaxParticipants,
		Status:          model.TrainingActive,
		CreatedBy:       actor.UserID,
	}
	if err := s.Repo.WithTx(s.DB.WithContext(ctx)).Create(training); err != nil {
		return nil, err
	}
	return training, nil
}

func (s *TrainingService) UpdateTraining(ctx context.Context, actor model.Actor, id uint, req UpdateTrainingRequest) (*model.Training, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}

	var training *model.Training
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		t, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrTrainingNotFound)
		}

		if req.ProgramName != nil {
			t.ProgramName = strings.TrimSpace(*req.ProgramName)
			if t.ProgramName == "" {
				return util.ValidationError(map[string]string{"program_name": "is required"})
			}
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Provider != nil {
			t.Provider = *req.Provider
		}
		if req.Trainer != nil {
			t.Trainer = *req.Trainer
		}
		if req.Location != nil {
			t.Location = *req.Location
		}
		if req.StartDate != nil {
			t.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			t.EndDate = req.EndDate
		}
		if req.MaxParticipants != nil {
			t.MaxParticipants = *req.MaxParticipants
		}
		if err := validateDates(t.StartDate, t.EndDate); err != nil {
			return err
		}
		// reactivation only; deactivation goes through DeactivateTraining
		if req.Status != nil && *req.Status == model.TrainingActive {
			t.Status = model.TrainingActive
		}
		if req.Status != nil && *req.Status == model.TrainingInactive && t.Status == model.TrainingActive {
			return util.ValidationError(map[string]string{"status": "use DELETE to deactivate a training"})
		}

		training = t
		return repo.Update(t)
	})
	if err != nil {
		return nil, err
	}
	return training, nil
}

func (s *TrainingService) GetTraining(ctx context.Context, id uint) (*model.Training, error) {
	t, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrTrainingNotFound)
	}
	return t, nil
}

func (s *TrainingService) ListTrainings(ctx context.Context, status model.TrainingStatus, page, limit int) ([]model.Training, int64, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(status, page, limit)
}

// DeactivateTraining removes a training from the catalog. Pending
// applications are cancelled in the same transaction; approved and completed
// applications and their completions stay as they are.
func (s *TrainingService) DeactivateTraining(ctx context.Context, actor model.Actor, id uint) (*model.Training, []uint, error) {
	if !actor.IsHRAdmin() {
		return nil, nil, util.ErrPermissionDenied
	}

	ctx, span := tracing.StartSpan(ctx, "TrainingService.DeactivateTraining", attribute.Int64("training.id", int64(id)))
	var (
		training  *model.Training
		cancelled = []uint{}
		err       error
	)
	defer func() { tracing.End(span, err) }()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		t, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrTrainingNotFound)
		}
		if err := repo.SetStatus(id, model.TrainingInactive); err != nil {
			return err
		}

		appRepo := s.AppRepo.WithTx(tx)
		pending, err := appRepo.ListByTrainingStatus(id, model.ApplicationApplied)
		if err != nil {
			return err
		}
		now := time.Now()
		for i := range pending {
			app := &pending[i]
			app.Status = model.ApplicationCancelled
			app.CancellationReason = util.DiscontinuedReason
			app.CancelledAt = &now
			if err := appRepo.Save(app); err != nil {
				return err
			}
			cancelled = append(cancelled, app.ID)
		}

		count, err := syncTrainingEnrollment(tx, id)
		if err != nil {
			return err
		}
		t.Status = model.TrainingInactive
		t.EnrolledCount = count
		training = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Log.Info("Training deactivated",
		zap.Uint("training_id", id),
		zap.Int("cancelled_applications", len(cancelled)))
	s.Publisher.Publish(ctx, Event{Type: EventTrainingDeactivated, EntityID: id, UserID: actor.UserID})
	for _, appID := range cancelled {
		s.Publisher.Publish(ctx, Event{Type: EventApplicationCancelled, EntityID: appID})
	}
	return training, cancelled, nil
}

func (s *TrainingService) requireTraining(ctx context.Context, id uint) error {
	if _, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id); err != nil {
		return notFound(err, util.ErrTrainingNotFound)
	}
	return nil
}

func (s *TrainingService) CreateSession(ctx context.Context, actor model.Actor, trainingID uint, req SessionRequest) (*model.TrainingSession, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if err := s.requireTraining(ctx, trainingID); err != nil {
		return nil, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, util.ValidationError(map[string]string{"ends_at": "must be after starts_at"})
	}

	session := &model.TrainingSession{
		TrainingID: trainingID,
		Title:      strings.TrimSpace(req.Title),
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Location:   req.Location,
		Trainer:    req.Trainer,
	}
	if err := s.Repo.WithTx(s.DB.WithContext(ctx)).CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *TrainingService) ListSessions(ctx context.Context, trainingID uint) ([]model.TrainingSession, error) {
	if err := s.requireTraining(ctx, trainingID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ListSessions(trainingID)
}

func (s *TrainingService) UpdateSession(ctx context.Context, actor model.Actor, trainingID, sessionID uint, req SessionRequest) (*model.TrainingSession, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, util.ValidationError(map[string]string{"ends_at": "must be after starts_at"})
	}

	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	session, err := repo.FindSession(trainingID, sessionID)
	if err != nil {
		return nil, notFound(err, util.ErrSessionNotFound)
	}
	session.Title = strings.TrimSpace(req.Title)
	session.StartsAt = req.StartsAt
	session.EndsAt = req.EndsAt
	session.Location = req.Location
	session.Trainer = req.Trainer
	if err := repo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *TrainingService) DeleteSession(ctx context.Context, actor model.Actor, trainingID, sessionID uint) error {
	if !actor.IsHRAdmin() {
		return util.ErrPermissionDenied
	}
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	if _, err := repo.FindSession(trainingID, sessionID); err != nil {
		return notFound(err, util.ErrSessionNotFound)
	}
	return repo.DeleteSession(sessionID)
}

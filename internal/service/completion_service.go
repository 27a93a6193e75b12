package service

import (
	"context"
	"fmt"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"hrm_backend/pkg/logger"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompletionService struct {
	DB           *gorm.DB
	Repo         *repository.CompletionRepository
	AppRepo      *repository.ApplicationRepository
	TrainingRepo *repository.TrainingRepository
	Storage      *StorageService
	Publisher    EventPublisher
}

func NewCompletionService(
	db *gorm.DB,
	repo *repository.CompletionRepository,
	appRepo *repository.ApplicationRepository,
	trainingRepo *repository.TrainingRepository,
	storage *StorageService,
	publisher EventPublisher,
) *CompletionService {
	return &CompletionService{
		DB:           db,
		Repo:         repo,
		AppRepo:      appRepo,
		TrainingRepo: trainingRepo,
		Storage:      storage,
		Publisher:    publisher,
	}
}

type CreateCompletionRequest struct {
	EmployeeID      uint      `json:"employee_id" binding:"required"`
	TrainingID      *uint     `json:"training_id"`
	ApplicationID   *uint     `json:"application_id"`
	CompletionDate  time.Time `json:"completion_date" binding:"required"`
	ScorePercentage *float64  `json:"score_percentage" binding:"omitempty,gte=0,lte=100"`
	Grade           string    `json:"grade" binding:"max=16"`
}

type IssueCertificateRequest struct {
	IssuedBy   string     `form:"issued_by" json:"issued_by" binding:"required,max=255"`
	IssueDate  time.Time  `form:"issue_date" json:"issue_date" time_format:"2006-01-02" binding:"required"`
	ExpiryDate *time.Time `form:"expiry_date" json:"expiry_date" time_format:"2006-01-02"`
}

type FeedbackRequest struct {
	Rating         int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comments       string `json:"comments"`
	WouldRecommend bool   `json:"would_recommend"`
}

type AssessmentRequest struct {
	Score        int    `json:"score" binding:"gte=0,lte=100"`
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
}

type PerformanceNoteRequest struct {
	Note         string `json:"note" binding:"required"`
	ImpactRating int    `json:"impact_rating" binding:"omitempty,gte=1,lte=5"`
}

// CreateCompletion records a finished training. When the request names an
// application, that application must be approved; it is moved to completed
// in the same transaction.
func (s *CompletionService) CreateCompletion(ctx context.Context, actor model.Actor, req CreateCompletionRequest) (*model.TrainingCompletion, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if req.ScorePercentage != nil && (*req.ScorePercentage < 0 || *req.ScorePercentage > 100) {
		return nil, util.ValidationError(map[string]string{"score_percentage": "must be between 0 and 100"})
	}
	if req.CompletionDate.IsZero() {
		return nil, util.ValidationError(map[string]string{"completion_date": "is required"})
	}

	var (
		completion *model.TrainingCompletion
		app        *model.TrainingApplication
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trainingID := req.TrainingID

		if req.ApplicationID != nil {
			appRepo := s.AppRepo.WithTx(tx)
			a, err := appRepo.Lock(*req.ApplicationID)
			if err != nil {
				return notFound(err, util.ErrApplicationNotFound)
			}
			if a.EmployeeID != req.EmployeeID {
				return util.ValidationError(map[string]string{"employee_id": "does not match the application"})
			}
			if trainingID != nil && *trainingID != a.TrainingID {
				return util.ValidationError(map[string]string{"training_id": "does not match the application"})
			}
			if a.Status == model.ApplicationCompleted {
				return util.ErrDuplicateCompletion
			}
			if !a.Status.CanTransition(model.ApplicationCompleted) {
				return util.ErrApplicationNotApproved
			}
			if _, err := s.TrainingRepo.WithTx(tx).Lock(a.TrainingID); err != nil {
				return notFound(err, util.ErrTrainingNotFound)
			}

			now := time.Now()
			a.Status = model.ApplicationCompleted
			a.CompletedAt = &now
			if err := appRepo.Save(a); err != nil {
				return err
			}
			if _, err := syncTrainingEnrollment(tx, a.TrainingID); err != nil {
				return err
			}
			tid := a.TrainingID
			trainingID = &tid
			app = a
		} else if trainingID != nil {
			if _, err := s.TrainingRepo.WithTx(tx).FindByID(*trainingID); err != nil {
				return notFound(err, util.ErrTrainingNotFound)
			}
		}

		completion = &model.TrainingCompletion{
			EmployeeID:      req.EmployeeID,
			TrainingID:      trainingID,
			ApplicationID:   req.ApplicationID,
			CompletionDate:  req.CompletionDate,
			ScorePercentage: req.ScorePercentage,
			Grade:           strings.TrimSpace(req.Grade),
			RecordedBy:      actor.UserID,
		}
		if err := s.Repo.WithTx(tx).Create(completion); err != nil {
			if isDuplicate(err) {
				return util.ErrDuplicateCompletion
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if app != nil {
		logger.Log.Info("Training application completed",
			zap.Uint("application_id", app.ID),
			zap.Uint("completion_id", completion.ID))
		s.Publisher.Publish(ctx, Event{Type: EventApplicationCompleted, EntityID: app.ID, EmployeeID: app.EmployeeID})
	}
	return completion, nil
}

func (s *CompletionService) GetCompletion(ctx context.Context, actor model.Actor, id uint) (*model.TrainingCompletion, error) {
	completion, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrCompletionNotFound)
	}
	if !actor.ActsForEmployee(completion.EmployeeID) {
		return nil, util.ErrPermissionDenied
	}
	return completion, nil
}

func (s *CompletionService) ListCompletions(ctx context.Context, actor model.Actor, filter repository.CompletionFilter, page, limit int) ([]model.TrainingCompletion, int64, error) {
	if !actor.IsHRAdmin() {
		if actor.EmployeeID == 0 || (filter.EmployeeID != 0 && filter.EmployeeID != actor.EmployeeID) {
			return nil, 0, util.ErrPermissionDenied
		}
		filter.EmployeeID = actor.EmployeeID
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(filter, page, limit)
}

// IssueCertificate attaches a certificate to a completion. The optional file
// is stored before the transaction and removed again if the transaction
// fails.
func (s *CompletionService) IssueCertificate(ctx context.Context, actor model.Actor, completionID uint, req IssueCertificateRequest, file *multipart.FileHeader) (*model.TrainingCertificate, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if req.ExpiryDate != nil && !req.ExpiryDate.After(req.IssueDate) {
		return nil, util.ValidationError(map[string]string{"expiry_date": "must be after issue_date"})
	}
	if _, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(completionID); err != nil {
		return nil, notFound(err, util.ErrCompletionNotFound)
	}

	var stored *StoredObject
	if file != nil {
		obj, err := s.Storage.StoreUpload(ctx, fmt.Sprintf("certificates/%d", completionID), file, util.AllowedCertificateTypes, util.MaxCertificateSize)
		if err != nil {
			return nil, err
		}
		stored = obj
	}

	cert := &model.TrainingCertificate{
		CompletionID:      completionID,
		CertificateNumber: "CERT-" + strings.ToUpper(model.GenerateUUID()),
		IssuedBy:          strings.TrimSpace(req.IssuedBy),
		IssueDate:         req.IssueDate,
		ExpiryDate:        req.ExpiryDate,
	}
	if stored != nil {
		cert.FilePath = stored.Key
		cert.FileURL = stored.URL
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		if _, err := repo.Lock(completionID); err != nil {
			return notFound(err, util.ErrCompletionNotFound)
		}
		if err := repo.CreateCertificate(cert); err != nil {
			return err
		}
		return repo.MarkCertificateIssued(completionID)
	})
	if err != nil {
		if stored != nil {
			if delErr := s.Storage.Delete(ctx, stored.Key); delErr != nil {
				logger.Log.Warn("Failed to remove orphaned certificate file",
					zap.String("key", stored.Key), zap.Error(delErr))
			}
		}
		return nil, err
	}
	return cert, nil
}

func (s *CompletionService) ListCertificates(ctx context.Context, actor model.Actor, completionID uint) ([]model.TrainingCertificate, error) {
	if _, err := s.GetCompletion(ctx, actor, completionID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ListCertificates(completionID)
}

func isReviewer(actor model.Actor) bool {
	return actor.IsHRAdmin() || actor.Role == model.RoleManager || actor.Role == model.RoleTrainer
}

// reviewableApplication loads an application that has reached approved or
// completed; satellite records only attach to those.
func (s *CompletionService) reviewableApplication(ctx context.Context, id uint) (*model.TrainingApplication, error) {
	app, err := s.AppRepo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrApplicationNotFound)
	}
	if app.Status != model.ApplicationApproved && app.Status != model.ApplicationCompleted {
		return nil, util.ErrApplicationNotApproved
	}
	return app, nil
}

func (s *CompletionService) SubmitFeedback(ctx context.Context, actor model.Actor, applicationID uint, req FeedbackRequest) (*model.TrainingFeedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, util.ValidationError(map[string]string{"rating": "must be between 1 and 5"})
	}
	app, err := s.reviewableApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !actor.ActsForEmployee(app.EmployeeID) {
		return nil, util.ErrPermissionDenied
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).UpsertFeedback(&model.TrainingFeedback{
		ApplicationID:  applicationID,
		EmployeeID:     app.EmployeeID,
		Rating:         req.Rating,
		Comments:       req.Comments,
		WouldRecommend: req.WouldRecommend,
	})
}

func (s *CompletionService) GetFeedback(ctx context.Context, actor model.Actor, applicationID uint) (*model.TrainingFeedback, error) {
	fb, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindFeedback(applicationID)
	if err != nil {
		return nil, notFound(err, util.ErrFeedbackNotFound)
	}
	if !isReviewer(actor) && !actor.ActsForEmployee(fb.EmployeeID) {
		return nil, util.ErrPermissionDenied
	}
	return fb, nil
}

func (s *CompletionService) SubmitAssessment(ctx context.Context, actor model.Actor, applicationID uint, req AssessmentRequest) (*model.TrainerAssessment, error) {
	if !actor.IsHRAdmin() && actor.Role != model.RoleTrainer {
		return nil, util.ErrPermissionDenied
	}
	if req.Score < 0 || req.Score > 100 {
		return nil, util.ValidationError(map[string]string{"score": "must be between 0 and 100"})
	}
	if _, err := s.reviewableApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).UpsertAssessment(&model.TrainerAssessment{
		ApplicationID: applicationID,
		AssessorID:    actor.UserID,
		Score:         req.Score,
		Strengths:     req.Strengths,
		Improvements:  req.Improvements,
	})
}

func (s *CompletionService) GetAssessment(ctx context.Context, actor model.Actor, applicationID uint) (*model.TrainerAssessment, error) {
	if !isReviewer(actor) {
		return nil, util.ErrPermissionDenied
	}
	a, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindAssessment(applicationID)
	if err != nil {
		return nil, notFound(err, util.ErrAssessmentNotFound)
	}
	return a, nil
}

func (s *CompletionService) SubmitPerformanceNote(ctx context.Context, actor model.Actor, applicationID uint, req PerformanceNoteRequest) (*model.PerformanceNote, error) {
	if !actor.IsHRAdmin() && actor.Role != model.RoleManager {
		return nil, util.ErrPermissionDenied
	}
	if strings.TrimSpace(req.Note) == "" {
		return nil, util.ValidationError(map[string]string{"note": "is required"})
	}
	if req.ImpactRating != 0 && (req.ImpactRating < 1 || req.ImpactRating > 5) {
		return nil, util.ValidationError(map[string]string{"impact_rating": "must be between 1 and 5"})
	}
	if _, err := s.reviewableApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).UpsertNote(&model.PerformanceNote{
		ApplicationID: applicationID,
		AuthorID:      actor.UserID,
		Note:          req.Note,
		ImpactRating:  req.ImpactRating,
	})
}

func (s *CompletionService) GetPerformanceNote(ctx context.Context, actor model.Actor, applicationID uint) (*model.PerformanceNote, error) {
	if !isReviewer(actor) {
		return nil, util.ErrPermissionDenied
	}
	n, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindNote(applicationID)
	if err != nil {
		return nil, notFound(err, util.ErrNoteNotFound)
	}
	return n, nil
}

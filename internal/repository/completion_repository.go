package repository

import (
	"hrm_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionRepository stores completions, their certificates and the
// per-application satellite records.
type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

func (r *CompletionRepository) WithTx(tx *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: tx}
}

type CompletionFilter struct {
	EmployeeID uint
	TrainingID uint
}

func (r *CompletionRepository) Create(completion *model.TrainingCompletion) error {
	return r.DB.Create(completion).Error
}

func (r *CompletionRepository) FindByID(id uint) (*model.TrainingCompletion, error) {
	var completion model.TrainingCompletion
	err := r.DB.First(&completion, id).Error
	return &completion, err
}

func (r *CompletionRepository) Lock(id uint) (*model.TrainingCompletion, error) {
	var completion model.TrainingCompletion
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&completion, id).Error
	return &completion, err
}

func (r *CompletionRepository) MarkCertificateIssued(id uint) error {
	return r.DB.Model(&model.TrainingCompletion{}).Where("id = ?", id).Update("certificate_issued", true).Error
}

func (r *CompletionRepository) List(filter CompletionFilter, page, limit int) ([]model.TrainingCompletion, int64, error) {
	var completions []model.TrainingCompletion
	var total int64

	query := r.DB.Model(&model.TrainingCompletion{})
	if filter.EmployeeID > 0 {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.TrainingID > 0 {
		query = query.Where("training_id = ?", filter.TrainingID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&completions).Error
	return completions, total, err
}

func (r *CompletionRepository) CreateCertificate(cert *model.TrainingCertificate) error {
	return r.DB.Create(cert).Error
}

func (r *CompletionRepository) ListCertificates(completionID uint) ([]model.TrainingCertificate, error) {
	var certs []model.TrainingCertificate
	err := r.DB.Where("completion_id = ?", completionID).Order("issue_date desc, id desc").Find(&certs).Error
	return certs, err
}

// UpsertFeedback overwrites the feedback of an application if one exists.
func (r *CompletionRepository) UpsertFeedback(fb *model.TrainingFeedback) (*model.TrainingFeedback, error) {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"employee_id", "rating", "comments", "would_recommend", "updated_at"}),
	}).Create(fb).Error
	if err != nil {
		return nil, err
	}
	return r.FindFeedback(fb.ApplicationID)
}

func (r *CompletionRepository) FindFeedback(applicationID uint) (*model.TrainingFeedback, error) {
	var fb model.TrainingFeedback
	err := r.DB.Where("application_id = ?", applicationID).First(&fb).Error
	return &fb, err
}

func (r *CompletionRepository) UpsertAssessment(a *model.TrainerAssessment) (*model.TrainerAssessment, error) {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"assessor_id", "score", "strengths", "improvements", "updated_at"}),
	}).Create(a).Error
	if err != nil {
		return nil, err
	}
	return r.FindAssessment(a.ApplicationID)
}

func (r *CompletionRepository) FindAssessment(applicationID uint) (*model.TrainerAssessment, error) {
	var a model.TrainerAssessment
	err := r.DB.Where("application_id = ?", applicationID).First(&a).Error
	return &a, err
}

func (r *CompletionRepository) UpsertNote(n *model.PerformanceNote) (*model.PerformanceNote, error) {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"author_id", "note", "impact_rating", "updated_at"}),
	}).Create(n).Error
	if err != nil {
		return nil, err
	}
	return r.FindNote(n.ApplicationID)
}

func (r *CompletionRepository) FindNote(applicationID uint) (*model.PerformanceNote, error) {
	var n model.PerformanceNote
	err := r.DB.Where("application_id = ?", applicationID).First(&n).Error
	return &n, err
}

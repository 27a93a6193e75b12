package repository

import (
	"hrm_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrainingRepository struct {
	DB *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{DB: db}
}

func (r *TrainingRepository) WithTx(tx *gorm.DB) *TrainingRepository {
	return &TrainingRepository{DB: tx}
}

func (r *TrainingRepository) Create(training *model.Training) error {
	return r.DB.Create(training).Error
}

func (r *TrainingRepository) FindByID(id uint) (*model.Training, error) {
	var training model.Training
	err := r.DB.First(&training, id).Error
	return &training, err
}

// Lock reads the training with a row lock so capacity checks and the
// following write are serialized.
func (r *TrainingRepository) Lock(id uint) (*model.Training, error) {
	var training model.Training
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&training, id).Error
	return &training, err
}

func (r *TrainingRepository) List(status model.TrainingStatus, page, limit int) ([]model.Training, int64, error) {
	var trainings []model.Training
	var total int64

	query := r.DB.Model(&model.Training{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&trainings).Error
	return trainings, total, err
}

func (r *TrainingRepository) Update(training *model.Training) error {
	return r.DB.Save(training).Error
}

func (r *TrainingRepository) SetStatus(id uint, status model.TrainingStatus) error {
	return r.DB.Model(&model.Training{}).Where("id = ?", id).Update("status", status).Error
}

func (r *TrainingRepository) SetEnrolledCount(id uint, count int) error {
	return r.DB.Model(&model.Training{}).Where("id = ?", id).Update("enrolled_count", count).Error
}

func (r *TrainingRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Training{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *TrainingRepository) CreateSession(session *model.TrainingSession) error {
	return r.DB.Create(session).Error
}

func (r *TrainingRepository) FindSession(trainingID, sessionID uint) (*model.TrainingSession, error) {
	var session model.TrainingSession
	err := r.DB.Where("id = ? AND training_id = ?", sessionID, trainingID).First(&session).Error
	return &session, err
}

func (r *TrainingRepository) ListSessions(trainingID uint) ([]model.TrainingSession, error) {
	var sessions []model.TrainingSession
	err := r.DB.Where("training_id = ?", trainingID).Order("starts_at asc, id asc").Find(&sessions).Error
	return sessions, err
}

func (r *TrainingRepository) UpdateSession(session *model.TrainingSession) error {
	return r.DB.Save(session).Error
}

func (r *TrainingRepository) DeleteSession(id uint) error {
	return r.DB.Delete(&model.TrainingSession{}, id).Error
}

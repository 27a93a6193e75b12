package repository

import (
	"hrm_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

func (r *ApplicationRepository) WithTx(tx *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: tx}
}

type ApplicationFilter struct {
	TrainingID uint
	EmployeeID uint
	Status     model.ApplicationStatus
}

// Create fails with gorm.ErrDuplicatedKey when an active application for the
// same employee and training exists.
func (r *ApplicationRepository) Create(app *model.TrainingApplication) error {
	return r.DB.Create(app).Error
}

func (r *ApplicationRepository) FindByID(id uint) (*model.TrainingApplication, error) {
	var app model.TrainingApplication
	err := r.DB.First(&app, id).Error
	return &app, err
}

func (r *ApplicationRepository) Lock(id uint) (*model.TrainingApplication, error) {
	var app model.TrainingApplication
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, id).Error
	return &app, err
}

// Save writes every column; status changes must go through here so the
// active key hook runs.
func (r *ApplicationRepository) Save(app *model.TrainingApplication) error {
	return r.DB.Save(app).Error
}

func (r *ApplicationRepository) List(filter ApplicationFilter, page, limit int) ([]model.TrainingApplication, int64, error) {
	var apps []model.TrainingApplication
	var total int64

	query := r.DB.Model(&model.TrainingApplication{})
	if filter.TrainingID > 0 {
		query = query.Where("training_id = ?", filter.TrainingID)
	}
	if filter.EmployeeID > 0 {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepository) FindActive(employeeID, trainingID uint) (*model.TrainingApplication, error) {
	var app model.TrainingApplication
	err := r.DB.Where("active_key = ?", model.ApplicationActiveKey(employeeID, trainingID)).First(&app).Error
	return &app, err
}

func (r *ApplicationRepository) ListByTrainingStatus(trainingID uint, status model.ApplicationStatus) ([]model.TrainingApplication, error) {
	var apps []model.TrainingApplication
	err := r.DB.Where("training_id = ? AND status = ?", trainingID, status).Order("id").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) CountByStatus(trainingID uint) (map[model.ApplicationStatus]int, error) {
	var rows []struct {
		Status model.ApplicationStatus
		Total  int
	}
	err := r.DB.Model(&model.TrainingApplication{}).
		Select("status, COUNT(*) AS total").
		Where("training_id = ?", trainingID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *ApplicationRepository) CountApproved(trainingID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.TrainingApplication{}).
		Where("training_id = ? AND status = ?", trainingID, model.ApplicationApproved).
		Count(&n).Error
	return n, err
}

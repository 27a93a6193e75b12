package repository

import (
	"hrm_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ProgressRepository is the enrollment ledger: one learning_progress row per
// (user, course).
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

type ProgressFilter struct {
	UserID   uint
	CourseID uint
	Status   model.ProgressStatus
}

func (r *ProgressRepository) Create(p *model.LearningProgress) error {
	return r.DB.Create(p).Error
}

func (r *ProgressRepository) FindByID(id uint) (*model.LearningProgress, error) {
	var p model.LearningProgress
	err := r.DB.First(&p, id).Error
	return &p, err
}

func (r *ProgressRepository) FindByUserCourse(userID, courseID uint) (*model.LearningProgress, error) {
	var p model.LearningProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) Save(p *model.LearningProgress) error {
	return r.DB.Save(p).Error
}

// Delete removes the row for good so (user, course) can be enrolled again.
func (r *ProgressRepository) Delete(id uint) error {
	return r.DB.Delete(&model.LearningProgress{}, id).Error
}

func (r *ProgressRepository) List(filter ProgressFilter, page, limit int) ([]model.LearningProgress, int64, error) {
	var rows []model.LearningProgress
	var total int64

	query := r.DB.Model(&model.LearningProgress{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CourseID > 0 {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

// UserIDsForCourse returns the ledger membership of a course, ascending.
func (r *ProgressRepository) UserIDsForCourse(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.LearningProgress{}).
		Where("course_id = ?", courseID).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ProgressRepository) CountForCourse(courseID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.LearningProgress{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

func (r *ProgressRepository) ListForUserCourses(userID uint, courseIDs []uint) ([]model.LearningProgress, error) {
	var rows []model.LearningProgress
	if len(courseIDs) == 0 {
		return rows, nil
	}
	err := r.DB.Where("user_id = ? AND course_id IN ?", userID, courseIDs).Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.LearningProgress, error) {
	var rows []model.LearningProgress
	err := r.DB.Where("user_id = ?", userID).Order("id").Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListByCourse(courseID uint) ([]model.LearningProgress, error) {
	var rows []model.LearningProgress
	err := r.DB.Where("course_id = ?", courseID).Order("id").Find(&rows).Error
	return rows, err
}

// ListPlanSourced returns the rows a plan enrollment created for a user that
// are not completed yet.
func (r *ProgressRepository) ListPlanSourced(userID, planID uint) ([]model.LearningProgress, error) {
	var rows []model.LearningProgress
	err := r.DB.Where("user_id = ? AND source = ? AND source_id = ? AND status <> ?",
		userID, model.SourceLearningPlan, planID, model.ProgressCompleted).
		Order("id").Find(&rows).Error
	return rows, err
}

// AccessTimesSince returns last_accessed stamps at or after since.
func (r *ProgressRepository) AccessTimesSince(userID uint, since time.Time) ([]time.Time, error) {
	var rows []model.LearningProgress
	err := r.DB.Select("last_accessed").
		Where("user_id = ? AND last_accessed IS NOT NULL AND last_accessed >= ?", userID, since).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		times = append(times, *row.LastAccessed)
	}
	return times, nil
}

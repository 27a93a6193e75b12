package repository

import (
	"hrm_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// WithTx binds the repository to a transaction (or a context-scoped session).
func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

type CourseFilter struct {
	Status   model.CourseStatus
	Category model.CourseCategory
	Level    model.CourseLevel
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// Lock reads the course with a row lock held until the transaction ends.
func (r *CourseRepository) Lock(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) List(filter CourseFilter, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// ExistingIDs returns the subset of ids that resolve to a course.
func (r *CourseRepository) ExistingIDs(ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	err := r.DB.Model(&model.Course{}).Where("id IN ?", ids).Pluck("id", &found).Error
	return found, err
}

func (r *CourseRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Course{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// SetEnrollment overwrites the cached membership of a course.
func (r *CourseRepository) SetEnrollment(courseID uint, users []uint) error {
	if users == nil {
		users = []uint{}
	}
	return r.DB.Model(&model.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"enrolled_users": datatypes.JSONSlice[uint](users),
		"enrolled_count": len(users),
	}).Error
}

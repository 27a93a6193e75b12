package repository

import (
	"hrm_backend/internal/model"

	"gorm.io/gorm"
)

type EmployeeRepository struct {
	DB *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) WithTx(tx *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: tx}
}

type EmployeeFilter struct {
	Department string
	Status     model.EmployeeStatus
}

func (r *EmployeeRepository) Create(e *model.Employee) error {
	return r.DB.Create(e).Error
}

func (r *EmployeeRepository) FindByID(id uint) (*model.Employee, error) {
	var e model.Employee
	err := r.DB.First(&e, id).Error
	return &e, err
}

func (r *EmployeeRepository) FindByUserID(userID uint) (*model.Employee, error) {
	var e model.Employee
	err := r.DB.Where("user_id = ?", userID).First(&e).Error
	return &e, err
}

func (r *EmployeeRepository) List(filter EmployeeFilter, page, limit int) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	query := r.DB.Model(&model.Employee{})
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&employees).Error
	return employees, total, err
}

func (r *EmployeeRepository) All() ([]model.Employee, error) {
	var employees []model.Employee
	err := r.DB.Order("id").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Update(e *model.Employee) error {
	return r.DB.Save(e).Error
}

func (r *EmployeeRepository) UpdatePhoto(id uint, url string) error {
	return r.DB.Model(&model.Employee{}).Where("id = ?", id).Update("photo_url", url).Error
}

func (r *EmployeeRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Employee{}, id).Error
}

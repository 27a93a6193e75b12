package repository

import (
	"hrm_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearningPlanRepository struct {
	DB *gorm.DB
}

func NewLearningPlanRepository(db *gorm.DB) *LearningPlanRepository {
	return &LearningPlanRepository{DB: db}
}

func (r *LearningPlanRepository) WithTx(tx *gorm.DB) *LearningPlanRepository {
	return &LearningPlanRepository{DB: tx}
}

type PlanFilter struct {
	Status model.LearningPlanStatus
	UserID uint // plans assigned to this user
}

// Create inserts the plan together with its ordered course set.
func (r *LearningPlanRepository) Create(plan *model.LearningPlan) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		return replaceCourses(tx, plan.ID, plan.CourseIDs)
	})
}

func (r *LearningPlanRepository) FindByID(id uint) (*model.LearningPlan, error) {
	return r.find(r.DB, id)
}

// Lock loads the plan with a row lock. Assigning users and deleting the plan
// both take it.
func (r *LearningPlanRepository) Lock(id uint) (*model.LearningPlan, error) {
	return r.find(r.DB.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *LearningPlanRepository) find(db *gorm.DB, id uint) (*model.LearningPlan, error) {
	var plan model.LearningPlan
	if err := db.First(&plan, id).Error; err != nil {
		return &plan, err
	}
	if err := r.loadMembers([]*model.LearningPlan{&plan}); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *LearningPlanRepository) List(filter PlanFilter, page, limit int) ([]model.LearningPlan, int64, error) {
	var plans []model.LearningPlan
	var total int64

	query := r.DB.Model(&model.LearningPlan{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID > 0 {
		query = query.Where("id IN (?)", r.DB.Model(&model.LearningPlanAssignment{}).
			Select("plan_id").Where("user_id = ?", filter.UserID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&plans).Error; err != nil {
		return nil, 0, err
	}

	ptrs := make([]*model.LearningPlan, len(plans))
	for i := range plans {
		ptrs[i] = &plans[i]
	}
	if err := r.loadMembers(ptrs); err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *LearningPlanRepository) loadMembers(plans []*model.LearningPlan) error {
	if len(plans) == 0 {
		return nil
	}
	byID := make(map[uint]*model.LearningPlan, len(plans))
	ids := make([]uint, 0, len(plans))
	for _, p := range plans {
		p.CourseIDs = []uint{}
		p.AssignedUsers = []uint{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	var courses []model.LearningPlanCourse
	if err := r.DB.Where("plan_id IN ?", ids).Order("plan_id, position, id").Find(&courses).Error; err != nil {
		return err
	}
	for _, c := range courses {
		byID[c.PlanID].CourseIDs = append(byID[c.PlanID].CourseIDs, c.CourseID)
	}

	var assignments []model.LearningPlanAssignment
	if err := r.DB.Where("plan_id IN ?", ids).Order("plan_id, user_id").Find(&assignments).Error; err != nil {
		return err
	}
	for _, a := range assignments {
		byID[a.PlanID].AssignedUsers = append(byID[a.PlanID].AssignedUsers, a.UserID)
	}
	return nil
}

func (r *LearningPlanRepository) Update(plan *model.LearningPlan) error {
	return r.DB.Save(plan).Error
}

// ReplaceCourses rewrites the ordered course set of a plan.
func (r *LearningPlanRepository) ReplaceCourses(planID uint, courseIDs []uint) error {
	return replaceCourses(r.DB, planID, courseIDs)
}

func replaceCourses(tx *gorm.DB, planID uint, courseIDs []uint) error {
	if err := tx.Where("plan_id = ?", planID).Delete(&model.LearningPlanCourse{}).Error; err != nil {
		return err
	}
	if len(courseIDs) == 0 {
		return nil
	}
	rows := make([]model.LearningPlanCourse, 0, len(courseIDs))
	for i, id := range courseIDs {
		rows = append(rows, model.LearningPlanCourse{PlanID: planID, CourseID: id, Position: i})
	}
	return tx.Create(&rows).Error
}

// Delete soft deletes the plan and drops its join rows.
func (r *LearningPlanRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&model.LearningPlanCourse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).Delete(&model.LearningPlanAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.LearningPlan{}, id).Error
	})
}

// AddAssignment fails with gorm.ErrDuplicatedKey when the user is already
// assigned.
func (r *LearningPlanRepository) AddAssignment(planID, userID, assignedBy uint) error {
	return r.DB.Create(&model.LearningPlanAssignment{
		PlanID:     planID,
		UserID:     userID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now(),
	}).Error
}

// RemoveAssignment reports whether a row was deleted.
func (r *LearningPlanRepository) RemoveAssignment(planID, userID uint) (bool, error) {
	res := r.DB.Where("plan_id = ? AND user_id = ?", planID, userID).Delete(&model.LearningPlanAssignment{})
	return res.RowsAffected > 0, res.Error
}

func (r *LearningPlanRepository) CountAssignments(planID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.LearningPlanAssignment{}).Where("plan_id = ?", planID).Count(&n).Error
	return n, err
}

func (r *LearningPlanRepository) IsAssigned(planID, userID uint) (bool, error) {
	var n int64
	err := r.DB.Model(&model.LearningPlanAssignment{}).
		Where("plan_id = ? AND user_id = ?", planID, userID).Count(&n).Error
	return n > 0, err
}

package service

import (
	"context"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

type LearningPlanService struct {
	DB         *gorm.DB
	Repo       *repository.LearningPlanRepository
	CourseRepo *repository.CourseRepository
}

func NewLearningPlanService(db *gorm.DB, repo *repository.LearningPlanRepository, courseRepo *repository.CourseRepository) *LearningPlanService {
	return &LearningPlanService{DB: db, Repo: repo, CourseRepo: courseRepo}
}

type CreatePlanRequest struct {
	Title       string                   `json:"title" binding:"required,max=255"`
	Description string                   `json:"description"`
	DueDate     *time.Time               `json:"due_date"`
	Courses     []uint                   `json:"courses" binding:"required,min=1"`
	Status      model.LearningPlanStatus `json:"status" binding:"omitempty,oneof=draft active completed overdue"`
}

type UpdatePlanRequest struct {
	Title       *string                   `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string                   `json:"description"`
	DueDate     *time.Time                `json:"due_date"`
	Courses     []uint                    `json:"courses"`
	Status      *model.LearningPlanStatus `json:"status" binding:"omitempty,oneof=draft active completed overdue"`
}

func (s *LearningPlanService) validateCourses(repo *repository.CourseRepository, courses []uint) ([]uint, error) {
	ids := uniqueIDs(courses)
	if len(ids) == 0 {
		return nil, util.ValidationError(map[string]string{"courses": "must contain at least one course"})
	}
	if err := checkCourseRefs(repo, "courses", ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *LearningPlanService) CreatePlan(ctx context.Context, actor model.Actor, req CreatePlanRequest) (*model.LearningPlan, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.ValidationError(map[string]string{"title": "is required"})
	}

	status := req.Status
	if status == "" {
		status = model.PlanDraft
	}

	var plan *model.LearningPlan
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := s.validateCourses(s.CourseRepo.WithTx(tx), req.Courses)
		if err != nil {
			return err
		}
		plan = &model.LearningPlan{
			Title:       title,
			Description: req.Description,
			DueDate:     req.DueDate,
			Status:      status,
			CreatedBy:   actor.UserID,
			CourseIDs:   ids,
		}
		if err := s.Repo.WithTx(tx).Create(plan); err != nil {
			return err
		}
		plan.AssignedUsers = []uint{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *LearningPlanService) UpdatePlan(ctx context.Context, actor model.Actor, id uint, req UpdatePlanRequest) (*model.LearningPlan, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}

	var plan *model.LearningPlan
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		p, err := repo.FindByID(id)
		if err != nil {
			return notFound(err, util.ErrPlanNotFound)
		}

		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
			if p.Title == "" {
				return util.ValidationError(map[string]string{"title": "is required"})
			}
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.DueDate != nil {
			p.DueDate = req.DueDate
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		if req.Courses != nil {
			ids, err := s.validateCourses(s.CourseRepo.WithTx(tx), req.Courses)
			if err != nil {
				return err
			}
			if err := repo.ReplaceCourses(p.ID, ids); err != nil {
				return err
			}
			p.CourseIDs = ids
		}

		plan = p
		return repo.Update(p)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *LearningPlanService) GetPlan(ctx context.Context, id uint) (*model.LearningPlan, error) {
	plan, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrPlanNotFound)
	}
	return plan, nil
}

func (s *LearningPlanService) ListPlans(ctx context.Context, filter repository.PlanFilter, page, limit int) ([]model.LearningPlan, int64, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(filter, page, limit)
}

// DeletePlan only removes draft plans nobody is assigned to. Assignees have
// to be unenrolled first so their plan enrollments are cleaned up with them.
func (s *LearningPlanService) DeletePlan(ctx context.Context, actor model.Actor, id uint) error {
	if !actor.IsHRAdmin() {
		return util.ErrPermissionDenied
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		plan, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrPlanNotFound)
		}
		if plan.Status != model.PlanDraft {
			return util.ErrPlanNotDraft
		}
		assigned, err := repo.CountAssignments(id)
		if err != nil {
			return err
		}
		if assigned > 0 {
			return util.ErrPlanHasAssignees
		}
		return repo.Delete(id)
	})
}

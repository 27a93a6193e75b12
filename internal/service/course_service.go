package service

import (
	"context"
	"fmt"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseService struct {
	DB   *gorm.DB
	Repo *repository.CourseRepository
}

func NewCourseService(db *gorm.DB, repo *repository.CourseRepository) *CourseService {
	return &CourseService{DB: db, Repo: repo}
}

type CreateCourseRequest struct {
	Title         string               `json:"title" binding:"required,max=255"`
	Description   string               `json:"description"`
	Category      model.CourseCategory `json:"category" binding:"required,oneof=technical compliance leadership soft_skills onboarding other"`
	Level         model.CourseLevel    `json:"level" binding:"required,oneof=beginner intermediate advanced"`
	Tags          []string             `json:"tags"`
	Prerequisites []uint               `json:"prerequisites"`
	ContentURL    string               `json:"content_url" binding:"omitempty,http_url"`
	DurationHours float64              `json:"duration_hours" binding:"gte=0"`
	Status        model.CourseStatus   `json:"status" binding:"omitempty,oneof=active inactive"`
}

type UpdateCourseRequest struct {
	Title         *string               `json:"title" binding:"omitempty,min=1,max=255"`
	Description   *string               `json:"description"`
	Category      *model.CourseCategory `json:"category" binding:"omitempty,oneof=technical compliance leadership soft_skills onboarding other"`
	Level         *model.CourseLevel    `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Tags          []string              `json:"tags"`
	Prerequisites []uint                `json:"prerequisites"`
	ContentURL    *string               `json:"content_url" binding:"omitempty,http_url"`
	DurationHours *float64              `json:"duration_hours" binding:"omitempty,gte=0"`
	Status        *model.CourseStatus   `json:"status" binding:"omitempty,oneof=active inactive"`
}

// normalizeTags trims, drops empties and deduplicates while keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// checkCourseRefs returns a field error naming the ids that do not resolve.
func checkCourseRefs(repo *repository.CourseRepository, field string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := repo.ExistingIDs(ids)
	if err != nil {
		return err
	}
	have := make(map[uint]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return util.ValidationError(map[string]string{field: "unknown course ids: " + strings.Join(missing, ", ")})
}

func (s *CourseService) CreateCourse(ctx context.Context, actor model.Actor, req CreateCourseRequest) (*model.Course, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if req.ContentURL != "" && !util.IsHTTPURL(req.ContentURL) {
		return nil, util.ValidationError(map[string]string{"content_url": "must be a valid http(s) URL"})
	}

	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	prereqs := uniqueIDs(req.Prerequisites)
	if err := checkCourseRefs(repo, "prerequisites", prereqs); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.CourseActive
	}

	course := &model.Course{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Category:      req.Category,
		Level:         req.Level,
		Tags:          datatypes.JSONSlice[string](normalizeTags(req.Tags)),
		Prerequisites: datatypes.JSONSlice[uint](prereqs),
		ContentURL:    req.ContentURL,
		DurationHours: req.DurationHours,
		Status:        status,
		CreatedBy:     actor.UserID,
		EnrolledUsers: datatypes.JSONSlice[uint]{},
	}
	if course.Title == "" {
		return nil, util.ValidationError(map[string]string{"title": "is required"})
	}

	if err := repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, actor model.Actor, id uint, req UpdateCourseRequest) (*model.Course, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}

	var course *model.Course
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		c, err := repo.Lock(id)
		if err != nil {
			return notFound(err, util.ErrCourseNotFound)
		}

		fields := map[string]string{}
		if req.Title != nil {
			c.Title = strings.TrimSpace(*req.Title)
			if c.Title == "" {
				fields["title"] = "is required"
			}
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Category != nil {
			c.Category = *req.Category
		}
		if req.Level != nil {
			c.Level = *req.Level
		}
		if req.Tags != nil {
			c.Tags = datatypes.JSONSlice[string](normalizeTags(req.Tags))
		}
		if req.ContentURL != nil {
			if *req.ContentURL != "" && !util.IsHTTPURL(*req.ContentURL) {
				fields["content_url"] = "must be a valid http(s) URL"
			}
			c.ContentURL = *req.ContentURL
		}
		if req.DurationHours != nil {
			c.DurationHours = *req.DurationHours
		}
		if req.Status != nil {
			c.Status = *req.Status
		}
		if req.Prerequisites != nil {
			prereqs := uniqueIDs(req.Prerequisites)
			for _, p := range prereqs {
				if p == c.ID {
					fields["prerequisites"] = "a course cannot be its own prerequisite"
				}
			}
			c.Prerequisites = datatypes.JSONSlice[uint](prereqs)
		}
		if len(fields) > 0 {
			return util.ValidationError(fields)
		}
		if req.Prerequisites != nil {
			if err := checkCourseRefs(repo, "prerequisites", c.Prerequisites); err != nil {
				return err
			}
		}

		course = c
		return repo.Update(c)
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id uint) (*model.Course, error) {
	course, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, filter repository.CourseFilter, page, limit int) ([]model.Course, int64, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(filter, page, limit)
}

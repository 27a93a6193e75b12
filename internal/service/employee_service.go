package service

import (
	"context"
	"fmt"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/util"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserDirectory is the read side of the external auth service.
type UserDirectory interface {
	ListUsers(ctx context.Context, bearer string) ([]model.DirectoryUser, error)
}

type EmployeeService struct {
	DB        *gorm.DB
	Repo      *repository.EmployeeRepository
	Directory UserDirectory
	Storage   *StorageService
}

func NewEmployeeService(db *gorm.DB, repo *repository.EmployeeRepository, directory UserDirectory, storage *StorageService) *EmployeeService {
	return &EmployeeService{DB: db, Repo: repo, Directory: directory, Storage: storage}
}

type CreateEmployeeRequest struct {
	UserID       *uint      `json:"user_id"`
	EmployeeCode string     `json:"employee_code" binding:"required,max=32"`
	FirstName    string     `json:"first_name" binding:"required,max=100"`
	LastName     string     `json:"last_name" binding:"max=100"`
	Email        string     `json:"email" binding:"required,email"`
	Department   string     `json:"department" binding:"max=100"`
	Position     string     `json:"position" binding:"max=100"`
	ManagerID    *uint      `json:"manager_id"`
	HireDate     *time.Time `json:"hire_date"`
}

type UpdateEmployeeRequest struct {
	FirstName  *string               `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName   *string               `json:"last_name" binding:"omitempty,max=100"`
	Email      *string               `json:"email" binding:"omitempty,email"`
	Department *string               `json:"department" binding:"omitempty,max=100"`
	Position   *string               `json:"position" binding:"omitempty,max=100"`
	ManagerID  *uint                 `json:"manager_id"`
	HireDate   *time.Time            `json:"hire_date"`
	Status     *model.EmployeeStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

// EmployeeWithAccount pairs a local employee with its directory account.
type EmployeeWithAccount struct {
	model.Employee
	Account *model.DirectoryUser `json:"account"`
}

func (s *EmployeeService) canView(actor model.Actor, e *model.Employee) bool {
	return actor.IsHRAdmin() || actor.ActsForEmployee(e.ID) || actor.Role == model.RoleManager
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, actor model.Actor, req CreateEmployeeRequest) (*model.Employee, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	e := &model.Employee{
		UserID:       req.UserID,
		EmployeeCode: strings.TrimSpace(req.EmployeeCode),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Department:   req.Department,
		Position:     req.Position,
		ManagerID:    req.ManagerID,
		HireDate:     req.HireDate,
		Status:       model.EmployeeActive,
	}
	if err := s.Repo.WithTx(s.DB.WithContext(ctx)).Create(e); err != nil {
		if isDuplicate(err) {
			return nil, util.ErrDuplicateEmployee
		}
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, actor model.Actor, id uint) (*model.Employee, error) {
	e, err := s.Repo.WithTx(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrEmployeeNotFound)
	}
	if !s.canView(actor, e) {
		return nil, util.ErrPermissionDenied
	}
	return e, nil
}

func (s *EmployeeService) ListEmployees(ctx context.Context, filter repository.EmployeeFilter, page, limit int) ([]model.Employee, int64, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).List(filter, page, limit)
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, actor model.Actor, id uint, req UpdateEmployeeRequest) (*model.Employee, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	e, err := repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrEmployeeNotFound)
	}

	if req.FirstName != nil {
		e.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		e.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		e.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.Position != nil {
		e.Position = *req.Position
	}
	if req.ManagerID != nil {
		if *req.ManagerID == e.ID {
			return nil, util.ValidationError(map[string]string{"manager_id": "an employee cannot manage themselves"})
		}
		e.ManagerID = req.ManagerID
	}
	if req.HireDate != nil {
		e.HireDate = req.HireDate
	}
	if req.Status != nil {
		e.Status = *req.Status
	}

	if err := repo.Update(e); err != nil {
		if isDuplicate(err) {
			return nil, util.ErrDuplicateEmployee
		}
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, actor model.Actor, id uint) error {
	if !actor.IsHRAdmin() {
		return util.ErrPermissionDenied
	}
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	if _, err := repo.FindByID(id); err != nil {
		return notFound(err, util.ErrEmployeeNotFound)
	}
	return repo.Delete(id)
}

// UploadPhoto stores an image and points the employee record at it. The
// previous photo is left in storage.
func (s *EmployeeService) UploadPhoto(ctx context.Context, actor model.Actor, id uint, file *multipart.FileHeader) (*model.Employee, error) {
	if !actor.ActsForEmployee(id) {
		return nil, util.ErrPermissionDenied
	}
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	e, err := repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrEmployeeNotFound)
	}

	obj, err := s.Storage.StoreUpload(ctx, fmt.Sprintf("employees/%d", id), file, util.AllowedPhotoTypes, util.MaxPhotoSize)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdatePhoto(id, obj.URL); err != nil {
		_ = s.Storage.Delete(ctx, obj.Key)
		return nil, err
	}
	e.PhotoURL = obj.URL
	return e, nil
}

// ListWithDirectory joins every local employee to its directory account,
// first by user id and then by case-insensitive email.
func (s *EmployeeService) ListWithDirectory(ctx context.Context, actor model.Actor, bearer string) ([]EmployeeWithAccount, error) {
	if !actor.IsHRAdmin() {
		return nil, util.ErrPermissionDenied
	}
	users, err := s.Directory.ListUsers(ctx, bearer)
	if err != nil {
		return nil, err
	}
	employees, err := s.Repo.WithTx(s.DB.WithContext(ctx)).All()
	if err != nil {
		return nil, err
	}
	return JoinDirectory(employees, users), nil
}

func JoinDirectory(employees []model.Employee, users []model.DirectoryUser) []EmployeeWithAccount {
	byID := make(map[uint]*model.DirectoryUser, len(users))
	byEmail := make(map[string]*model.DirectoryUser, len(users))
	for i := range users {
		u := &users[i]
		byID[u.ID] = u
		if u.Email != "" {
			byEmail[strings.ToLower(u.Email)] = u
		}
	}

	out := make([]EmployeeWithAccount, 0, len(employees))
	for _, e := range employees {
		entry := EmployeeWithAccount{Employee: e}
		if e.UserID != nil {
			entry.Account = byID[*e.UserID]
		}
		if entry.Account == nil {
			entry.Account = byEmail[strings.ToLower(e.Email)]
		}
		out = append(out, entry)
	}
	return out
}

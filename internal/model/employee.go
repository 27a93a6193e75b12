package model

import "time"

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// swagger:model Employee
type Employee struct {
	BaseModel
	UserID       *uint          `gorm:"uniqueIndex" json:"user_id"`
	EmployeeCode string         `gorm:"size:32;not null;uniqueIndex" json:"employee_code"`
	FirstName    string         `gorm:"size:100;not null" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Department   string         `gorm:"size:100;index" json:"department"`
	Position     string         `gorm:"size:100" json:"position"`
	ManagerID    *uint          `gorm:"index" json:"manager_id"`
	HireDate     *time.Time     `json:"hire_date"`
	PhotoURL     string         `gorm:"size:500" json:"photo_url"`
	Status       EmployeeStatus `gorm:"size:16;not null;index;default:'active'" json:"status"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

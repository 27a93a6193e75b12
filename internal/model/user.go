package model

import "time"

type UserRole string

const (
	RoleEmployee UserRole = "employee"
	RoleManager  UserRole = "manager"
	RoleTrainer  UserRole = "trainer"
	RoleHRAdmin  UserRole = "hr_admin"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) IsHRAdmin() bool {
	return r == RoleHRAdmin || r == RoleAdmin
}

// Actor is the authenticated caller of a service operation. Identity and role
// are verified upstream by the auth service; services only check permissions.
type Actor struct {
	UserID     uint
	EmployeeID uint
	Role       UserRole
}

func (a Actor) IsHRAdmin() bool {
	return a.Role.IsHRAdmin()
}

// ActsForUser reports whether the actor may act on behalf of userID.
func (a Actor) ActsForUser(userID uint) bool {
	return a.IsHRAdmin() || (a.UserID != 0 && a.UserID == userID)
}

// ActsForEmployee reports whether the actor may act on behalf of employeeID.
func (a Actor) ActsForEmployee(employeeID uint) bool {
	return a.IsHRAdmin() || (a.EmployeeID != 0 && a.EmployeeID == employeeID)
}

// DirectoryUser is a user record served by the external auth service.
// swagger:model DirectoryUser
type DirectoryUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

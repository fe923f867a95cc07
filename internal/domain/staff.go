package domain

import "time"

// StaffRole enumerates console operator roles.
type StaffRole string

const (
	RoleSuperAdmin      StaffRole = "Super Admin"
	RoleDepartmentAdmin StaffRole = "Department Admin"
	RoleFieldStaff      StaffRole = "Field Staff"
	RoleViewer          StaffRole = "Viewer"
)

// Staff models a console operator or field worker.
type Staff struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Department   string
	Phone        string
	Active       bool
	LastLogin    time.Time
}

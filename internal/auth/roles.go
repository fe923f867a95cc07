package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/issue-service/internal/domain"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// Role visibility is authorization policy external to the engine; these
// capability checks gate the API boundary, not the entity model.

// CanTransition reports whether the role may change issue status.
func CanTransition(role domain.StaffRole) bool {
	switch role {
	case domain.RoleSuperAdmin, domain.RoleDepartmentAdmin, domain.RoleFieldStaff:
		return true
	default:
		return false
	}
}

// CanAssign reports whether the role may assign issues to departments/staff.
func CanAssign(role domain.StaffRole) bool {
	return role == domain.RoleSuperAdmin || role == domain.RoleDepartmentAdmin
}

// CanOverride reports whether the role may skip lifecycle states.
func CanOverride(role domain.StaffRole) bool {
	return role == domain.RoleSuperAdmin || role == domain.RoleDepartmentAdmin
}

// RequireRole ensures the authenticated staff member has one of the allowed
// roles. With no roles listed, any authenticated staff passes.
func RequireRole(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return apperrors.NewForbidden("staff role required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Staff.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

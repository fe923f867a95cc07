package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/repository"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// ReferenceHandler serves administrator-owned reference data.
type ReferenceHandler struct {
	departments repository.DepartmentRepository
	wards       repository.WardRepository
	policies    repository.CategoryPolicyRepository
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(departments repository.DepartmentRepository,
	wards repository.WardRepository,
	policies repository.CategoryPolicyRepository) *ReferenceHandler {
	return &ReferenceHandler{departments: departments, wards: wards, policies: policies}
}

// Departments GET /reference/departments.
func (h *ReferenceHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": departments})
}

// Wards GET /reference/wards.
func (h *ReferenceHandler) Wards(c *fiber.Ctx) error {
	wards, err := h.wards.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": wards})
}

// Categories GET /reference/categories lists categories with their SLA
// policies.
func (h *ReferenceHandler) Categories(c *fiber.Ctx) error {
	policies, err := h.policies.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	byCategory := make(map[domain.IssueCategory]domain.CategoryPolicy, len(policies))
	for _, policy := range policies {
		byCategory[policy.Category] = policy
	}

	type categoryEntry struct {
		Category    domain.IssueCategory `json:"category"`
		SLATarget   domain.SLATarget     `json:"slaTarget"`
		DefaultDept string               `json:"defaultDept,omitempty"`
	}
	items := make([]categoryEntry, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		entry := categoryEntry{Category: category}
		if policy, ok := byCategory[category]; ok {
			entry.SLATarget = policy.SLATarget
			entry.DefaultDept = policy.DefaultDept
		}
		items = append(items, entry)
	}
	return c.JSON(fiber.Map{"data": items})
}

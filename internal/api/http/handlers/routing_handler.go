package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/issue-service/internal/api/dto"
	"github.com/civic-kit/issue-service/internal/auth"
	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/repository"
	"github.com/civic-kit/issue-service/internal/service"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// RoutingHandler exposes routing rules, previews and the approval queue.
type RoutingHandler struct {
	service         *service.IssueService
	routingRules    repository.RoutingRuleRepository
	escalationRules repository.EscalationRuleRepository
}

// NewRoutingHandler constructs handler.
func NewRoutingHandler(issueService *service.IssueService,
	routingRules repository.RoutingRuleRepository,
	escalationRules repository.EscalationRuleRepository) *RoutingHandler {
	return &RoutingHandler{service: issueService, routingRules: routingRules, escalationRules: escalationRules}
}

// Preview GET /routing/preview?category=...&ward=... dry-runs the routing
// decision without creating anything.
func (h *RoutingHandler) Preview(c *fiber.Ctx) error {
	category := c.Query("category")
	ward := c.Query("ward")
	if category == "" || ward == "" {
		return apperrors.NewValidationError("category and ward required", nil)
	}

	decision, err := h.service.RoutingPreview(c.UserContext(), domain.IssueCategory(category), ward)
	if err != nil {
		return err
	}
	resp := dto.RoutingPreviewResponse{
		Department:    decision.Department,
		Priority:      decision.Priority,
		AutoAssign:    decision.AutoAssign,
		NeedsApproval: decision.NeedsApproval,
	}
	if decision.Rule != nil {
		resp.RuleID = decision.Rule.ID
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ListRules GET /routing/rules.
func (h *RoutingHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.routingRules.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": rules})
}

// ListEscalationRules GET /routing/escalations.
func (h *RoutingHandler) ListEscalationRules(c *fiber.Ctx) error {
	rules, err := h.escalationRules.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": rules})
}

// ApprovalQueue GET /routing/approvals lists issues waiting for manual
// assignment, oldest first.
func (h *RoutingHandler) ApprovalQueue(c *fiber.Ctx) error {
	pending, err := h.service.ApprovalQueue(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PendingAssignmentResponse, 0, len(pending))
	for _, p := range pending {
		items = append(items, dto.PendingAssignmentResponse{
			ID:          p.ReportID,
			Category:    p.Category,
			Ward:        p.Ward,
			Priority:    p.Priority,
			WaitMinutes: int(p.WaitTime.Minutes()),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /routing/approvals/:id accepts the suggested routing.
func (h *RoutingHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if !auth.CanAssign(principal.Role) {
		return apperrors.NewForbidden("role cannot approve assignments")
	}

	issue, err := h.service.Approve(c.UserContext(), c.Params("id"), actorFor(principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issue})
}

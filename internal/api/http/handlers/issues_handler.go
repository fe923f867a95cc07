package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/issue-service/internal/api/dto"
	"github.com/civic-kit/issue-service/internal/auth"
	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/events"
	"github.com/civic-kit/issue-service/internal/query"
	"github.com/civic-kit/issue-service/internal/service"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// IssuesHandler serves the console's issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// List GET /issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	filters, sort := parseIssueQuery(c)
	views, err := h.service.List(c.UserContext(), filters, sort)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": views, "total": len(views)})
}

// Get GET /issues/:id. The id may be the internal id or the report id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Create POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || req.Category == "" || req.Ward == "" {
		return apperrors.NewValidationError("title, category, ward required", nil)
	}

	outcome, err := h.service.CreateIssue(c.UserContext(), service.IntakeInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.IssueCategory(req.Category),
		Ward:        req.Ward,
		Zone:        req.Zone,
		Location:    req.Location,
		Reporter:    req.Reporter,
		Images:      req.Images,
		ReportID:    req.ReportID,
	})
	if err != nil {
		return err
	}

	response := fiber.Map{"data": outcome.Issue}
	if outcome.RoutingError != nil {
		// Creation succeeded; the routing failure rides along so the UI
		// can point operators at the approval queue.
		routingErr := apperrors.ToDomainError(outcome.RoutingError)
		response["routing"] = fiber.Map{
			"code":    routingErr.Code,
			"message": routingErr.Message,
			"details": routingErr.Details,
		}
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// Transition PATCH /issues/:id/status.
func (h *IssuesHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if !auth.CanTransition(principal.Role) {
		return apperrors.NewForbidden("role cannot change issue status")
	}

	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	if req.Override && !auth.CanOverride(principal.Role) {
		return apperrors.NewForbidden("role cannot override transitions")
	}
	if err := h.checkDepartmentScope(c, principal, c.Params("id")); err != nil {
		return err
	}

	issue, err := h.service.Transition(c.UserContext(), c.Params("id"),
		domain.IssueStatus(req.Status), actorFor(principal), req.Notes, req.Override)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issue})
}

// BulkTransition POST /issues/bulk/status.
func (h *IssuesHandler) BulkTransition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if !auth.CanTransition(principal.Role) {
		return apperrors.NewForbidden("role cannot change issue status")
	}

	var req dto.BulkTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.IDs) == 0 || req.Status == "" {
		return apperrors.NewValidationError("ids and status required", nil)
	}
	if req.Override && !auth.CanOverride(principal.Role) {
		return apperrors.NewForbidden("role cannot override transitions")
	}

	var results []service.BulkResult
	if principal.Role == domain.RoleSuperAdmin || principal.Staff.Department == "" {
		results = h.service.BulkTransition(c.UserContext(), req.IDs,
			domain.IssueStatus(req.Status), actorFor(principal), req.Notes, req.Override)
	} else {
		// Department-scoped staff: every id passes the scope gate on its own.
		results = make([]service.BulkResult, 0, len(req.IDs))
		for _, id := range req.IDs {
			if err := h.checkDepartmentScope(c, principal, id); err != nil {
				results = append(results, service.BulkResult{ID: id, Err: err})
				continue
			}
			issue, err := h.service.Transition(c.UserContext(), id,
				domain.IssueStatus(req.Status), actorFor(principal), req.Notes, req.Override)
			results = append(results, service.BulkResult{ID: id, Issue: issue, Err: err})
		}
	}

	succeeded := 0
	items := make([]dto.BulkResultResponse, 0, len(results))
	for _, result := range results {
		item := dto.BulkResultResponse{ID: result.ID, Issue: result.Issue}
		if result.Err != nil {
			domainErr := apperrors.ToDomainError(result.Err)
			item.Error = &dto.ErrorDetail{
				Code:    domainErr.Code,
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		} else {
			succeeded++
		}
		items = append(items, item)
	}
	status := fiber.StatusOK
	if succeeded < len(results) {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(fiber.Map{
		"data":      items,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// Assign POST /issues/:id/assign.
func (h *IssuesHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if !auth.CanAssign(principal.Role) {
		return apperrors.NewForbidden("role cannot assign issues")
	}

	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Department == "" {
		return apperrors.NewValidationError("department required", nil)
	}
	if principal.Role == domain.RoleDepartmentAdmin && principal.Staff.Department != "" &&
		req.Department != principal.Staff.Department {
		return apperrors.NewForbidden("department admins assign within their own department")
	}

	issue, err := h.service.Assign(c.UserContext(), c.Params("id"), req.Department, req.AssignedTo, actorFor(principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issue})
}

// Escalations GET /issues/:id/escalations.
func (h *IssuesHandler) Escalations(c *fiber.Ctx) error {
	rules, err := h.service.Escalations(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if rules == nil {
		rules = []domain.EscalationRule{}
	}
	return c.JSON(fiber.Map{"data": rules})
}

// checkDepartmentScope keeps Department Admins and Field Staff inside their
// own department. Staff with no department set (and Super Admins) pass.
func (h *IssuesHandler) checkDepartmentScope(c *fiber.Ctx, principal *auth.Principal, id string) error {
	if principal.Role == domain.RoleSuperAdmin || principal.Staff.Department == "" {
		return nil
	}
	view, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if view.AssignedDept != "" && view.AssignedDept != principal.Staff.Department {
		return apperrors.NewForbidden("issue belongs to another department")
	}
	return nil
}

func parseIssueQuery(c *fiber.Ctx) (query.Filters, query.Sort) {
	filters := query.Filters{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
	}
	sort := query.Sort{
		Key:   query.SortKey(c.Query("sortBy", string(query.SortByCreatedAt))),
		Order: query.SortOrder(c.Query("sortOrder", string(query.Descending))),
	}
	return filters, sort
}

func actorFor(principal *auth.Principal) events.Actor {
	return events.Actor{StaffID: principal.Staff.ID, Name: principal.Staff.Name}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/issue-service/internal/api/http/handlers"
	"github.com/civic-kit/issue-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	Routing        *handlers.RoutingHandler
	Reference      *handlers.ReferenceHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// Intake is open: citizen-facing channels post reports without staff
	// credentials.
	app.Post("/issues", cfg.Issues.Create)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())

	issues := protected.Group("/issues")
	issues.Get("", cfg.Issues.List)
	issues.Post("/bulk/status", cfg.Issues.BulkTransition)
	issues.Get("/:id", cfg.Issues.Get)
	issues.Patch("/:id/status", cfg.Issues.Transition)
	issues.Post("/:id/assign", cfg.Issues.Assign)
	issues.Get("/:id/escalations", cfg.Issues.Escalations)

	routing := protected.Group("/routing")
	routing.Get("/preview", cfg.Routing.Preview)
	routing.Get("/rules", cfg.Routing.ListRules)
	routing.Get("/escalations", cfg.Routing.ListEscalationRules)
	routing.Get("/approvals", cfg.Routing.ApprovalQueue)
	routing.Post("/approvals/:id", cfg.Routing.Approve)

	reference := protected.Group("/reference")
	reference.Get("/departments", cfg.Reference.Departments)
	reference.Get("/wards", cfg.Reference.Wards)
	reference.Get("/categories", cfg.Reference.Categories)

	protected.Get("/stats/dashboard", cfg.Stats.Dashboard)
}

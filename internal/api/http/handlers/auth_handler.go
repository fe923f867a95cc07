package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/issue-service/internal/api/dto"
	"github.com/civic-kit/issue-service/internal/service"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// AuthHandler serves staff login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, expiresAt, staff, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Staff: dto.StaffSummary{
			ID:         staff.ID,
			Name:       staff.Name,
			Email:      staff.Email,
			Role:       staff.Role,
			Department: staff.Department,
		},
	}})
}

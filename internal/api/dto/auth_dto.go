package dto

import (
	"time"

	"github.com/civic-kit/issue-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the staff profile.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Staff     StaffSummary `json:"staff"`
}

// StaffSummary is the public view of a staff record.
type StaffSummary struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       domain.StaffRole `json:"role"`
	Department string           `json:"department,omitempty"`
}

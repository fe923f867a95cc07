package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to UI layers. Routing and transition failures carry
// distinct codes so operators know whether to intervene manually or wait.
const (
	CodeNoRoutingRule     = "NO_ROUTING_RULE"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeTerminalState     = "TERMINAL_STATE"
	CodeInvalidSLAFormat  = "INVALID_SLA_FORMAT"
	CodeDuplicateReportID = "DUPLICATE_REPORT_ID"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewNoRoutingRule reports that no routing rule covers a category+ward pair.
// The issue stays unassigned pending manual assignment.
func NewNoRoutingRule(category, ward string) error {
	return NewDomainError(CodeNoRoutingRule, "no routing rule matches issue",
		http.StatusUnprocessableEntity,
		map[string]any{"category": category, "ward": ward})
}

// NewIllegalTransition rejects a non-adjacent status change without override.
func NewIllegalTransition(from, to string) error {
	return NewDomainError(CodeIllegalTransition, "illegal status transition",
		http.StatusConflict,
		map[string]any{"from": from, "to": to})
}

// NewTerminalState rejects any transition out of Closed.
func NewTerminalState(reportID string) error {
	return NewDomainError(CodeTerminalState, "issue is closed and cannot change status",
		http.StatusConflict,
		map[string]any{"report_id": reportID})
}

// NewInvalidSLAFormat flags an unparseable SLA target. Callers degrade the
// issue's SLA state to normal and log rather than failing the request.
func NewInvalidSLAFormat(raw string) error {
	return NewDomainError(CodeInvalidSLAFormat, "unparseable sla target",
		http.StatusUnprocessableEntity,
		map[string]any{"sla_target": raw})
}

// NewDuplicateReportID rejects creation when the citizen-facing id collides.
func NewDuplicateReportID(reportID string) error {
	return NewDomainError(CodeDuplicateReportID, "report id already exists",
		http.StatusConflict,
		map[string]any{"report_id": reportID})
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

package dto

import (
	"github.com/civic-kit/issue-service/internal/domain"
)

// RoutingPreviewResponse is the dry-run result of routing a category+ward pair.
type RoutingPreviewResponse struct {
	Department    string               `json:"dept"`
	Priority      domain.IssuePriority `json:"priority"`
	AutoAssign    bool                 `json:"autoAssign"`
	NeedsApproval bool                 `json:"needsApproval"`
	RuleID        string               `json:"ruleId,omitempty"`
}

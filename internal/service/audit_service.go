package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/events"
)

// AuditService writes every domain event to the structured log, giving
// operators a change trail for issues without a dedicated audit table.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventIssueCreated, a.handleIssueCreated)
	a.dispatcher.Subscribe(events.EventIssueStatusChanged, a.handleIssueStatusChanged)
	a.dispatcher.Subscribe(events.EventIssueAssigned, a.handleIssueAssigned)
	a.dispatcher.Subscribe(events.EventIssueEscalated, a.handleIssueEscalated)
}

func (a *AuditService) handleIssueCreated(ctx context.Context, event events.Event) error {
	fields := a.commonFields(event)
	if p, ok := event.Payload.(events.IssueCreatedPayload); ok {
		fields = append(fields,
			zap.String("category", string(p.Category)),
			zap.String("ward", p.Ward),
			zap.String("department", p.Department),
			zap.String("priority", string(p.Priority)),
			zap.Bool("needs_approval", p.NeedsApproval))
	}
	a.logger.Info("IssueCreated", fields...)
	return nil
}

func (a *AuditService) handleIssueStatusChanged(ctx context.Context, event events.Event) error {
	fields := a.commonFields(event)
	if p, ok := event.Payload.(events.IssueStatusChangedPayload); ok {
		fields = append(fields,
			zap.String("old_status", string(p.OldStatus)),
			zap.String("new_status", string(p.NewStatus)),
			zap.Bool("override", p.Override))
	}
	a.logger.Info("IssueStatusChanged", fields...)
	return nil
}

func (a *AuditService) handleIssueAssigned(ctx context.Context, event events.Event) error {
	fields := a.commonFields(event)
	if p, ok := event.Payload.(events.IssueAssignedPayload); ok {
		fields = append(fields,
			zap.String("department", p.Department),
			zap.String("assigned_to", p.AssignedTo))
	}
	a.logger.Info("IssueAssigned", fields...)
	return nil
}

func (a *AuditService) handleIssueEscalated(ctx context.Context, event events.Event) error {
	fields := a.commonFields(event)
	if p, ok := event.Payload.(events.IssueEscalatedPayload); ok {
		fields = append(fields,
			zap.Int("level", p.Level),
			zap.String("condition", p.Condition),
			zap.String("action", p.Action))
	}
	a.logger.Info("IssueEscalated", fields...)
	return nil
}

func (a *AuditService) commonFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("issue_id", event.IssueID),
		zap.String("report_id", event.ReportID),
		zap.String("actor", event.Actor.Name),
	}
}

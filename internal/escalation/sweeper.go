// Package escalation runs the periodic sweep that turns escalation decisions
// into outbound notifications. The decision logic itself lives in the routing
// package; the sweeper only schedules it and hands results to the publisher.
package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/events"
	"github.com/civic-kit/issue-service/internal/notify"
	"github.com/civic-kit/issue-service/internal/repository"
	"github.com/civic-kit/issue-service/internal/routing"
)

// Sweeper periodically evaluates open issues against the escalation rules.
type Sweeper struct {
	issues     repository.IssueRepository
	rules      repository.EscalationRuleRepository
	publisher  notify.Publisher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration
	now        func() time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// NewSweeper constructs the sweeper.
func NewSweeper(issues repository.IssueRepository, rules repository.EscalationRuleRepository,
	publisher notify.Publisher, dispatcher events.Dispatcher, logger *zap.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		issues:     issues,
		rules:      rules,
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Info("escalation sweeper started", zap.Duration("interval", s.interval))
}

// Stop terminates the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Sweep(context.Background())
		}
	}
}

// Sweep evaluates every open issue once and publishes all triggered rules.
// The triggered set is re-derived each call; downstream consumers dedupe.
func (s *Sweeper) Sweep(ctx context.Context) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		s.logger.Error("escalation sweep: load rules", zap.Error(err))
		return
	}
	issues, err := s.issues.ListOpen(ctx)
	if err != nil {
		s.logger.Error("escalation sweep: load issues", zap.Error(err))
		return
	}

	now := s.now()
	for i := range issues {
		issue := &issues[i]
		for _, rule := range routing.CheckEscalations(rules, issue, now) {
			s.dispatch(ctx, issue, rule, now)
		}
	}
}

func (s *Sweeper) dispatch(ctx context.Context, issue *domain.Issue, rule domain.EscalationRule, now time.Time) {
	msg := notify.EscalationMessage{
		ReportID:  issue.ReportID,
		Title:     issue.Title,
		Ward:      issue.Ward,
		Dept:      issue.AssignedDept,
		Priority:  string(issue.Priority),
		Level:     rule.Level,
		Condition: rule.Condition,
		Action:    rule.Action,
		Timestamp: now,
	}
	if err := s.publisher.PublishEscalation(ctx, msg); err != nil {
		s.logger.Error("escalation publish failed",
			zap.String("report_id", issue.ReportID),
			zap.Int("level", rule.Level),
			zap.Error(err))
		return
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventIssueEscalated,
			IssueID:   issue.ID,
			ReportID:  issue.ReportID,
			Actor:     events.SystemActor(),
			Timestamp: now,
			Payload: events.IssueEscalatedPayload{
				Level:     rule.Level,
				Condition: rule.Condition,
				Action:    rule.Action,
			},
		})
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/repository"
	"github.com/civic-kit/issue-service/internal/sla"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

const (
	statsCacheKey = "civic:dashboard:stats"
	statsCacheTTL = 30 * time.Second
)

// DashboardStats are the console's headline counters.
type DashboardStats struct {
	TotalReports   int `json:"totalReports"`
	NewToday       int `json:"newToday"`
	PendingIssues  int `json:"pendingIssues"`
	ResolvedIssues int `json:"resolvedIssues"`
	SLABreaches    int `json:"slaBreaches"`
	ResolutionRate int `json:"resolutionRate"`
}

// StatsService derives dashboard counters from the issue store, caching the
// result in Redis for a short window.
type StatsService struct {
	issues    repository.IssueRepository
	evaluator sla.Evaluator
	cache     *redis.Client
	logger    *zap.Logger
	now       Clock
}

// NewStatsService constructs the service. cache may be nil, which disables
// caching entirely.
func NewStatsService(issues repository.IssueRepository, evaluator sla.Evaluator, cache *redis.Client, logger *zap.Logger, now Clock) *StatsService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{issues: issues, evaluator: evaluator, cache: cache, logger: logger, now: now}
}

// Dashboard returns current counters, served from cache when fresh.
func (s *StatsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	s.toCache(ctx, stats)
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (DashboardStats, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return DashboardStats{}, apperrors.MapError(err)
	}

	now := s.now()
	// Midnight in the issue's wall-clock location, so "today" follows the
	// deployment calendar rather than the UTC day.
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	stats := DashboardStats{TotalReports: len(issues)}
	for i := range issues {
		issue := &issues[i]
		if !issue.CreatedAt.Before(today) {
			stats.NewToday++
		}
		if issue.Status.Open() {
			stats.PendingIssues++
		}
		if issue.Status == domain.StatusResolved {
			stats.ResolvedIssues++
		}
		result, evalErr := s.evaluator.Evaluate(issue, now)
		if evalErr != nil {
			s.logger.Warn("unparseable sla target in stats",
				zap.String("report_id", issue.ReportID), zap.Error(evalErr))
			continue
		}
		if result.Status == sla.StatusBreached {
			stats.SLABreaches++
		}
	}
	if stats.TotalReports > 0 {
		// Round half-up.
		stats.ResolutionRate = (stats.ResolvedIssues*200 + stats.TotalReports) / (2 * stats.TotalReports)
	}
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context) (DashboardStats, bool) {
	if s.cache == nil {
		return DashboardStats{}, false
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return DashboardStats{}, false
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return DashboardStats{}, false
	}
	return stats, true
}

func (s *StatsService) toCache(ctx context.Context, stats DashboardStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civic-kit/issue-service/internal/api/http"
	"github.com/civic-kit/issue-service/internal/api/http/handlers"
	"github.com/civic-kit/issue-service/internal/auth"
	"github.com/civic-kit/issue-service/internal/config"
	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/escalation"
	"github.com/civic-kit/issue-service/internal/events"
	"github.com/civic-kit/issue-service/internal/notify"
	"github.com/civic-kit/issue-service/internal/observability"
	"github.com/civic-kit/issue-service/internal/persistence"
	"github.com/civic-kit/issue-service/internal/repository"
	"github.com/civic-kit/issue-service/internal/seed"
	"github.com/civic-kit/issue-service/internal/service"
	"github.com/civic-kit/issue-service/internal/sla"
	"github.com/civic-kit/issue-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	repos := buildRepositories(ctx, pg, cfg, logger)

	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	publisher := buildPublisher(cfg.AMQP, logger)
	defer publisher.Close()

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()
	evaluator := sla.NewEvaluator(cfg.SLA.WarningHours)

	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:          repos.issues,
		DepartmentRepo:     repos.departments,
		StaffRepo:          repos.staff,
		RoutingRuleRepo:    repos.routingRules,
		EscalationRuleRepo: repos.escalationRules,
		PolicyRepo:         repos.policies,
		Evaluator:          evaluator,
		Dispatcher:         dispatcher,
		Logger:             logger,
		DefaultTarget:      domain.SLATarget{Amount: cfg.SLA.DefaultTargetHours, Unit: domain.SLAUnitHours},
	})
	statsService := service.NewStatsService(repos.issues, evaluator, redis.Client, logger, nil)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(repos.staff, tokens, nil)
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.staff)

	sweeper := escalation.NewSweeper(repos.issues, repos.escalationRules, publisher, dispatcher, logger, cfg.Escalation.SweepInterval())
	sweeper.Start()
	defer sweeper.Stop()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Routing:        handlers.NewRoutingHandler(issueService, repos.routingRules, repos.escalationRules),
		Reference:      handlers.NewReferenceHandler(repos.departments, repos.wards, repos.policies),
		Stats:          handlers.NewStatsHandler(statsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

type repositories struct {
	issues          repository.IssueRepository
	departments     repository.DepartmentRepository
	wards           repository.WardRepository
	routingRules    repository.RoutingRuleRepository
	escalationRules repository.EscalationRuleRepository
	policies        repository.CategoryPolicyRepository
	staff           repository.StaffRepository
}

// buildRepositories selects the storage backend. With a Postgres pool the pgx
// repositories serve everything; otherwise a seeded in-memory store does.
func buildRepositories(ctx context.Context, pg *persistence.Postgres, cfg *config.Config, logger *zap.Logger) repositories {
	if pool := pg.PoolHandle(); pool != nil {
		return repositories{
			issues:          repository.NewIssueRepository(pool),
			departments:     repository.NewDepartmentRepository(pool),
			wards:           repository.NewWardRepository(pool),
			routingRules:    repository.NewRoutingRuleRepository(pool),
			escalationRules: repository.NewEscalationRuleRepository(pool),
			policies:        repository.NewCategoryPolicyRepository(pool),
			staff:           repository.NewStaffRepository(pool),
		}
	}

	mem := store.NewMemory()
	demoIssues := 0
	if cfg.Seed.Demo {
		demoIssues = cfg.Seed.DemoIssues
	}
	if err := seed.LoadMemory(ctx, mem, demoIssues, time.Now().Truncate(time.Hour), logger); err != nil {
		logger.Fatal("failed to seed in-memory store", zap.Error(err))
	}
	return repositories{
		issues:          mem.Issues(),
		departments:     mem.Departments(),
		wards:           mem.Wards(),
		routingRules:    mem.RoutingRules(),
		escalationRules: mem.EscalationRules(),
		policies:        mem.Policies(),
		staff:           mem.Staff(),
	}
}

func buildPublisher(cfg config.AMQPConfig, logger *zap.Logger) notify.Publisher {
	if cfg.URL == "" {
		logger.Info("AMQP_URL not provided; escalation notifications logged only")
		return notify.NoopPublisher{Logger: logger}
	}
	publisher, err := notify.NewAMQPPublisher(cfg.URL, cfg.Exchange, logger)
	if err != nil {
		logger.Warn("amqp connect failed; escalation notifications logged only", zap.Error(err))
		return notify.NoopPublisher{Logger: logger}
	}
	return publisher
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"recyclehub/internal/cache"
	"recyclehub/internal/config"
	"recyclehub/internal/database"
	"recyclehub/internal/events"
	"recyclehub/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection wires the ledger services with their infrastructure
type ServiceCollection struct {
	// Core Services
	Ledger      PointLedger
	Submissions SubmissionService
	Approvals   ApprovalService
	Challenges  ChallengeService
	Redemptions RedemptionService
	Catalog     CatalogService

	// Repository Collection
	Repositories *repositories.Collection

	// Infrastructure Components
	Cache     cache.Cache
	EventBus  events.EventBus
	Audit     *events.AuditLog
	Logger    *zap.Logger
	Config    *config.Config
	DBManager *database.Manager

	clock     Clock
	startTime time.Time
}

// Option customises a ServiceCollection before its services are built
type Option func(*ServiceCollection)

// WithClock replaces the wall clock
func WithClock(clock Clock) Option {
	return func(sc *ServiceCollection) { sc.clock = clock }
}

// WithCache replaces the cache built from configuration
func WithCache(c cache.Cache) Option {
	return func(sc *ServiceCollection) { sc.Cache = c }
}

// WithEventBus replaces the default in-memory event bus
func WithEventBus(bus events.EventBus) Option {
	return func(sc *ServiceCollection) { sc.EventBus = bus }
}

// NewServiceCollection creates the service collection
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	collection := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
		clock:     SystemClock,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(collection)
	}

	// Initialize in dependency order
	if err := collection.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	if err := collection.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	collection.initializeServices()

	logger.Info("Service collection initialized successfully",
		zap.String("driver", string(dbManager.Dialect())),
		zap.Int("voucher_validity_days", cfg.Ledger.VoucherValidityDays),
	)
	return collection, nil
}

// ===============================
// INITIALIZATION METHODS
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	if sc.Cache == nil {
		c, err := cache.NewCache(cache.FromAppConfig(&sc.Config.Cache), sc.Logger)
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		sc.Cache = c
	}

	if sc.EventBus == nil {
		sc.EventBus = events.NewInMemoryEventBus(events.DefaultEventBusConfig(), sc.Logger)
	}

	sc.Audit = events.NewAuditLog(sc.Logger.Named("audit"))
	if err := sc.Audit.Subscribe(sc.EventBus); err != nil {
		return fmt.Errorf("failed to subscribe audit log: %w", err)
	}
	return nil
}

func (sc *ServiceCollection) initializeRepositories() error {
	repos, err := repositories.NewCollection(sc.DBManager, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository collection: %w", err)
	}
	sc.Repositories = repos
	return nil
}

func (sc *ServiceCollection) initializeServices() {
	repos := sc.Repositories

	sc.Catalog = NewCatalogService(
		repos.Challenge,
		repos.Reward,
		sc.Cache,
		sc.Config.Cache.CatalogTTL,
		sc.clock,
		sc.Logger.Named("catalog"),
	)

	sc.Ledger = NewPointLedger(
		sc.DBManager,
		repos.User,
		repos.History,
		sc.EventBus,
		sc.clock,
		sc.Logger.Named("ledger"),
	)

	sc.Submissions = NewSubmissionService(
		repos.History,
		sc.EventBus,
		sc.clock,
		sc.Logger.Named("submissions"),
	)

	sc.Challenges = NewChallengeService(
		sc.DBManager,
		repos.Challenge,
		repos.Progress,
		sc.Catalog,
		sc.Ledger,
		sc.EventBus,
		sc.clock,
		sc.Logger.Named("challenges"),
	)

	// Approval depends on the challenge tracker for its best-effort step
	sc.Approvals = NewApprovalService(
		sc.DBManager,
		repos.History,
		sc.Ledger,
		sc.Challenges,
		sc.EventBus,
		sc.clock,
		sc.Logger.Named("approvals"),
	)

	sc.Redemptions = NewRedemptionService(
		sc.DBManager,
		repos.Reward,
		repos.Redemption,
		sc.Ledger,
		sc.EventBus,
		sc.Config.Ledger.VoucherValidityDays,
		sc.clock,
		sc.Logger.Named("redemptions"),
	)
}

// ===============================
// LIFECYCLE
// ===============================

// ServiceHealth represents the health of the store and its dependencies
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Uptime       time.Duration            `json:"uptime"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Audit        *events.AuditStats       `json:"audit,omitempty"`
}

// ServiceStatus represents the status of one dependency
type ServiceStatus struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"` // healthy, degraded, unhealthy
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// Start starts the event bus workers
func (sc *ServiceCollection) Start(ctx context.Context) error {
	if err := sc.EventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	sc.Logger.Info("Services started")
	return nil
}

// HealthCheck reports the ledger store, cache and event bus
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       database.StatusHealthy,
		Timestamp:    time.Now(),
		Uptime:       time.Since(sc.startTime),
		Dependencies: make(map[string]ServiceStatus, 3),
		Audit:        sc.Audit.Stats(),
	}

	dbHealth := sc.DBManager.Health(ctx)
	db := ServiceStatus{Name: "database", Status: dbHealth.Status, ResponseTime: dbHealth.ResponseTime}
	if len(dbHealth.Errors) > 0 {
		db.Error = dbHealth.Errors[0]
	}
	health.Dependencies["database"] = db

	health.Dependencies["cache"] = check("cache", func() error { return sc.Cache.Health(ctx) })
	health.Dependencies["events"] = check("events", sc.EventBus.Health)

	for _, dep := range health.Dependencies {
		switch {
		case dep.Status == database.StatusUnhealthy && dep.Name == "database":
			health.Status = database.StatusUnhealthy
		case dep.Status != database.StatusHealthy && health.Status == database.StatusHealthy:
			health.Status = database.StatusDegraded
		}
	}
	return health
}

func check(name string, probe func() error) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: name, Status: database.StatusHealthy}
	if err := probe(); err != nil {
		status.Status = database.StatusUnhealthy
		status.Error = err.Error()
	}
	status.ResponseTime = time.Since(start)
	return status
}

// Shutdown stops the event bus and closes the cache. The database manager
// is owned and closed by the caller.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down services")

	var firstErr error
	if err := sc.EventBus.Stop(ctx); err != nil {
		sc.Logger.Warn("Event bus did not stop cleanly", zap.Error(err))
		firstErr = err
	}
	if err := sc.Cache.Close(); err != nil {
		sc.Logger.Warn("Cache did not close cleanly", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

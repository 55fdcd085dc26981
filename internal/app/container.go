// Package app wires the engine's dependencies into a single container used
// by the CLI and the worker.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codesidh/bpts/internal/prioritization/application"
	"github.com/codesidh/bpts/internal/prioritization/application/services"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/codesidh/bpts/internal/prioritization/domain/escalation"
	"github.com/codesidh/bpts/internal/prioritization/domain/workrequest"
	"github.com/codesidh/bpts/internal/prioritization/infrastructure/locking"
	"github.com/codesidh/bpts/internal/prioritization/infrastructure/notification"
	"github.com/codesidh/bpts/internal/prioritization/infrastructure/persistence"
	sharedApplication "github.com/codesidh/bpts/internal/shared/application"
	"github.com/codesidh/bpts/internal/shared/infrastructure/database"
	_ "github.com/codesidh/bpts/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/codesidh/bpts/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/codesidh/bpts/internal/shared/infrastructure/migrations"
	appConfig "github.com/codesidh/bpts/pkg/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Options tweak container construction per entry point.
type Options struct {
	// Local forces single-process mode: SQLite unless DATABASE_URL points
	// elsewhere, in-process locks, no broker.
	Local bool

	// SkipBroker leaves the event publisher as a noop even when a broker
	// URL is configured. Used by short-lived CLI commands.
	SkipBroker bool
}

// Container holds all engine dependencies.
type Container struct {
	Config *appConfig.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil in local mode
	RedisClient *redis.Client

	// Repositories
	ConfigRepo      config.Repository
	WorkRequestRepo workrequest.Repository
	ScoreAuditRepo  workrequest.ScoreAuditRepository
	EscalationRepo  escalation.Repository

	// Collaborators
	EventPublisher eventbus.Publisher
	ScopeLocker    services.ScopeLocker
	Notifier       services.Notifier
	Utilization    services.UtilizationProvider
	UnitOfWork     sharedApplication.UnitOfWork

	// Facade
	Prioritization *application.Service
}

// NewContainer builds the full dependency graph.
func NewContainer(ctx context.Context, cfg *appConfig.Config, logger *slog.Logger, opts Options) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(ctx, opts); err != nil {
		return nil, err
	}
	c.initRepositories()
	if err := c.initCollaborators(ctx, opts); err != nil {
		c.Close()
		return nil, err
	}
	c.initService()
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context, opts Options) error {
	dbCfg := database.Config{
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	}
	if opts.Local && dbCfg.URL == "" {
		dbCfg = database.DefaultLocalConfig()
		if c.Config.SQLitePath != "" {
			dbCfg.SQLitePath = c.Config.SQLitePath
		}
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Logger.Info("database connected", "driver", c.DBDriver.String())
	return nil
}

func (c *Container) initRepositories() {
	c.ConfigRepo = persistence.NewConfigRepository(c.DBConn)
	c.WorkRequestRepo = persistence.NewWorkRequestRepository(c.DBConn)
	c.ScoreAuditRepo = persistence.NewScoreAuditRepository(c.DBConn)
	c.EscalationRepo = persistence.NewEscalationRepository(c.DBConn)
}

func (c *Container) initCollaborators(ctx context.Context, opts Options) error {
	// Scope lock: distributed via Redis when available, in-process
	// otherwise. A failed Redis connection in local mode is not fatal.
	c.ScopeLocker = services.NewInProcessScopeLocker()
	if !opts.Local && c.Config.RedisURL != "" {
		redisOpts, err := redis.ParseURL(c.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			c.Logger.Warn("redis unavailable, falling back to in-process locks", "error", err)
			_ = client.Close()
		} else {
			c.RedisClient = client
			c.ScopeLocker = locking.NewRedisScopeLocker(client, c.Config.RecalcLockTTL, c.Logger)
		}
	}

	// Event publisher: RabbitMQ when configured, noop otherwise.
	c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
	if !opts.Local && !opts.SkipBroker && c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err != nil {
			c.Logger.Warn("rabbitmq unavailable, events will be dropped", "error", err)
		} else {
			c.EventPublisher = publisher
		}
	}

	// Notifier: webhook when configured.
	c.Notifier = services.NoopNotifier{}
	if c.Config.NotifyWebhookURL != "" {
		c.Notifier = notification.NewWebhookNotifier(c.Config.NotifyWebhookURL, c.Config.NotifyTimeout, c.Logger)
	}

	// Department utilization comes from the capacity tracking subsystem.
	// Until that integration lands the provider reports no data, which
	// scores every department at the neutral multiplier.
	c.Utilization = services.UtilizationFunc(func(_ context.Context, _ uuid.UUID) (float64, error) {
		return 0, fmt.Errorf("utilization data unavailable")
	})
	return nil
}

func (c *Container) initService() {
	c.Prioritization = application.NewService(
		c.WorkRequestRepo,
		c.ScoreAuditRepo,
		c.ConfigRepo,
		c.EscalationRepo,
		c.Utilization,
		c.ScopeLocker,
		c.Notifier,
		c.EventPublisher,
		c.UnitOfWork,
		application.Config{
			RecalcInterval:     c.Config.RecalcInterval,
			AutoAdjustInterval: c.Config.AutoAdjustInterval,
			AutoAdjustDeadline: c.Config.AutoAdjustDeadline,
			EscalationInterval: c.Config.EscalationInterval,
			EscalationDeadline: c.Config.EscalationDeadline,
			DefaultSLAHours:    c.Config.DefaultSLAHours,
		},
		c.Logger,
	)
}

// Close releases all held resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("failed to close redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("failed to close database connection", "error", err)
		}
	}
}

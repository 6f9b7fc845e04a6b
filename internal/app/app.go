// Package app wires the console's repositories, services and HTTP surfaces
// from the dependencies main() provides.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/allegro/bigcache/v3"

	"prism-console/internal/config"
	"prism-console/internal/db/repository"
	"prism-console/internal/middleware"
	"prism-console/internal/service/admin"
	"prism-console/internal/service/apikey"
	"prism-console/internal/service/cost"
	"prism-console/internal/service/governance"
	"prism-console/internal/service/metadata"
	"prism-console/internal/warehouse"
)

// Deps holds the external dependencies that main() must provide: config,
// the metastore pools and the warehouse client.
type Deps struct {
	Cfg       *config.Config
	WriteDB   *sql.DB
	ReadDB    *sql.DB
	Warehouse *warehouse.Client
	Logger    *slog.Logger
}

// Services groups the services the API handler, UI and CLI need.
type Services struct {
	Admin    *admin.Service
	Metadata *metadata.Service
	Cost     *cost.Service
	APIKey   *apikey.Service
	Audit    *governance.AuditQuery
}

// App holds the fully-wired application.
type App struct {
	Services     Services
	Names        warehouse.Names
	Environments *repository.EnvironmentRepo
	Auth         *middleware.Authenticator

	cfg       *config.Config
	warehouse *warehouse.Client
	cache     *bigcache.BigCache
	logger    *slog.Logger
}

// New wires all repositories and services from the provided deps. It
// registers environments from the configured file and, when enabled,
// creates the audit log objects.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Warehouse == nil {
		return nil, fmt.Errorf("warehouse client is required")
	}
	dialect := deps.Warehouse.Dialect()

	// === Repositories ===
	envRepo := repository.NewEnvironmentRepo(deps.WriteDB)
	apiKeyRepo := repository.NewAPIKeyRepo(deps.WriteDB)

	if cfg.EnvironmentsFile != "" {
		if err := seedEnvironments(ctx, envRepo, cfg.EnvironmentsFile, logger); err != nil {
			return nil, err
		}
	}

	// === Audit log objects ===
	names, err := warehouse.NewNames(dialect, cfg.Warehouse.AuditDatabase, cfg.Warehouse.AuditSchema)
	if err != nil {
		return nil, fmt.Errorf("audit log location: %w", err)
	}
	if cfg.Warehouse.AutoBootstrap {
		if err := BootstrapAuditObjects(ctx, deps.Warehouse, names, logger); err != nil {
			return nil, err
		}
	}

	// === Logging core ===
	identity := governance.NewIdentityResolver(dialect, logger)
	sequences := governance.NewSequenceAllocator(dialect, logger)
	auditLogger := governance.NewAuditLogger(identity, sequences, names, logger)
	hierarchyLogger := governance.NewRoleHierarchyLogger(sequences, names, logger)

	// === Services ===
	cache, err := metadata.NewCache(ctx, cfg.MetadataCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("metadata cache: %w", err)
	}
	apiKeySvc := apikey.NewService(apiKeyRepo, logger)

	validator, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("jwt validator: %w", err)
	}

	metadataSvc := metadata.NewService(dialect, cache, logger)
	adminSvc := admin.NewService(dialect.Statements(), auditLogger, hierarchyLogger, envRepo, logger)
	adminSvc.SetListCache(metadataSvc)

	return &App{
		Services: Services{
			Admin:    adminSvc,
			Metadata: metadataSvc,
			Cost:     cost.NewService(deps.Warehouse, dialect, logger),
			APIKey:   apiKeySvc,
			Audit:    governance.NewAuditQuery(names),
		},
		Names:        names,
		Environments: envRepo,
		Auth:         middleware.NewAuthenticator(validator, apiKeySvc, cfg.Auth, logger),
		cfg:          cfg,
		warehouse:    deps.Warehouse,
		cache:        cache,
		logger:       logger,
	}, nil
}

// Close releases the resources New created. The caller still owns the
// deps it passed in.
func (a *App) Close() error {
	return a.cache.Close()
}

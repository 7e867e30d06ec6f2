package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/artifacts"
	"tailor-portal/internal/backend"
	"tailor-portal/internal/delivery"
	"tailor-portal/internal/events"
	"tailor-portal/internal/shared/auth"
	"tailor-portal/internal/shared/config"
	"tailor-portal/internal/shared/server"
	"tailor-portal/internal/shared/storage/db"
	"tailor-portal/internal/shared/storage/object"
	localstore "tailor-portal/internal/shared/storage/object/local"
	memorystore "tailor-portal/internal/shared/storage/object/memory"
	s3store "tailor-portal/internal/shared/storage/object/s3"
	"tailor-portal/internal/tailor"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ArtifactStore
	Events          events.Publisher
	Backend         *backend.Client
	ArtifactsRepo   artifacts.Repo
	TailorService   *tailor.Service
	DeliveryService *delivery.Service
	DeliveryHandler *delivery.Handler

	closers []func()
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ArtifactStoreType) == "" {
		cfg.ArtifactStoreType = "local"
	}

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		app.closers = append(app.closers, func() { _ = sqlDB.Close() })
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	publisher, err := buildEvents(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Events = publisher
	if n, ok := publisher.(*events.NATS); ok {
		app.closers = append(app.closers, n.Close)
	}

	backendClient, err := backend.New(cfg.BackendBaseURL, nil)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Backend = backendClient

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Verifier:        auth.NewVerifier(cfg.JWTSecret),
		DeliveryHandler: app.DeliveryHandler,
		Ready:           app.ready,
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) ready(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("bootstrap: DATABASE_URL empty; artifact ledger kept in memory")
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; artifact ledger kept in memory: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ArtifactStore, error) {
	switch cfg.ArtifactStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("ARTIFACT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "memory":
		return memorystore.New(), nil
	default:
		return localstore.New(cfg.ArtifactDir), nil
	}
}

func buildEvents(cfg config.Config) (events.Publisher, error) {
	if strings.TrimSpace(cfg.NATSURL) == "" {
		return events.Noop{}, nil
	}
	pub, err := events.Connect(cfg.NATSURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: nats unavailable; artifact events disabled: %v", err)
			return events.Noop{}, nil
		}
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return pub, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ArtifactsRepo = &artifacts.PGRepo{DB: app.DB}
	} else {
		app.ArtifactsRepo = artifacts.NewMemoryRepo()
	}

	app.TailorService = &tailor.Service{
		Tokens:  auth.RequestTokens{},
		Backend: app.Backend,
		Timeout: app.Config.BackendTimeout,
		Dedupe:  app.Config.TailorDedupe,
	}
	app.DeliveryService = &delivery.Service{
		Mode:       app.Config.DeliveryMode,
		Store:      app.Store,
		StoreName:  app.Config.ArtifactStoreType,
		Fetcher:    &timedFetcher{client: app.Backend, timeout: app.Config.BackendTimeout},
		Repo:       app.ArtifactsRepo,
		Events:     app.Events,
		UniqueKeys: app.Config.ArtifactUniqueKeys,
	}
	app.DeliveryHandler = delivery.NewHandler(app.TailorService, app.DeliveryService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/ai"
	"pdf-assistant-api/internal/ai/gemini"
	"pdf-assistant-api/internal/ai/lambda"
	"pdf-assistant-api/internal/cache"
	"pdf-assistant-api/internal/chats"
	"pdf-assistant-api/internal/documents"
	"pdf-assistant-api/internal/queue"
	"pdf-assistant-api/internal/services/health"
	"pdf-assistant-api/internal/shared/config"
	"pdf-assistant-api/internal/shared/server"
	"pdf-assistant-api/internal/shared/storage/db"
	"pdf-assistant-api/internal/shared/storage/object"
	localstore "pdf-assistant-api/internal/shared/storage/object/local"
	s3store "pdf-assistant-api/internal/shared/storage/object/s3"
	"pdf-assistant-api/internal/shared/telemetry"
)

// App holds the wired dependencies and the router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	LocalStore       *localstore.Store
	Cache            cache.Cache
	AI               ai.Gateway
	AIGuard          *ai.Guard
	Events           queue.Client
	DocumentsRepo    documents.Repo
	ChatsRepo        chats.Repo
	DocumentsService *documents.Service
	ChatsService     *chats.Service
	DocumentsHandler *documents.Handler
	ChatsHandler     *chats.Handler
	Health           *health.Service
}

// Build wires every backend selected by cfg and registers routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		loaded, err := loadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		awsCfg = &loaded
	}

	if err := buildStore(app, awsCfg); err != nil {
		return nil, err
	}
	if err := buildRepos(ctx, app, awsCfg); err != nil {
		return nil, err
	}
	if err := buildCache(ctx, app); err != nil {
		return nil, err
	}
	if err := buildAI(ctx, app); err != nil {
		return nil, err
	}
	if err := buildEvents(app, awsCfg); err != nil {
		return nil, err
	}

	app.DocumentsService = &documents.Service{
		Store:  app.Store,
		Repo:   app.DocumentsRepo,
		AI:     app.AI,
		Cache:  app.Cache,
		Events: app.Events,
	}
	app.ChatsService = &chats.Service{
		Repo:  app.ChatsRepo,
		Docs:  app.DocumentsService,
		AI:    app.AI,
		Clock: chats.NewClock(nil),
	}
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.ChatsHandler = chats.NewHandler(app.ChatsService)
	app.Health = buildHealth(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Documents:  app.DocumentsHandler,
		Chats:      app.ChatsHandler,
		Health:     app.Health,
		LocalStore: app.LocalStore,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"object_store":   cfg.ObjectStoreType,
		"document_store": cfg.DocumentStore,
		"cache":          cfg.CacheBackend,
		"ai_provider":    cfg.AIProvider,
		"events":         app.Events != nil,
	})
	return app, nil
}

func needsAWS(cfg config.Config) bool {
	return cfg.ObjectStoreType == "s3" ||
		cfg.DocumentStore == "dynamodb" ||
		strings.TrimSpace(cfg.EventsQueueURL) != ""
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if strings.TrimSpace(region) != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

func buildStore(app *App, awsCfg *aws.Config) error {
	cfg := app.Config
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return fmt.Errorf("OBJECT_STORE=s3 requires AWS_BUCKET_NAME")
		}
		app.Store = s3store.NewFromConfig(*awsCfg, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		local := localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL)
		app.Store = local
		app.LocalStore = local
	}
	return nil
}

func buildRepos(ctx context.Context, app *App, awsCfg *aws.Config) error {
	cfg := app.Config
	switch cfg.DocumentStore {
	case "dynamodb":
		client := dynamodb.NewFromConfig(*awsCfg, func(o *dynamodb.Options) {
			if endpoint := strings.TrimSpace(cfg.DynamoEndpoint); endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
		app.DocumentsRepo = &documents.DynamoRepo{Client: client, Table: cfg.DynamoDocTable}
		app.ChatsRepo = &chats.DynamoRepo{Client: client, Table: cfg.DynamoChatTable}
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return err
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		app.DB = sqlDB
		app.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
		app.ChatsRepo = &chats.PGRepo{DB: sqlDB}
	default:
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.ChatsRepo = chats.NewMemoryRepo()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DOCUMENT_STORE=postgres requires DATABASE_URL")
	}
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	}
	return db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
}

func buildCache(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.CacheBackend {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
				app.Cache = cache.NewMemory()
				return nil
			}
			return err
		}
		app.Cache = cache.NewRedis(client, cfg.RedisPrefix)
	case "none":
		app.Cache = cache.Nop{}
	default:
		app.Cache = cache.NewMemory()
	}
	return nil
}

func buildAI(ctx context.Context, app *App) error {
	cfg := app.Config
	app.AI = ai.Unconfigured{}
	if cfg.AIProvider == "none" {
		return nil
	}
	app.AIGuard = ai.NewGuard("ai-"+cfg.AIProvider, cfg.AIRatePerSec)

	switch cfg.AIProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			telemetry.Warn("bootstrap.ai_unconfigured", map[string]any{"provider": "gemini", "missing": "GEMINI_API_KEY"})
			return nil
		}
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, app.Store, app.AIGuard)
		if err != nil {
			return err
		}
		app.AI = client
	default:
		if cfg.LambdaAPIURL == "" {
			telemetry.Warn("bootstrap.ai_unconfigured", map[string]any{"provider": "lambda", "missing": "LAMBDA_API_URL"})
			return nil
		}
		client, err := lambda.New(cfg.LambdaAPIURL, cfg.AITimeout, app.AIGuard)
		if err != nil {
			return err
		}
		app.AI = client
	}
	return nil
}

func buildEvents(app *App, awsCfg *aws.Config) error {
	url := strings.TrimSpace(app.Config.EventsQueueURL)
	if url == "" {
		return nil
	}
	client, err := queue.NewSQSClient(*awsCfg, url)
	if err != nil {
		return err
	}
	app.Events = client
	return nil
}

func buildHealth(app *App) *health.Service {
	cfg := app.Config
	info := map[string]string{
		"storage":       cfg.ObjectStoreType,
		"documentStore": cfg.DocumentStore,
		"cache":         cfg.CacheBackend,
		"aiProvider":    cfg.AIProvider,
	}
	var probes []health.Probe
	if app.DB != nil {
		sqlDB := app.DB
		probes = append(probes, health.Probe{Name: "database", Check: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		}})
	}
	if app.AIGuard != nil {
		guard := app.AIGuard
		probes = append(probes, health.Probe{Name: "ai", Check: func(context.Context) error {
			if state := guard.State(); state == "open" {
				return fmt.Errorf("circuit %s", state)
			}
			return nil
		}})
	}
	return health.NewService(info, probes...)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

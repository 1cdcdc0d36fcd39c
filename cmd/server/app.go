package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hireflow/interview/internal/config"
	"hireflow/interview/internal/deadline"
	"hireflow/interview/internal/handlers"
	"hireflow/interview/internal/interview"
	"hireflow/interview/internal/jobs"
	"hireflow/interview/internal/llm"
	_ "hireflow/interview/internal/llm/gemini"
	"hireflow/interview/internal/locks"
	"hireflow/interview/internal/metrics"
	"hireflow/interview/internal/prompts"
	"hireflow/interview/internal/questions"
	"hireflow/interview/internal/repositories"
	"hireflow/interview/internal/routers"
	"hireflow/interview/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	serviceName  = "interview"
	redisTimeout = 3 * time.Second
)

// app holds the wired service for the serve command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	redis    *redis.Client
	router   *chi.Mux
	exporter *jobs.TranscriptExporter
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := utils.NewLogger(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.DatabaseDriver == config.DriverSQLite {
		// sqlite allows one writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// newLocker picks Redis when configured so replicas share per-session locks.
func newLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (locks.Locker, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process session locks")
		return locks.NewKeyedMutex(), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("using redis session locks", zap.String("addr", cfg.RedisAddr))
	return locks.NewRedisLocker(rdb, cfg.LockTTL, logger), rdb, nil
}

func exporterConfigFrom(cfg *config.Config) *jobs.ExporterConfig {
	return &jobs.ExporterConfig{
		Schedule:  cfg.TranscriptExportSchedule,
		ExportDir: cfg.TranscriptExportDir,
		Enabled:   cfg.TranscriptExportEnabled,
	}
}

// requestTimeout covers a full lock wait plus one generation.
func requestTimeout(cfg *config.Config) time.Duration {
	return cfg.LockWaitTimeout + cfg.GenerationTimeout + 10*time.Second
}

func newRouter(cfg *config.Config, healthHandler *handlers.HealthHandler, interviewHandler *handlers.InterviewHandler, jobHandler *handlers.JobHandler) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware(serviceName),
		middleware.Timeout(requestTimeout(cfg)),
	)

	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, cfg.JWTSecret, interviewHandler, jobHandler)
	return router
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		closeDatabase(db)
		return nil, err
	}

	locker, rdb, err := newLocker(ctx, cfg, logger)
	if err != nil {
		closeDatabase(db)
		return nil, err
	}

	sessions := repositories.NewSessionRepository(db)
	applications := repositories.NewApplicationRepository(db)
	policy := deadline.NewPolicy(cfg.InterviewDuration)

	engine := interview.NewEngine(
		sessions,
		questions.NewLLMGenerator(provider, promptManager, logger),
		locker,
		policy,
		logger,
		interview.Options{
			GenerationTimeout: cfg.GenerationTimeout,
			LockWait:          cfg.LockWaitTimeout,
		},
	)

	router := newRouter(cfg,
		handlers.NewHealthHandler(provider, promptManager, cfg, sqlDB),
		handlers.NewInterviewHandler(engine, applications, logger),
		handlers.NewJobHandler(applications, questions.NewRephraser(provider, promptManager, logger), logger),
	)

	logger.Info("interview service configured",
		zap.String("provider", provider.GetProviderName()),
		zap.String("database", cfg.DatabaseDriver),
		zap.Duration("interview_duration", policy.Duration),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		redis:    rdb,
		router:   router,
		exporter: jobs.NewTranscriptExporter(sessions, policy, exporterConfigFrom(cfg), logger),
	}, nil
}

func (a *app) server() *http.Server {
	return &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout(a.cfg) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	closeDatabase(a.db)
}

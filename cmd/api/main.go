package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/youpolonia/cms-sub038/internal/config"
	"github.com/youpolonia/cms-sub038/internal/handler"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/internal/migration"
	"github.com/youpolonia/cms-sub038/internal/repository"
	"github.com/youpolonia/cms-sub038/internal/routes"
	"github.com/youpolonia/cms-sub038/internal/service"
	"github.com/youpolonia/cms-sub038/internal/task"
	pkgcache "github.com/youpolonia/cms-sub038/pkg/cache"
	"github.com/youpolonia/cms-sub038/pkg/jwt"
	pkglogger "github.com/youpolonia/cms-sub038/pkg/logger"
	pkgredis "github.com/youpolonia/cms-sub038/pkg/redis"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	zl := pkglogger.GetLogger()
	zl.Info().Str("env", env).Strs("dotenv_files", dotenvFiles).Msg("starting scheduler api")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Collaborators
	var statusCache service.StatusCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(
			cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			zl.Warn().Err(err).Msg("redis unavailable, running without status cache")
		} else {
			statusCache = service.NewRedisStatusCache(pkgcache.NewService(redisClient))
			zl.Info().Msg("connected to redis")
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Duration)
	perms := middleware.NewLevelPermissionChecker()
	auditLogger := middleware.NewAuditLogger(db)

	// Repositories
	versionRepo := repository.NewVersionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	resolver := service.NewConflictResolver(cfg.Scheduler.MinSeparation)
	stateMachine := service.NewScheduleStateMachine()
	notificationService := service.NewNotificationService(notificationRepo)

	schedulerService := service.NewSchedulerService(
		scheduleRepo, versionRepo, resolver, stateMachine,
		perms, notificationService, auditLogger, statusCache)
	versionService := service.NewVersionService(versionRepo, scheduleRepo)
	batchService := service.NewBatchService(
		batchRepo, scheduleRepo, versionRepo, schedulerService, resolver,
		perms, statusCache, cfg.Scheduler.BatchMaxItems)
	dueService := service.NewDueEventService(
		scheduleRepo, versionRepo, stateMachine, auditLogger, statusCache)

	// Background sweep
	broker := task.NewBroker(dueService)
	if err := broker.RegisterSweep(cfg.Scheduler.SweepSpec); err != nil {
		log.Fatalf("Failed to register sweep job: %v", err)
	}
	broker.Start()

	// HTTP
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Tenant-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router,
		handler.NewScheduleHandler(schedulerService),
		handler.NewVersionHandler(versionService),
		handler.NewBatchHandler(batchService),
		handler.NewSweepHandler(dueService),
		handler.NewNotificationHandler(notificationService),
		handler.NewAuditHandler(auditLogger),
		jwtManager,
		perms,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info().Int("port", cfg.Server.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info().Msg("shutting down")

	broker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error().Err(err).Msg("forced shutdown")
	}
	zl.Info().Msg("stopped")
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	middleware.SetDBConnectionsActive(float64(sqlDB.Stats().OpenConnections))

	return db, nil
}

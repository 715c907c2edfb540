package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/youpolonia/cms-sub038/internal/config"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/internal/repository"
	"github.com/youpolonia/cms-sub038/internal/service"
	"github.com/youpolonia/cms-sub038/internal/task"
	pkgcache "github.com/youpolonia/cms-sub038/pkg/cache"
	pkglogger "github.com/youpolonia/cms-sub038/pkg/logger"
	pkgredis "github.com/youpolonia/cms-sub038/pkg/redis"
)

// Standalone sweep worker. Runs the due-event sweep without the HTTP API,
// for deployments that separate serving from publishing.
func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	zl := pkglogger.GetLogger()

	cfg, err := config.Load(fmt.Sprintf("configs/config.%s.yaml", env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var statusCache service.StatusCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(
			cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			zl.Warn().Err(err).Msg("redis unavailable, running without status cache")
		} else {
			statusCache = service.NewRedisStatusCache(pkgcache.NewService(redisClient))
		}
	}

	dueService := service.NewDueEventService(
		repository.NewScheduleRepository(db),
		repository.NewVersionRepository(db),
		service.NewScheduleStateMachine(),
		middleware.NewAuditLogger(db),
		statusCache,
	)

	broker := task.NewBroker(dueService)
	if err := broker.RegisterSweep(cfg.Scheduler.SweepSpec); err != nil {
		log.Fatalf("Failed to register sweep job: %v", err)
	}
	broker.Start()
	zl.Info().Str("schedule", cfg.Scheduler.SweepSpec).Msg("sweeper running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	broker.Stop()
	zl.Info().Msg("sweeper stopped")
}

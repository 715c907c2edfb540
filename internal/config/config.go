package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from a yaml file with
// environment variable overrides.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

// DatabaseConfig MySQL settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN builds the MySQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig token settings
type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Duration time.Duration `yaml:"duration"`
}

// SchedulerConfig scheduling engine settings
type SchedulerConfig struct {
	// MinSeparation is the minimum window between publish times of the
	// same content item before they are considered conflicting.
	MinSeparation time.Duration `yaml:"min_separation"`
	// BatchMaxItems caps items per batch schedule call.
	BatchMaxItems int `yaml:"batch_max_items"`
	// SweepSpec is the cron spec (with seconds) for the due-event sweep.
	SweepSpec string `yaml:"sweep_spec"`
}

// Load reads configuration from a yaml file and applies env overrides
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Scheduler.MinSeparation <= 0 {
		cfg.Scheduler.MinSeparation = 30 * time.Minute
	}
	if cfg.Scheduler.BatchMaxItems <= 0 {
		cfg.Scheduler.BatchMaxItems = 50
	}
	if cfg.Scheduler.SweepSpec == "" {
		cfg.Scheduler.SweepSpec = "0 * * * * *"
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Env: "local"},
		Database: DatabaseConfig{
			Host: "127.0.0.1",
			Port: 3306,
			User: "scheduler",
			Name: "scheduler",
		},
		Redis: RedisConfig{
			Host:     "127.0.0.1",
			Port:     6379,
			PoolSize: 10,
		},
		JWT: JWTConfig{Duration: 24 * time.Hour},
		Scheduler: SchedulerConfig{
			MinSeparation: 30 * time.Minute,
			BatchMaxItems: 50,
			SweepSpec:     "0 * * * * *",
		},
	}
}

// applyEnv overrides config fields from environment variables
func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("SCHEDULER_MIN_SEPARATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scheduler.MinSeparation = d
		}
	}
	if v := os.Getenv("SCHEDULER_BATCH_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.BatchMaxItems = n
		}
	}
	if v := os.Getenv("SCHEDULER_SWEEP_SPEC"); v != "" {
		cfg.Scheduler.SweepSpec = v
	}
}

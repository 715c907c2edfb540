package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs per data class
const (
	TTLStatus   = 30 * time.Second // latest event status per content item
	TTLVersions = 1 * time.Minute  // version listings
	TTLDefault  = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixStatus   = "sched:status:"
	PrefixVersions = "sched:versions:"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// Service is the Redis cache service interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Content status cache
	GetContentStatusRaw(ctx context.Context, tenantID string, contentID uint64) (string, error)
	SetContentStatusRaw(ctx context.Context, tenantID string, contentID uint64, status string) error
	InvalidateContent(ctx context.Context, tenantID string, contentID uint64) error
}

type service struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service
func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *service) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}

func statusKey(tenantID string, contentID uint64) string {
	return fmt.Sprintf("%s%s:%d", PrefixStatus, tenantID, contentID)
}

func versionsKey(tenantID string, contentID uint64) string {
	return fmt.Sprintf("%s%s:%d", PrefixVersions, tenantID, contentID)
}

// GetContentStatusRaw returns the cached latest event status for a content item
func (s *service) GetContentStatusRaw(ctx context.Context, tenantID string, contentID uint64) (string, error) {
	status, err := s.client.Get(ctx, statusKey(tenantID, contentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return status, err
}

// SetContentStatusRaw caches the latest event status for a content item
func (s *service) SetContentStatusRaw(ctx context.Context, tenantID string, contentID uint64, status string) error {
	return s.client.Set(ctx, statusKey(tenantID, contentID), status, TTLStatus).Err()
}

// InvalidateContent drops every cached read for a content item
func (s *service) InvalidateContent(ctx context.Context, tenantID string, contentID uint64) error {
	return s.client.Del(ctx, statusKey(tenantID, contentID), versionsKey(tenantID, contentID)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

const (
	keyPrefix = "tracker:students:"
	listKey   = keyPrefix + "list"
)

// StudentCache caches student read views in Redis. A nil *StudentCache, or
// one built without a client, behaves as an always-missing cache. Redis
// errors are logged and never reach callers.
type StudentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewStudentCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *StudentCache {
	return &StudentCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func (c *StudentCache) enabled() bool {
	return c != nil && c.client != nil
}

func studentKey(id string) string {
	return keyPrefix + id
}

func (c *StudentCache) GetList(ctx context.Context) ([]models.StudentSummary, bool) {
	var students []models.StudentSummary
	if !c.get(ctx, listKey, &students) {
		return nil, false
	}
	return students, true
}

func (c *StudentCache) SetList(ctx context.Context, students []models.StudentSummary) {
	c.set(ctx, listKey, students)
}

func (c *StudentCache) GetStudent(ctx context.Context, id string) (*models.Student, bool) {
	var student models.Student
	if !c.get(ctx, studentKey(id), &student) {
		return nil, false
	}
	return &student, true
}

func (c *StudentCache) SetStudent(ctx context.Context, student *models.Student) {
	c.set(ctx, studentKey(student.ID), student)
}

// Invalidate drops the list view and the detail views of the given ids.
func (c *StudentCache) Invalidate(ctx context.Context, ids ...string) {
	if !c.enabled() {
		return
	}

	keys := []string{listKey}
	for _, id := range ids {
		keys = append(keys, studentKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("Failed to invalidate student cache")
	}
}

func (c *StudentCache) get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache entry is corrupt")
		return false
	}

	return true
}

func (c *StudentCache) set(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to marshal cache entry")
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

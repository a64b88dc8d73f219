package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tutoring_backend/models"
)

// CacheClient is the subset of *redis.Client used by Cached.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Cached serves list reads from redis. Every write bumps a per-collection
// generation counter that is part of the list key, so stale lists are never
// read again and simply expire. Cache failures are logged and the request
// falls through to the wrapped store.
type Cached struct {
	Store
	client CacheClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ Store = (*Cached)(nil)

func NewCached(next Store, client CacheClient, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{Store: next, client: client, ttl: ttl, logger: logger}
}

func (c *Cached) Schedules() ScheduleStore {
	return cachedSchedules{ScheduleStore: c.Store.Schedules(), c: c}
}

func (c *Cached) Homework() HomeworkStore {
	return cachedHomework{HomeworkStore: c.Store.Homework(), c: c}
}

const (
	scheduleCollection = "schedule"
	homeworkCollection = "homework"
)

func generationKey(collection string) string {
	return "cache:gen:" + collection
}

func (c *Cached) listKey(ctx context.Context, collection string, target models.Target) (string, bool) {
	gen, err := c.client.Get(ctx, generationKey(collection)).Result()
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		c.logger.Warn("Failed to read cache generation", zap.String("collection", collection), zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("cache:%s:%s:%s:%s", collection, gen, target.Kind, target.ID), true
}

func (c *Cached) load(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("Failed to read cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("Dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cached) save(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cached) invalidate(ctx context.Context, collection string) {
	if err := c.client.Incr(ctx, generationKey(collection)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate cache", zap.String("collection", collection), zap.Error(err))
	}
}

type cachedSchedules struct {
	ScheduleStore
	c *Cached
}

func (s cachedSchedules) FindSchedules(ctx context.Context, target models.Target) ([]models.Schedule, error) {
	key, ok := s.c.listKey(ctx, scheduleCollection, target)
	if ok {
		var out []models.Schedule
		if s.c.load(ctx, key, &out) {
			return out, nil
		}
	}
	out, err := s.ScheduleStore.FindSchedules(ctx, target)
	if err != nil {
		return nil, err
	}
	if ok {
		s.c.save(ctx, key, out)
	}
	return out, nil
}

func (s cachedSchedules) CreateSchedule(ctx context.Context, rec models.Schedule) (models.Schedule, error) {
	out, err := s.ScheduleStore.CreateSchedule(ctx, rec)
	if err == nil {
		s.c.invalidate(ctx, scheduleCollection)
	}
	return out, err
}

func (s cachedSchedules) UpdateSchedule(ctx context.Context, id string, u *models.Update) (models.Schedule, error) {
	out, err := s.ScheduleStore.UpdateSchedule(ctx, id, u)
	if err == nil {
		s.c.invalidate(ctx, scheduleCollection)
	}
	return out, err
}

func (s cachedSchedules) DeleteSchedule(ctx context.Context, id string) (models.Schedule, error) {
	out, err := s.ScheduleStore.DeleteSchedule(ctx, id)
	if err == nil {
		s.c.invalidate(ctx, scheduleCollection)
	}
	return out, err
}

func (s cachedSchedules) DeleteSchedules(ctx context.Context, ids []string) (int64, error) {
	n, err := s.ScheduleStore.DeleteSchedules(ctx, ids)
	if err == nil && n > 0 {
		s.c.invalidate(ctx, scheduleCollection)
	}
	return n, err
}

type cachedHomework struct {
	HomeworkStore
	c *Cached
}

func (s cachedHomework) FindHomework(ctx context.Context, target models.Target) ([]models.Homework, error) {
	key, ok := s.c.listKey(ctx, homeworkCollection, target)
	if ok {
		var out []models.Homework
		if s.c.load(ctx, key, &out) {
			return out, nil
		}
	}
	out, err := s.HomeworkStore.FindHomework(ctx, target)
	if err != nil {
		return nil, err
	}
	if ok {
		s.c.save(ctx, key, out)
	}
	return out, nil
}

func (s cachedHomework) CreateHomework(ctx context.Context, rec models.Homework) (models.Homework, error) {
	out, err := s.HomeworkStore.CreateHomework(ctx, rec)
	if err == nil {
		s.c.invalidate(ctx, homeworkCollection)
	}
	return out, err
}

func (s cachedHomework) UpdateHomework(ctx context.Context, id string, u *models.Update) (models.Homework, error) {
	out, err := s.HomeworkStore.UpdateHomework(ctx, id, u)
	if err == nil {
		s.c.invalidate(ctx, homeworkCollection)
	}
	return out, err
}

func (s cachedHomework) DeleteHomework(ctx context.Context, id string) (models.Homework, error) {
	out, err := s.HomeworkStore.DeleteHomework(ctx, id)
	if err == nil {
		s.c.invalidate(ctx, homeworkCollection)
	}
	return out, err
}

func (s cachedHomework) DeleteHomeworks(ctx context.Context, ids []string) (int64, error) {
	n, err := s.HomeworkStore.DeleteHomeworks(ctx, ids)
	if err == nil && n > 0 {
		s.c.invalidate(ctx, homeworkCollection)
	}
	return n, err
}

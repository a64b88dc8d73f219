package db

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis returns nil when no address is configured or the server does not
// answer; list caching is then disabled.
func ConnectRedis(ctx context.Context, addr string, logger *zap.Logger) *redis.Client {
	if addr == "" {
		logger.Warn("REDIS_ADDR is not set, list caching is disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis, list caching is disabled", zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	logger.Info("Connected to redis", zap.String("addr", addr))
	return rdb
}

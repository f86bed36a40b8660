package cache

import (
	"context"
	"os"
	"sync"

	"facegate.io/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

var (
	instance *RedisClient
	once     sync.Once
)

func GetInstance() (*RedisClient, error) {
	once.Do(func() {
		opt := &redis.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			PoolSize: 10,
		}
		instance = &RedisClient{Client: redis.NewClient(opt)}
		logger.Info("connected to redis successfully")
	})
	return instance, nil
}

func CleanUp() {
	if instance != nil {
		if err := instance.Client.Close(); err != nil {
			logger.Error("error closing redis connection", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}
}

// Ping verifies the connection is alive.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

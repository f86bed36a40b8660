package cache

import (
	"context"
	"time"

	redisClient "facegate.io/infrastructure/database/connection/cache"
	"facegate.io/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

var Cache RedisRepository

type RedisRepository struct {
	Client *redis.Client
}

func (redisRepo *RedisRepository) preRequest() {
	if redisRepo.Client == nil {
		client, _ := redisClient.GetInstance()
		redisRepo.Client = client.Client
		logger.Info("redis repository initialisation complete")
	}
}

func (redisRepo *RedisRepository) CreateEntry(key string, payload interface{}, ttl time.Duration) bool {
	redisRepo.preRequest()
	ctx := context.Background()
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

// CreateEntryIfNotExists sets the key only when absent, returning whether the
// write happened. Used as a one-shot guard for verdict token redemption.
func (redisRepo *RedisRepository) CreateEntryIfNotExists(key string, payload interface{}, ttl time.Duration) bool {
	redisRepo.preRequest()
	ctx := context.Background()
	created, err := redisRepo.Client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntryIfNotExists", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return created
}

func (redisRepo *RedisRepository) FindOne(key string) *string {
	redisRepo.preRequest()
	ctx := context.Background()

	result, err := redisRepo.Client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		logger.Error("redis error occured while running FindOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

// IncrementEntry bumps a counter key, setting the ttl on first increment.
// Used for the per-device outstanding-session quota.
func (redisRepo *RedisRepository) IncrementEntry(key string, ttl time.Duration) int64 {
	redisRepo.preRequest()
	ctx := context.Background()

	count, err := redisRepo.Client.Incr(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running IncrementEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0
	}
	if count == 1 {
		redisRepo.Client.Expire(ctx, key, ttl)
	}
	return count
}

func (redisRepo *RedisRepository) DecrementEntry(key string) {
	redisRepo.preRequest()
	ctx := context.Background()
	count, err := redisRepo.Client.Decr(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running DecrementEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return
	}
	// a negative count means the key had already expired and DECR recreated
	// it without a ttl; drop it so the counter restarts from zero
	if count < 0 {
		redisRepo.Client.Del(ctx, key)
	}
}

func (redisRepo *RedisRepository) DeleteOne(key string) bool {
	redisRepo.preRequest()
	ctx := context.Background()
	if _, err := redisRepo.Client.Del(ctx, key).Result(); err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

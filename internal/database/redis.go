package database

import (
	"context"

	"vpn-backend/config"

	"github.com/go-redis/redis/v8"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis opens the shared client used for the account and rate
// caches and verifies the connection.
func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	_, err := RedisClient.Ping(Ctx).Result()
	return err
}

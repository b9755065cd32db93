package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"minitweet/config"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisUp     bool
)

// GetRedis returns a singleton Redis client based on loaded config.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Get()
		redisClient = redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		redisUp = redisClient.Ping(ctx).Err() == nil
	})
	return redisClient
}

// RedisAvailable reports whether the initial ping succeeded. Callers fall
// back to in-process state when it did not.
func RedisAvailable() bool {
	GetRedis()
	return redisUp
}

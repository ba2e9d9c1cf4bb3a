package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	RedisClient *redis.Client
}

// ConnectRedis connects to the Redis instance holding the live price
// snapshot hashes.
func ConnectRedis() *Redis {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	maxRetries, _ := strconv.Atoi(os.Getenv("MAX_REDIS_ATTEMPTS"))
	if maxRetries == 0 {
		maxRetries = 10
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			fmt.Println("Connected to Redis successfully!")
			return &Redis{RedisClient: client}
		}
		log.Printf("Attempt %d: failed to ping Redis: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}

	log.Fatalf("Exceeded max retries. Could not connect to Redis: %v", err)
	return nil
}

// Stop gracefully closes the Redis connection
func (r *Redis) Stop() {
	if r.RedisClient != nil {
		if err := r.RedisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			fmt.Println("Redis connection closed successfully!")
		}
	}
}

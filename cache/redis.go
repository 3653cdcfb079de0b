package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the response cache with a shared Redis instance so
// multiple replicas see the same entries
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed cache store. Returns nil when Redis
// is unreachable; callers fall back to the in-memory store.
func NewRedisStore(host, port, password string) *RedisStore {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Failed to connect to Redis at %s: %v", addr, err)
		return nil
	}

	log.Printf("✅ Connected to Redis at %s", addr)
	return &RedisStore{client: client}
}

// Get retrieves a value from Redis
func (r *RedisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	if r.client == nil {
		return false
	}

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores a value in Redis with expiration
func (r *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, jsonBytes, ttl).Err()
}

// Delete removes a key from Redis
func (r *RedisStore) Delete(ctx context.Context, key string) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("⚠️  Failed to delete cache key %s: %v", key, err)
	}
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

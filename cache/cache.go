package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	config "github.com/tutorlink/api/configs"
)

// Store is a thin read-through cache for public catalog listings. A Store
// with a nil client is valid and disables caching, so callers degrade
// gracefully when Redis is unreachable at startup.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New() *Store {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable, caching disabled: %v", err)
		return &Store{}
	}

	log.Println("✅ Redis cache connected")
	return &Store{client: client, ttl: 30 * time.Second}
}

// GetJSON loads a cached value into dest, reporting whether it was present.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || s.client == nil {
		return false
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *Store) SetJSON(ctx context.Context, key string, v interface{}) {
	if s == nil || s.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Printf("cache set failed for %s: %v", key, err)
	}
}

// Invalidate drops every key under the given prefixes.
func (s *Store) Invalidate(ctx context.Context, prefixes ...string) {
	if s == nil || s.client == nil {
		return
	}
	for _, prefix := range prefixes {
		iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			s.client.Del(ctx, iter.Val())
		}
	}
}

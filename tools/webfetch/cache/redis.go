package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finease/finease-backend/tools/webfetch/models"
)

// Redis caches pages in a shared Redis so multiple replicas reuse fetches.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings; a dead Redis fails construction rather than
// silently degrading.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error { return r.client.Close() }

func pageKey(url string) string { return "page:" + url }

func (r *Redis) Get(ctx context.Context, url string) (models.Page, bool) {
	raw, err := r.client.Get(ctx, pageKey(url)).Bytes()
	if err != nil {
		return models.Page{}, false
	}
	var page models.Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return models.Page{}, false
	}
	return page, true
}

func (r *Redis) Set(ctx context.Context, url string, page models.Page, ttl time.Duration) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, pageKey(url), raw, ttl).Err()
}

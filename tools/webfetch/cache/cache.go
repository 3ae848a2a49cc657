// Package cache adds a TTL page cache in front of a Fetcher so a URL is not
// re-scraped on every session that references it.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/finease/finease-backend/tools/webfetch"
	"github.com/finease/finease-backend/tools/webfetch/models"
)

// Cache stores extracted pages keyed by URL.
type Cache interface {
	Get(ctx context.Context, url string) (models.Page, bool)
	Set(ctx context.Context, url string, page models.Page, ttl time.Duration)
}

type cachedFetcher struct {
	inner webfetch.Fetcher
	cache Cache
	ttl   time.Duration
	log   *log.Logger
}

// Wrap decorates a fetcher with the given cache. Fetch failures are never
// cached.
func Wrap(inner webfetch.Fetcher, c Cache, ttl time.Duration) webfetch.Fetcher {
	if c == nil || ttl <= 0 {
		return inner
	}
	return &cachedFetcher{
		inner: inner,
		cache: c,
		ttl:   ttl,
		log:   log.New(log.Writer(), "[FETCH] ", log.LstdFlags),
	}
}

func (f *cachedFetcher) Fetch(ctx context.Context, url string) (models.Page, error) {
	if page, ok := f.cache.Get(ctx, url); ok {
		return page, nil
	}
	page, err := f.inner.Fetch(ctx, url)
	if err != nil {
		return models.Page{}, err
	}
	f.cache.Set(ctx, url, page, f.ttl)
	f.log.Printf("cached %s (%d chars, ttl %s)", url, len(page.Text), f.ttl)
	return page, nil
}

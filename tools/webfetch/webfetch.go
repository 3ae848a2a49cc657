package webfetch

import (
	"context"
	"fmt"
	"time"

	"github.com/finease/finease-backend/config"
	chromedp_fetch "github.com/finease/finease-backend/tools/webfetch/chromedp"
	"github.com/finease/finease-backend/tools/webfetch/httpfetch"
	"github.com/finease/finease-backend/tools/webfetch/models"
)

// Fetcher retrieves a URL and extracts its visible text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (models.Page, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

// NewFetcher builds the configured fetcher. The chromedp fetcher holds a
// live browser; callers must Close() it on shutdown.
func NewFetcher(cfg config.FetcherConfig) (Fetcher, func(), error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	switch FetcherType(cfg.Type) {
	case ChromedpFetcherType:
		f, err := chromedp_fetch.New(timeout, cfg.MaxChars, cfg.UserAgent)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	case HTTPFetcherType, "":
		f := httpfetch.New(timeout, cfg.MaxChars, cfg.UserAgent, httpfetch.ExtractMode(cfg.ExtractMode))
		return f, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported fetcher type: %q", cfg.Type)
	}
}

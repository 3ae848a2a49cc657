// Package chromedp_fetch: headless fetch + readability extraction for
// JS-rendered product pages.
package chromedp_fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/finease/finease-backend/tools/webfetch/extract"
	"github.com/finease/finease-backend/tools/webfetch/models"
)

// Fetch owns a long-lived Chrome browser for performance; each call gets
// its own tab. Construct once; call Fetch per URL. Call Close() on shutdown.
type Fetch struct {
	allocCtx  context.Context
	cancelAll context.CancelFunc
	brCtx     context.Context
	cancelBr  context.CancelFunc

	UserAgent string
	Timeout   time.Duration
	MaxChars  int
}

// New starts a reusable headless browser.
func New(timeout time.Duration, maxChars int, userAgent string) (*Fetch, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	bctx, cancelBr := chromedp.NewContext(actx)

	return &Fetch{
		allocCtx:  actx,
		cancelAll: cancelAlloc,
		brCtx:     bctx,
		cancelBr:  cancelBr,
		UserAgent: userAgent,
		Timeout:   timeout,
		MaxChars:  maxChars,
	}, nil
}

// Close tears down Chrome resources.
func (f *Fetch) Close() {
	if f.cancelBr != nil {
		f.cancelBr()
	}
	if f.cancelAll != nil {
		f.cancelAll()
	}
}

// Fetch renders the page, extracts the main content via readability, and
// returns the normalized text. Empty extraction fails the document.
func (f *Fetch) Fetch(ctx context.Context, link string) (models.Page, error) {
	if strings.TrimSpace(link) == "" {
		return models.Page{}, fmt.Errorf("invalid url")
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	rawHTML, err := f.outerHTML(ctx, link)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to render %s: %w", link, err)
	}

	title, text, err := extract.ArticleText(rawHTML, link)
	if err != nil {
		return models.Page{}, fmt.Errorf("readability on %s: %w", link, err)
	}
	if text == "" {
		return models.Page{}, fmt.Errorf("%s: %w", link, models.ErrNoContent)
	}
	if f.MaxChars > 0 {
		text = extract.Truncate(text, f.MaxChars)
	}

	return models.Page{URL: link, Title: title, Text: text}, nil
}

func (f *Fetch) outerHTML(ctx context.Context, link string) (string, error) {
	// One tab per call. Concurrent fetches must never share a page, and the
	// tab has to die with the caller's deadline.
	tabCtx, cancelTab := chromedp.NewContext(f.brCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var rawHTML string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(link),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &rawHTML, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return rawHTML, nil
}

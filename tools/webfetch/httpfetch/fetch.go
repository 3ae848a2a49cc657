// Package httpfetch retrieves pages with a plain HTTP client and extracts
// their visible text.
package httpfetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finease/finease-backend/tools/webfetch/extract"
	"github.com/finease/finease-backend/tools/webfetch/models"
)

// ExtractMode selects how text is pulled out of the fetched HTML.
type ExtractMode string

const (
	// ExtractBody returns the full visible text of the page body.
	ExtractBody ExtractMode = "body"
	// ExtractArticle runs readability main-content extraction.
	ExtractArticle ExtractMode = "article"
)

type Fetch struct {
	Mode      ExtractMode
	UserAgent string
	MaxChars  int

	httpClient *http.Client
}

func New(timeout time.Duration, maxChars int, userAgent string, mode ExtractMode) *Fetch {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if mode == "" {
		mode = ExtractBody
	}
	return &Fetch{
		Mode:       mode,
		UserAgent:  userAgent,
		MaxChars:   maxChars,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch GETs the URL and extracts its text. Any non-2xx status, transport
// failure, or empty extraction fails the document.
func (f *Fetch) Fetch(ctx context.Context, link string) (models.Page, error) {
	if strings.TrimSpace(link) == "" {
		return models.Page{}, fmt.Errorf("invalid url")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to fetch %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Page{}, fmt.Errorf("fetch %s: status %d", link, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return models.Page{}, fmt.Errorf("failed to read body of %s: %w", link, err)
	}

	var title, text string
	switch f.Mode {
	case ExtractArticle:
		title, text, err = extract.ArticleText(buf.String(), link)
		if err != nil {
			return models.Page{}, fmt.Errorf("readability on %s: %w", link, err)
		}
	default:
		text, err = extract.BodyText(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return models.Page{}, fmt.Errorf("parsing %s: %w", link, err)
		}
		title = extract.Title(bytes.NewReader(buf.Bytes()))
	}

	if text == "" {
		return models.Page{}, fmt.Errorf("%s: %w", link, models.ErrNoContent)
	}
	if f.MaxChars > 0 {
		text = extract.Truncate(text, f.MaxChars)
	}

	return models.Page{URL: link, Title: title, Text: text}, nil
}

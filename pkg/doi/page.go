package doi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultPageTimeout = 15 * time.Second

	// maxPageBody bounds how much of a page is read; citation meta tags
	// live in the head.
	maxPageBody = 2 << 20

	browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// PageClient fetches publisher pages for meta-tag inspection. Many
// publishers reject default Go user agents or drop headers across
// redirects, so requests carry browser-like headers that survive the
// redirect chain.
type PageClient struct {
	client    *http.Client
	userAgent string
}

// NewPageClient creates a page fetcher with the given timeout.
func NewPageClient(timeout time.Duration) *PageClient {
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects: %d", len(via))
			}
			// Preserve headers across redirects.
			if len(via) > 0 {
				req.Header = via[0].Header.Clone()
			}

			return nil
		},
	}

	return &PageClient{client: client, userAgent: browserUserAgent}
}

// GetHTML fetches a page and returns its body. Any failure, including a
// non-2xx status, is an error; callers treat that as "no page".
func (p *PageClient) GetHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	return string(body), nil
}

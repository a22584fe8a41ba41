package crossref

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
)

const defaultTimeout = 30 * time.Second

// searchRows caps title searches; the default API page is plenty for fuzzy
// matching.
const searchRows = "20"

// Client queries the Crossref REST API. Passing a mailto address routes
// requests to the polite pool, which Crossref asks of automated clients.
type Client struct {
	http   *resty.Client
	mailto string
}

// NewClient builds a client for the given API host, e.g.
// https://api.crossref.org.
func NewClient(baseURL, mailto, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetHostURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	return &Client{http: http, mailto: mailto}
}

// WorkByDOI fetches the work registered under a DOI.
func (c *Client) WorkByDOI(ctx context.Context, doi string) (*Work, error) {
	req := c.http.R().SetContext(ctx)
	if c.mailto != "" {
		req.SetQueryParam("mailto", c.mailto)
	}

	resp, err := req.Get("/works/" + doi)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work %s: %w", doi, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch work %s: %s", doi, resp.Status())
	}

	var payload struct {
		Status  string `json:"status"`
		Message Work   `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode work %s: %w", doi, err)
	}

	return &payload.Message, nil
}

// WorksByTitle runs a bibliographic search and returns the candidate works
// in relevance order.
func (c *Client) WorksByTitle(ctx context.Context, title string) ([]Work, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", title).
		SetQueryParam("rows", searchRows)
	if c.mailto != "" {
		req.SetQueryParam("mailto", c.mailto)
	}

	resp, err := req.Get("/works")
	if err != nil {
		return nil, fmt.Errorf("failed to search works: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to search works: %s", resp.Status())
	}

	var payload struct {
		Status  string `json:"status"`
		Message struct {
			Items []Work `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	return payload.Message.Items, nil
}

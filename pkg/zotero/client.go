package zotero

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
)

const (
	defaultTimeout = 60 * time.Second

	// apiPageSize is the maximum the API serves per request.
	apiPageSize = 100

	// MaxWriteBatch is the largest item batch one write request accepts.
	MaxWriteBatch = 50
)

// Client talks to one Zotero library over the v3 web API.
type Client struct {
	http        *resty.Client
	libraryType string
	libraryID   string
}

// NewClient builds a client for the given library. libraryType is "user"
// or "group".
func NewClient(baseURL, apiKey, libraryType, libraryID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetHostURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Zotero-API-Version", "3").
		SetHeader("Zotero-API-Key", apiKey).
		SetTimeout(timeout)

	return &Client{http: http, libraryType: libraryType, libraryID: libraryID}
}

func (c *Client) prefix() string {
	return fmt.Sprintf("/%ss/%s", c.libraryType, c.libraryID)
}

// Collections returns the library's collections as a name-to-key map.
func (c *Client) Collections(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	start := 0

	for {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(apiPageSize)).
			SetQueryParam("start", strconv.Itoa(start)).
			Get(c.prefix() + "/collections")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch collections: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("failed to fetch collections: %s", resp.Status())
		}

		var batch []struct {
			Data struct {
				Key  string `json:"key"`
				Name string `json:"name"`
			} `json:"data"`
		}
		if err := json.Unmarshal(resp.Body(), &batch); err != nil {
			return nil, fmt.Errorf("failed to decode collections: %w", err)
		}

		for _, col := range batch {
			out[col.Data.Name] = col.Data.Key
		}

		if len(batch) < apiPageSize {
			return out, nil
		}
		start += len(batch)
	}
}

// AllItems pages through every item in the library.
func (c *Client) AllItems(ctx context.Context) ([]ItemRecord, error) {
	var out []ItemRecord
	start := 0

	for {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(apiPageSize)).
			SetQueryParam("start", strconv.Itoa(start)).
			Get(c.prefix() + "/items")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch items: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("failed to fetch items: %s", resp.Status())
		}

		var batch []ItemRecord
		if err := json.Unmarshal(resp.Body(), &batch); err != nil {
			return nil, fmt.Errorf("failed to decode items: %w", err)
		}

		out = append(out, batch...)

		if len(batch) < apiPageSize {
			return out, nil
		}
		start += len(batch)
	}
}

// CreateItems writes a batch of items in one request. Items carrying a key
// and version update the existing entries. The caller reads the per-index
// outcome from the result; only transport and auth failures are errors.
func (c *Client) CreateItems(ctx context.Context, items []Item) (*WriteResult, error) {
	if len(items) == 0 {
		return &WriteResult{}, nil
	}
	if len(items) > MaxWriteBatch {
		return nil, fmt.Errorf("batch of %d exceeds the %d item write limit", len(items), MaxWriteBatch)
	}

	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.prefix() + "/items")
	if err != nil {
		return nil, fmt.Errorf("failed to write items: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to write items: %s", resp.Status())
	}

	var result WriteResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode write result: %w", err)
	}

	return &result, nil
}

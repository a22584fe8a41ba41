package reddit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
)

const (
	defaultTimeout = 30 * time.Second

	// pageSize is the maximum listing page the API serves.
	pageSize = "100"
)

// Client talks to the public JSON API. Reddit throttles generic user agents
// hard, so callers should pass something descriptive and unique.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the given API host, e.g.
// https://www.reddit.com.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetHostURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{http: http}
}

// FetchNew pages through /r/<subreddit>/new from newest to oldest and
// returns every submission newer than untilID, preserving the listing order.
// An empty untilID fetches the whole listing.
func (c *Client) FetchNew(ctx context.Context, subreddit, untilID string) ([]Submission, error) {
	var out []Submission
	after := ""

	for {
		req := c.http.R().
			SetContext(ctx).
			SetQueryParam("limit", pageSize).
			SetQueryParam("raw_json", "1")
		if after != "" {
			req.SetQueryParam("after", after)
		}

		resp, err := req.Get(fmt.Sprintf("/r/%s/new.json", subreddit))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch submissions for r/%s: %w", subreddit, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("failed to fetch submissions for r/%s: %s", subreddit, resp.Status())
		}

		var l listing
		if err := json.Unmarshal(resp.Body(), &l); err != nil {
			return nil, fmt.Errorf("failed to decode listing for r/%s: %w", subreddit, err)
		}

		subs, err := parseSubmissions(&l)
		if err != nil {
			return nil, err
		}

		for i := range subs {
			if untilID != "" && subs[i].ID == untilID {
				return out, nil
			}

			out = append(out, subs[i].toSubmission())
		}

		if l.Data.After == "" {
			return out, nil
		}
		after = l.Data.After
	}
}

// FetchComments returns the full comment tree of a submission.
func (c *Client) FetchComments(ctx context.Context, id string) ([]Comment, error) {
	_, comments, err := c.fetchThread(ctx, fmt.Sprintf("/comments/%s.json", id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments for %s: %w", id, err)
	}

	return comments, nil
}

// FetchThread returns a submission together with its comment tree in a
// single request.
func (c *Client) FetchThread(ctx context.Context, id string) (*Submission, []Comment, error) {
	sub, comments, err := c.fetchThread(ctx, fmt.Sprintf("/comments/%s.json", id))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch thread %s: %w", id, err)
	}

	return sub, comments, nil
}

// FetchSelftext returns the body text of the submission behind an absolute
// permalink, used to chase cross-posts into other communities.
func (c *Client) FetchSelftext(ctx context.Context, link string) (string, error) {
	sub, _, err := c.fetchThread(ctx, strings.TrimSuffix(link, "/")+".json")
	if err != nil {
		return "", fmt.Errorf("failed to fetch cross-post %s: %w", link, err)
	}

	return sub.Selftext, nil
}

// fetchThread handles the two-listing payload of comment endpoints: the
// first listing holds the submission, the second its comment forest.
func (c *Client) fetchThread(ctx context.Context, url string) (*Submission, []Comment, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", "500").
		SetQueryParam("raw_json", "1").
		Get(url)
	if err != nil {
		return nil, nil, err
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("unexpected status %s", resp.Status())
	}

	var listings []listing
	if err := json.Unmarshal(resp.Body(), &listings); err != nil {
		return nil, nil, fmt.Errorf("failed to decode thread payload: %w", err)
	}
	if len(listings) < 2 {
		return nil, nil, fmt.Errorf("thread payload has %d listings, want 2", len(listings))
	}

	subs, err := parseSubmissions(&listings[0])
	if err != nil {
		return nil, nil, err
	}
	if len(subs) == 0 {
		return nil, nil, fmt.Errorf("thread payload has no submission")
	}

	comments, err := parseComments(&listings[1])
	if err != nil {
		return nil, nil, err
	}

	sub := subs[0].toSubmission()

	return &sub, comments, nil
}

// Package reddit provides a read-only client for Reddit's public JSON
// endpoints together with the submission and comment model the pipeline
// stores. No credentials are needed, only a descriptive user agent.
package reddit

import (
	"time"

	json "github.com/goccy/go-json"
)

// PermalinkHost prefixes the relative permalinks the API returns.
const PermalinkHost = "https://www.reddit.com"

// TimeLayout is the human-readable local-time format creation times are
// stored in.
const TimeLayout = "2006-01-02 15:04:05"

// Submission holds the fields of a fetched submission. JSON tags follow the
// persisted document schema, which differs in places from the wire names
// (author_name, subreddit_display_name, formatted created_utc).
type Submission struct {
	AuthorFlairText   *string         `json:"author_flair_text"`
	AuthorName        *string         `json:"author_name"`
	CreatedUTC        string          `json:"created_utc"`
	Distinguished     *string         `json:"distinguished"`
	Edited            json.RawMessage `json:"edited,omitempty"`
	ID                string          `json:"id"`
	IsOriginalContent bool            `json:"is_original_content"`
	LinkFlairText     *string         `json:"link_flair_text"`
	Locked            bool            `json:"locked"`
	Name              string          `json:"name"`
	NumComments       int             `json:"num_comments"`
	Over18            bool            `json:"over_18"`
	Permalink         string          `json:"permalink"`
	RemovedByCategory *string         `json:"removed_by_category"`
	Score             int             `json:"score"`
	Selftext          string          `json:"selftext"`
	Spoiler           bool            `json:"spoiler"`
	Stickied          bool            `json:"stickied"`
	Subreddit         string          `json:"subreddit_display_name"`
	Title             string          `json:"title"`
	UpvoteRatio       float64         `json:"upvote_ratio"`
	URL               string          `json:"url"`
}

// PermalinkURL returns the submission's absolute permalink.
func (s *Submission) PermalinkURL() string {
	return PermalinkHost + s.Permalink
}

// CreatedTime parses the stored creation time in the local zone.
func (s *Submission) CreatedTime() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s.CreatedUTC, time.Local)
}

// Comment is a node in a submission's reply tree. Replies preserve the order
// the API returned them in and may nest to arbitrary depth. A nil AuthorName
// means the account was deleted.
type Comment struct {
	AuthorName    *string         `json:"author_name"`
	Body          string          `json:"body"`
	CreatedUTC    string          `json:"created_utc"`
	Distinguished *string         `json:"distinguished"`
	Edited        json.RawMessage `json:"edited,omitempty"`
	ID            string          `json:"id"`
	IsSubmitter   bool            `json:"is_submitter"`
	LinkID        string          `json:"link_id"`
	ParentID      string          `json:"parent_id"`
	Permalink     string          `json:"permalink"`
	Replies       []Comment       `json:"replies"`
	Score         int             `json:"score"`
	Stickied      bool            `json:"stickied"`
}

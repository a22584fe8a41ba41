package reddit

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Thing kinds as they appear in listing children.
const (
	kindComment    = "t1"
	kindSubmission = "t3"
	kindMore       = "more"
)

// listing is the envelope Reddit wraps every collection in.
type listing struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	After    string  `json:"after"`
	Children []child `json:"children"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// submissionData carries the wire-format fields of a t3 thing.
type submissionData struct {
	Author            string          `json:"author"`
	AuthorFlairText   *string         `json:"author_flair_text"`
	CreatedUTC        float64         `json:"created_utc"`
	Distinguished     *string         `json:"distinguished"`
	Edited            json.RawMessage `json:"edited"`
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
	Subreddit         string          `json:"subreddit"`
	Title             string          `json:"title"`
	UpvoteRatio       float64         `json:"upvote_ratio"`
	URL               string          `json:"url"`
}

// commentData carries the wire-format fields of a t1 thing. Replies is left
// raw because the API sends either a nested listing or an empty string.
type commentData struct {
	Author        string          `json:"author"`
	Body          string          `json:"body"`
	CreatedUTC    float64         `json:"created_utc"`
	Distinguished *string         `json:"distinguished"`
	Edited        json.RawMessage `json:"edited"`
	ID            string          `json:"id"`
	IsSubmitter   bool            `json:"is_submitter"`
	LinkID        string          `json:"link_id"`
	ParentID      string          `json:"parent_id"`
	Permalink     string          `json:"permalink"`
	Replies       json.RawMessage `json:"replies"`
	Score         int             `json:"score"`
	Stickied      bool            `json:"stickied"`
}

func (d *submissionData) toSubmission() Submission {
	return Submission{
		AuthorFlairText:   d.AuthorFlairText,
		AuthorName:        authorName(d.Author),
		CreatedUTC:        formatEpoch(d.CreatedUTC),
		Distinguished:     d.Distinguished,
		Edited:            d.Edited,
		ID:                d.ID,
		IsOriginalContent: d.IsOriginalContent,
		LinkFlairText:     d.LinkFlairText,
		Locked:            d.Locked,
		Name:              d.Name,
		NumComments:       d.NumComments,
		Over18:            d.Over18,
		Permalink:         d.Permalink,
		RemovedByCategory: d.RemovedByCategory,
		Score:             d.Score,
		Selftext:          d.Selftext,
		Spoiler:           d.Spoiler,
		Stickied:          d.Stickied,
		Subreddit:         d.Subreddit,
		Title:             d.Title,
		UpvoteRatio:       d.UpvoteRatio,
		URL:               d.URL,
	}
}

func (d *commentData) toComment() (Comment, error) {
	replies, err := parseReplies(d.Replies)
	if err != nil {
		return Comment{}, err
	}

	return Comment{
		AuthorName:    authorName(d.Author),
		Body:          d.Body,
		CreatedUTC:    formatEpoch(d.CreatedUTC),
		Distinguished: d.Distinguished,
		Edited:        d.Edited,
		ID:            d.ID,
		IsSubmitter:   d.IsSubmitter,
		LinkID:        d.LinkID,
		ParentID:      d.ParentID,
		Permalink:     d.Permalink,
		Replies:       replies,
		Score:         d.Score,
		Stickied:      d.Stickied,
	}, nil
}

// authorName maps deleted accounts to nil so they persist as null.
func authorName(author string) *string {
	if author == "" || author == "[deleted]" {
		return nil
	}

	return &author
}

func formatEpoch(sec float64) string {
	return time.Unix(int64(sec), 0).Format(TimeLayout)
}

// parseComments converts a comment listing into a tree, dropping "more"
// placeholders the JSON endpoint uses for collapsed branches.
func parseComments(l *listing) ([]Comment, error) {
	comments := make([]Comment, 0, len(l.Data.Children))

	for _, ch := range l.Data.Children {
		if ch.Kind != kindComment {
			continue
		}

		var data commentData
		if err := json.Unmarshal(ch.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %w", err)
		}

		comment, err := data.toComment()
		if err != nil {
			return nil, err
		}

		comments = append(comments, comment)
	}

	return comments, nil
}

// parseReplies handles the replies field, which holds a listing for comments
// with children and an empty string otherwise.
func parseReplies(raw json.RawMessage) ([]Comment, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte(`""`)) || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("failed to decode replies: %w", err)
	}

	return parseComments(&l)
}

// parseSubmissions extracts the t3 things from a listing in order.
func parseSubmissions(l *listing) ([]submissionData, error) {
	subs := make([]submissionData, 0, len(l.Data.Children))

	for _, ch := range l.Data.Children {
		if ch.Kind != kindSubmission {
			continue
		}

		var data submissionData
		if err := json.Unmarshal(ch.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %w", err)
		}

		subs = append(subs, data)
	}

	return subs, nil
}

// Package zotero pushes curated records into a Zotero library through the
// v3 web API: item-type mapping, batched writes, and lookup of previously
// pushed items.
package zotero

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Item types the pipeline maps works onto.
const (
	TypeJournalArticle  = "journalArticle"
	TypeThesis          = "thesis"
	TypeBookSection     = "bookSection"
	TypeConferencePaper = "conferencePaper"
	TypeDocument        = "document"
)

// Item is the writable data object of a library entry. Fields are the
// union of the item types used here; the builder only sets the ones the
// chosen type accepts.
type Item struct {
	Key     string `json:"key,omitempty"`
	Version int    `json:"version,omitempty"`

	ItemType            string    `json:"itemType"`
	Title               string    `json:"title,omitempty"`
	Creators            []Creator `json:"creators,omitempty"`
	AbstractNote        string    `json:"abstractNote,omitempty"`
	PublicationTitle    string    `json:"publicationTitle,omitempty"`
	BookTitle           string    `json:"bookTitle,omitempty"`
	ConferenceName      string    `json:"conferenceName,omitempty"`
	University          string    `json:"university,omitempty"`
	Volume              string    `json:"volume,omitempty"`
	Issue               string    `json:"issue,omitempty"`
	Pages               string    `json:"pages,omitempty"`
	Date                string    `json:"date,omitempty"`
	JournalAbbreviation string    `json:"journalAbbreviation,omitempty"`
	Language            string    `json:"language,omitempty"`
	DOI                 string    `json:"DOI,omitempty"`
	ISSN                string    `json:"ISSN,omitempty"`
	ShortTitle          string    `json:"shortTitle,omitempty"`
	URL                 string    `json:"url,omitempty"`
	AccessDate          string    `json:"accessDate,omitempty"`
	Extra               string    `json:"extra,omitempty"`
	Tags                []Tag     `json:"tags,omitempty"`
	Collections         []string  `json:"collections,omitempty"`
}

// Creator is one author entry.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

// Tag is one subject tag.
type Tag struct {
	Tag string `json:"tag"`
}

// Extra is the provenance block stored in an item's extra field. It links
// the library entry back to the forum thread it came from.
type Extra struct {
	PaperType            string  `json:"paper_type"`
	RedditTitlePaperType string  `json:"reddit_title_paper_type"`
	RedditLink           string  `json:"reddit_link"`
	RedditTitle          string  `json:"reddit_title"`
	RedditAuthor         *string `json:"reddit_author"`
	RedditFlair          *string `json:"reddit_flair"`
	RedditUpvotes        int     `json:"reddit_upvotes"`
	RedditSummary        string  `json:"reddit_summary"`
}

// Encode renders the block as indented JSON for the extra field.
func (e Extra) Encode() (string, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode extra block: %w", err)
	}

	return string(data), nil
}

// ParseExtra reads a provenance block back from an item's extra field.
// Items created outside the pipeline yield an error.
func ParseExtra(s string) (*Extra, error) {
	var e Extra
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return nil, fmt.Errorf("failed to parse extra block: %w", err)
	}

	return &e, nil
}

// ItemRecord is an item as the API returns it: data plus library envelope.
type ItemRecord struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	Data    Item   `json:"data"`
}

// WriteResult is the per-index outcome map of a batched write. Keys are the
// decimal index of the item within the submitted batch.
type WriteResult struct {
	Success   map[string]string     `json:"success"`
	Unchanged map[string]string     `json:"unchanged"`
	Failed    map[string]WriteError `json:"failed"`
}

// WriteError is one failed item in a batched write.
type WriteError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

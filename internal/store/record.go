// Package store persists curated records as flat JSON documents, one file
// per subreddit, with atomic writes and timestamped backups.
package store

import (
	"github.com/btraven00/lectio/pkg/crossref"
	"github.com/btraven00/lectio/pkg/reddit"
)

// Record is one curated submission. The embedded Submission mirrors what
// the forum returned; underscore-prefixed fields are derived by the
// pipeline and survive refetches. Comments distinguishes never-fetched
// (null) from fetched-and-empty ([]).
type Record struct {
	reddit.Submission
	Comments []reddit.Comment `json:"comments"`

	IsResearch        bool           `json:"_is_research"`
	PaperType         string         `json:"_paper_type,omitempty"`
	RealURL           *string        `json:"_real_url,omitempty"`
	Summary           string         `json:"_summary,omitempty"`
	CrosspostSelftext *string        `json:"_crosspost_selftext,omitempty"`
	Metadata          *crossref.Work `json:"_metadata,omitempty"`
	MetadataFailed    bool           `json:"_metadata_failed,omitempty"`
	SyncedSheet       bool           `json:"_synced_with_sheet"`
	SyncedZotero      bool           `json:"_synced_with_zotero"`
	ZoteroSyncError   *string        `json:"_zotero_sync_error,omitempty"`
}

// Removed reports whether moderation took the submission down.
func (r *Record) Removed() bool {
	return r.RemovedByCategory != nil
}

// MetadataPending reports whether a metadata lookup is still owed: research
// records that have neither metadata nor a remembered failure.
func (r *Record) MetadataPending() bool {
	return r.IsResearch && r.Metadata == nil && !r.MetadataFailed
}

// MarkDirty clears both sync flags after a field change so exporters pick
// the record up again.
func (r *Record) MarkDirty() {
	r.SyncedSheet = false
	r.SyncedZotero = false
}

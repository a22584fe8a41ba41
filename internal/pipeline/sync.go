package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/btraven00/lectio/internal/store"
	"github.com/btraven00/lectio/pkg/zotero"
)

// ReferenceLibrary is the slice of the reference-manager API the sync pass
// needs.
type ReferenceLibrary interface {
	Collections(ctx context.Context) (map[string]string, error)
	AllItems(ctx context.Context) ([]zotero.ItemRecord, error)
	CreateItems(ctx context.Context, items []zotero.Item) (*zotero.WriteResult, error)
}

// fallbackCollection catches records whose flair has no collection of its
// own.
const fallbackCollection = "Uncategorized"

// SyncResult summarizes one Zotero push.
type SyncResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type pendingItem struct {
	rec    *store.Record
	item   zotero.Item
	update bool
}

// SyncZotero pushes unsynced research records into the reference library.
// Items already pushed (matched on the thread permalink in their extra
// block) are updated in place. Per-item rejections are recorded on the
// record and skip it on later runs; transport and auth failures abort the
// pass. Partial progress is saved either way.
func (p *Pipeline) SyncZotero(ctx context.Context, subreddit string, lib ReferenceLibrary) (*SyncResult, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}

	pending, err := p.collectPending(ctx, records, lib, result)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	for start := 0; start < len(pending); start += zotero.MaxWriteBatch {
		end := min(start+zotero.MaxWriteBatch, len(pending))
		batch := pending[start:end]

		items := make([]zotero.Item, len(batch))
		for i := range batch {
			items[i] = batch[i].item
		}

		written, err := lib.CreateItems(ctx, items)
		if err != nil {
			if saveErr := p.store.Save(subreddit, records); saveErr != nil {
				p.log.Error("failed to save records after aborted sync", "error", saveErr)
			}

			return result, fmt.Errorf("failed to push items: %w", err)
		}

		applyWriteResult(batch, written, result)
	}

	return result, p.store.Save(subreddit, records)
}

// collectPending builds the items owed to the library, matched against
// what is already there.
func (p *Pipeline) collectPending(ctx context.Context, records []store.Record, lib ReferenceLibrary, result *SyncResult) ([]pendingItem, error) {
	var eligible []*store.Record
	for i := range records {
		rec := &records[i]
		if !rec.IsResearch || rec.Removed() || rec.SyncedZotero {
			continue
		}
		if rec.ZoteroSyncError != nil {
			result.Skipped++

			continue
		}

		eligible = append(eligible, rec)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	collections, err := lib.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	existing, err := p.existingByLink(ctx, lib)
	if err != nil {
		return nil, err
	}

	pending := make([]pendingItem, 0, len(eligible))
	for _, rec := range eligible {
		item, err := zotero.BuildItem(zotero.SourcePost{
			Title:        rec.Title,
			RealURL:      rec.RealURL,
			PermalinkURL: rec.PermalinkURL(),
			Author:       rec.AuthorName,
			Flair:        rec.LinkFlairText,
			Score:        rec.Score,
			CreatedUTC:   rec.CreatedUTC,
			Summary:      rec.Summary,
			PaperType:    rec.PaperType,
		}, rec.Metadata, collectionKey(collections, rec.LinkFlairText))
		if err != nil {
			msg := err.Error()
			rec.ZoteroSyncError = &msg
			result.Failed++

			continue
		}

		prev, update := existing[rec.PermalinkURL()]
		if update {
			item.Key = prev.Key
			item.Version = prev.Version
		}

		pending = append(pending, pendingItem{rec: rec, item: item, update: update})
	}

	return pending, nil
}

// existingByLink indexes the library's items by the thread permalink in
// their extra block. Items created outside the pipeline carry none and are
// ignored.
func (p *Pipeline) existingByLink(ctx context.Context, lib ReferenceLibrary) (map[string]zotero.ItemRecord, error) {
	items, err := lib.AllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	byLink := make(map[string]zotero.ItemRecord, len(items))
	for _, item := range items {
		extra, err := zotero.ParseExtra(item.Data.Extra)
		if err != nil || extra.RedditLink == "" {
			continue
		}

		byLink[extra.RedditLink] = item
	}

	return byLink, nil
}

func collectionKey(collections map[string]string, flair *string) string {
	if flair != nil {
		if key, ok := collections[*flair]; ok {
			return key
		}
	}

	return collections[fallbackCollection]
}

func applyWriteResult(batch []pendingItem, written *zotero.WriteResult, result *SyncResult) {
	for i := range batch {
		idx := strconv.Itoa(i)

		if _, ok := written.Success[idx]; ok {
			batch[i].rec.SyncedZotero = true
			batch[i].rec.ZoteroSyncError = nil
			if batch[i].update {
				result.Updated++
			} else {
				result.Created++
			}

			continue
		}

		if _, ok := written.Unchanged[idx]; ok {
			batch[i].rec.SyncedZotero = true
			batch[i].rec.ZoteroSyncError = nil
			result.Unchanged++

			continue
		}

		if failure, ok := written.Failed[idx]; ok {
			msg := failure.Message
			batch[i].rec.ZoteroSyncError = &msg
			result.Failed++
		}
	}
}

// Package pipeline drives record enrichment over the store: fetching new
// submissions, attaching comment trees, refreshing recent records,
// resolving URLs and summaries, and fetching bibliographic metadata. Every
// pass is idempotent per record; a remote failure on one record is logged
// and skipped so the rest of the pass continues.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/btraven00/lectio/internal/resolve"
	"github.com/btraven00/lectio/internal/store"
	"github.com/btraven00/lectio/pkg/crossref"
	"github.com/btraven00/lectio/pkg/doi"
	"github.com/btraven00/lectio/pkg/reddit"
)

// ForumClient is the slice of the forum API the pipeline needs.
type ForumClient interface {
	FetchNew(ctx context.Context, subreddit, untilID string) ([]reddit.Submission, error)
	FetchComments(ctx context.Context, id string) ([]reddit.Comment, error)
	FetchThread(ctx context.Context, id string) (*reddit.Submission, []reddit.Comment, error)
	FetchSelftext(ctx context.Context, link string) (string, error)
}

// MetadataClient resolves bibliographic metadata.
type MetadataClient interface {
	WorkByDOI(ctx context.Context, doi string) (*crossref.Work, error)
	WorksByTitle(ctx context.Context, title string) ([]crossref.Work, error)
}

// PageFetcher fetches publisher pages for meta-tag inspection. Optional.
type PageFetcher interface {
	GetHTML(ctx context.Context, url string) (string, error)
}

// Options tunes the enrichment passes.
type Options struct {
	// MinSimilarity a fuzzy title match must reach, defaults to
	// crossref.MinSimilarity.
	MinSimilarity float64

	// FetchPages enables the publisher-page fallback when a URL carries no
	// DOI.
	FetchPages bool

	// SaveEvery checkpoints the store after this many metadata lookups.
	SaveEvery int
}

// Pipeline applies enrichment passes to one store.
type Pipeline struct {
	forum ForumClient
	meta  MetadataClient
	pages PageFetcher
	store *store.Store
	opts  Options
	log   *slog.Logger
}

// New wires a pipeline. pages may be nil to disable the page fallback.
func New(forum ForumClient, meta MetadataClient, pages PageFetcher, st *store.Store, opts Options) *Pipeline {
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = crossref.MinSimilarity
	}
	if opts.SaveEvery <= 0 {
		opts.SaveEvery = 10
	}

	return &Pipeline{
		forum: forum,
		meta:  meta,
		pages: pages,
		store: st,
		opts:  opts,
		log:   slog.Default(),
	}
}

// FetchNew pulls submissions newer than the most recent stored one and
// prepends them, newest first. Returns how many records were added.
func (p *Pipeline) FetchNew(ctx context.Context, subreddit string) (int, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return 0, err
	}

	untilID := ""
	if len(records) > 0 {
		untilID = records[0].ID
	}

	subs, err := p.forum.FetchNew(ctx, subreddit, untilID)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, nil
	}

	fresh := make([]store.Record, 0, len(subs))
	for _, sub := range subs {
		fresh = append(fresh, store.Record{
			Submission: sub,
			IsResearch: resolve.IsResearch(sub.LinkFlairText),
		})
	}

	if err := p.store.Save(subreddit, append(fresh, records...)); err != nil {
		return 0, err
	}

	return len(fresh), nil
}

// FetchComments attaches comment trees to records that never had one.
// Returns how many trees were fetched.
func (p *Pipeline) FetchComments(ctx context.Context, subreddit string) (int, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return 0, err
	}

	fetched := 0
	for i := range records {
		if records[i].Comments != nil {
			continue
		}

		comments, err := p.forum.FetchComments(ctx, records[i].ID)
		if err != nil {
			p.log.Warn("skipping comment fetch", "id", records[i].ID, "error", err)

			continue
		}
		if comments == nil {
			comments = []reddit.Comment{}
		}

		records[i].Comments = comments
		fetched++
	}

	if fetched == 0 {
		return 0, nil
	}

	return fetched, p.store.Save(subreddit, records)
}

// Update refetches records created within the window and replaces their
// submission fields and comment trees. Any change clears the sync flags.
// With backfillFlair it also refetches older records that still have no
// flair. Returns how many records changed.
func (p *Pipeline) Update(ctx context.Context, subreddit string, window time.Duration, backfillFlair bool) (int, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range records {
		created, err := records[i].CreatedTime()
		if err != nil {
			p.log.Warn("unreadable creation time", "id", records[i].ID, "created_utc", records[i].CreatedUTC)

			continue
		}
		if time.Since(created) >= window {
			continue
		}

		if p.refreshRecord(ctx, &records[i]) {
			changed++
		}
	}

	if backfillFlair {
		for i := range records {
			if records[i].LinkFlairText != nil {
				continue
			}

			if p.refreshRecord(ctx, &records[i]) {
				changed++
			}
		}
	}

	if changed == 0 {
		return 0, nil
	}

	return changed, p.store.Save(subreddit, records)
}

// refreshRecord refetches one thread and swaps in the result. Reports
// whether anything differed.
func (p *Pipeline) refreshRecord(ctx context.Context, rec *store.Record) bool {
	sub, comments, err := p.forum.FetchThread(ctx, rec.ID)
	if err != nil {
		p.log.Warn("skipping refresh", "id", rec.ID, "error", err)

		return false
	}
	if comments == nil {
		comments = []reddit.Comment{}
	}

	if reflect.DeepEqual(rec.Submission, *sub) && reflect.DeepEqual(rec.Comments, comments) {
		return false
	}

	rec.Submission = *sub
	rec.Comments = comments
	rec.IsResearch = resolve.IsResearch(sub.LinkFlairText)
	rec.MarkDirty()

	return true
}

// Process recomputes the derived fields of every research record. The
// resolution is deterministic, so it runs unconditionally and only dirties
// records whose outcome actually changed. Returns how many records were
// resolved.
func (p *Pipeline) Process(ctx context.Context, subreddit string) (int, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range records {
		rec := &records[i]

		rec.IsResearch = resolve.IsResearch(rec.LinkFlairText)
		if !rec.IsResearch {
			continue
		}

		paperType := string(resolve.PaperTypeFromTitle(rec.Title))

		res := resolve.Resolve(ctx, p.forum, resolve.Input{
			Title:             rec.Title,
			Selftext:          rec.Selftext,
			URL:               rec.URL,
			Permalink:         rec.Permalink,
			Comments:          rec.Comments,
			CrosspostSelftext: rec.CrosspostSelftext,
		})

		if !equalStringPtr(rec.RealURL, res.RealURL) || rec.Summary != res.Summary || rec.PaperType != paperType {
			rec.MarkDirty()
		}

		rec.PaperType = paperType
		rec.RealURL = res.RealURL
		rec.Summary = res.Summary
		if res.CrosspostSelftext != nil {
			rec.CrosspostSelftext = res.CrosspostSelftext
		}

		processed++
	}

	if processed == 0 {
		return 0, nil
	}

	return processed, p.store.Save(subreddit, records)
}

// errNoQuery marks a record that offers nothing to resolve metadata from.
// That breaks the pipeline's own contract, so it aborts the pass instead of
// being flagged away.
var errNoQuery = errors.New("metadata resolution needs a title or a URL")

// Metadata resolves bibliographic metadata for research records that have
// not been tried yet. Failures are remembered so reruns skip them;
// retryFailed clears the failure flags first. Progress is checkpointed
// every few lookups. Returns how many lookups succeeded and failed.
func (p *Pipeline) Metadata(ctx context.Context, subreddit string, retryFailed bool) (int, int, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return 0, 0, err
	}

	if retryFailed {
		for i := range records {
			records[i].MetadataFailed = false
		}
	}

	fetched, failed, sinceSave := 0, 0, 0
	for i := range records {
		rec := &records[i]
		if !rec.MetadataPending() {
			continue
		}

		work, err := p.resolveMetadata(ctx, rec.Title, rec.RealURL)
		if err != nil {
			if saveErr := p.store.Save(subreddit, records); saveErr != nil {
				p.log.Error("failed to checkpoint records", "error", saveErr)
			}

			return fetched, failed, fmt.Errorf("failed to resolve metadata for %s: %w", rec.ID, err)
		}

		if work == nil {
			rec.MetadataFailed = true
			failed++
		} else {
			rec.Metadata = work
			rec.MetadataFailed = false
			rec.SyncedZotero = false
			fetched++
		}

		sinceSave++
		if sinceSave >= p.opts.SaveEvery {
			if err := p.store.Save(subreddit, records); err != nil {
				return fetched, failed, err
			}
			sinceSave = 0
		}
	}

	if fetched+failed == 0 && !retryFailed {
		return 0, 0, nil
	}

	return fetched, failed, p.store.Save(subreddit, records)
}

// resolveMetadata looks a work up by DOI when one can be extracted from the
// URL (or, failing that, from the page behind it), and falls back to a
// fuzzy title search. A nil result with nil error means "tried, found
// nothing"; remote failures degrade to that so one bad publisher cannot
// stall the pass.
func (p *Pipeline) resolveMetadata(ctx context.Context, title string, realURL *string) (*crossref.Work, error) {
	if title == "" && (realURL == nil || *realURL == "") {
		return nil, errNoQuery
	}

	var id string
	if realURL != nil && *realURL != "" {
		id = doi.FromURL(*realURL)

		if id == "" && p.opts.FetchPages && p.pages != nil {
			page, err := p.pages.GetHTML(ctx, *realURL)
			if err != nil {
				p.log.Debug("page fetch failed", "url", *realURL, "error", err)
			} else {
				id = doi.FromHTML(page)
			}
		}
	}

	if id != "" {
		work, err := p.meta.WorkByDOI(ctx, id)
		if err == nil {
			return work, nil
		}
		p.log.Warn("doi lookup failed, falling back to title search", "doi", id, "error", err)
	}

	if title == "" {
		return nil, nil
	}

	works, err := p.meta.WorksByTitle(ctx, title)
	if err != nil {
		p.log.Warn("title search failed", "title", title, "error", err)

		return nil, nil
	}

	return crossref.ClosestMatch(title, works, p.opts.MinSimilarity), nil
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

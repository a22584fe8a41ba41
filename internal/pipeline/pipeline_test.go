package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/btraven00/lectio/internal/store"
	"github.com/btraven00/lectio/pkg/crossref"
	"github.com/btraven00/lectio/pkg/reddit"
)

type fakeForum struct {
	newSubs    []reddit.Submission
	gotUntilID string
	comments   map[string][]reddit.Comment
	commentErr map[string]error
	threads    map[string]*reddit.Submission
	threadComs map[string][]reddit.Comment
	selftexts  map[string]string
}

func (f *fakeForum) FetchNew(_ context.Context, _, untilID string) ([]reddit.Submission, error) {
	f.gotUntilID = untilID

	return f.newSubs, nil
}

func (f *fakeForum) FetchComments(_ context.Context, id string) ([]reddit.Comment, error) {
	if err := f.commentErr[id]; err != nil {
		return nil, err
	}

	return f.comments[id], nil
}

func (f *fakeForum) FetchThread(_ context.Context, id string) (*reddit.Submission, []reddit.Comment, error) {
	sub, ok := f.threads[id]
	if !ok {
		return nil, nil, errors.New("no such thread")
	}

	return sub, f.threadComs[id], nil
}

func (f *fakeForum) FetchSelftext(_ context.Context, link string) (string, error) {
	text, ok := f.selftexts[link]
	if !ok {
		return "", errors.New("thread not found")
	}

	return text, nil
}

type fakeMeta struct {
	byDOI      map[string]*crossref.Work
	byTitle    map[string][]crossref.Work
	titleErr   error
	doiCalls   int
	titleCalls int
}

func (f *fakeMeta) WorkByDOI(_ context.Context, doi string) (*crossref.Work, error) {
	f.doiCalls++
	work, ok := f.byDOI[doi]
	if !ok {
		return nil, errors.New("Not Found")
	}

	return work, nil
}

func (f *fakeMeta) WorksByTitle(_ context.Context, title string) ([]crossref.Work, error) {
	f.titleCalls++
	if f.titleErr != nil {
		return nil, f.titleErr
	}

	return f.byTitle[title], nil
}

type fakePages struct {
	pages map[string]string
}

func (f *fakePages) GetHTML(_ context.Context, url string) (string, error) {
	page, ok := f.pages[url]
	if !ok {
		return "", errors.New("blocked")
	}

	return page, nil
}

func strPtr(s string) *string { return &s }

func submission(id, title string) reddit.Submission {
	return reddit.Submission{
		ID:         id,
		Title:      title,
		Permalink:  "/r/test/comments/" + id + "/t/",
		URL:        "https://example.com/" + id,
		CreatedUTC: time.Now().Add(-time.Hour).Format(reddit.TimeLayout),
		Subreddit:  "test",
	}
}

func newPipeline(t *testing.T, forum ForumClient, meta MetadataClient, pages PageFetcher) (*Pipeline, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())

	return New(forum, meta, pages, st, Options{}), st
}

func TestFetchNewOnEmptyStore(t *testing.T) {
	flair := "Poll"
	forum := &fakeForum{newSubs: []reddit.Submission{
		submission("b", "Newer"),
		func() reddit.Submission {
			s := submission("a", "Older, not research")
			s.LinkFlairText = &flair
			return s
		}(),
	}}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	added, err := p.FetchNew(context.Background(), "test")
	if err != nil {
		t.Fatalf("FetchNew() error: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	if forum.gotUntilID != "" {
		t.Errorf("untilID = %q, want empty on first run", forum.gotUntilID)
	}

	records, err := st.Load("test")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if records[0].ID != "b" || records[1].ID != "a" {
		t.Errorf("order = %q, %q, want newest first", records[0].ID, records[1].ID)
	}
	if !records[0].IsResearch {
		t.Error("unflaired record should count as research")
	}
	if records[1].IsResearch {
		t.Error("Poll-flaired record should not count as research")
	}
}

func TestFetchNewStopsAtStoredHead(t *testing.T) {
	forum := &fakeForum{newSubs: []reddit.Submission{submission("c", "Newest")}}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	if err := st.Save("test", []store.Record{{Submission: submission("b", "Stored head")}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	added, err := p.FetchNew(context.Background(), "test")
	if err != nil {
		t.Fatalf("FetchNew() error: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if forum.gotUntilID != "b" {
		t.Errorf("untilID = %q, want the stored head id", forum.gotUntilID)
	}

	records, _ := st.Load("test")
	if len(records) != 2 || records[0].ID != "c" || records[1].ID != "b" {
		t.Errorf("store after fetch: %+v", records)
	}
}

func TestFetchComments(t *testing.T) {
	forum := &fakeForum{
		comments: map[string][]reddit.Comment{
			"a": {{ID: "c1", Body: "hello", IsSubmitter: true}},
			"c": nil,
		},
		commentErr: map[string]error{"b": errors.New("rate limited")},
	}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	records := []store.Record{
		{Submission: submission("a", "A")},
		{Submission: submission("b", "B")},
		{Submission: submission("c", "C")},
		{Submission: submission("d", "D"), Comments: []reddit.Comment{}},
	}
	if err := st.Save("test", records); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	fetched, err := p.FetchComments(context.Background(), "test")
	if err != nil {
		t.Fatalf("FetchComments() error: %v", err)
	}
	if fetched != 2 {
		t.Fatalf("fetched = %d, want 2 (a and c; b failed, d already had a tree)", fetched)
	}

	loaded, _ := st.Load("test")
	if len(loaded[0].Comments) != 1 || loaded[0].Comments[0].ID != "c1" {
		t.Errorf("comments for a = %+v", loaded[0].Comments)
	}
	if loaded[1].Comments != nil {
		t.Errorf("failed fetch should leave comments unfetched, got %+v", loaded[1].Comments)
	}
	if loaded[2].Comments == nil {
		t.Error("empty tree should persist as fetched")
	}
}

func TestUpdateRefreshesRecentRecords(t *testing.T) {
	recent := submission("a", "Original title")
	old := submission("b", "Old record")
	old.CreatedUTC = time.Now().Add(-400 * time.Hour).Format(reddit.TimeLayout)

	refreshed := recent
	refreshed.Title = "Corrected title"
	refreshed.Score = 99

	forum := &fakeForum{
		threads:    map[string]*reddit.Submission{"a": &refreshed},
		threadComs: map[string][]reddit.Comment{"a": {{ID: "c1", Body: "new comment"}}},
	}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	records := []store.Record{
		{Submission: recent, IsResearch: true, SyncedSheet: true, SyncedZotero: true, Comments: []reddit.Comment{}},
		{Submission: old, IsResearch: true, SyncedSheet: true, SyncedZotero: true},
	}
	if err := st.Save("test", records); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	changed, err := p.Update(context.Background(), "test", 168*time.Hour, false)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}

	loaded, _ := st.Load("test")
	if loaded[0].Title != "Corrected title" || loaded[0].Score != 99 {
		t.Errorf("record not refreshed: %+v", loaded[0].Submission)
	}
	if len(loaded[0].Comments) != 1 {
		t.Errorf("comments not refreshed: %+v", loaded[0].Comments)
	}
	if loaded[0].SyncedSheet || loaded[0].SyncedZotero {
		t.Error("change should clear the sync flags")
	}
	if loaded[1].Title != "Old record" {
		t.Error("record outside the window should be untouched")
	}
	if !loaded[1].SyncedSheet {
		t.Error("untouched record should keep its sync flags")
	}
}

func TestUpdateNoChangeKeepsFlags(t *testing.T) {
	rec := submission("a", "Stable")

	same := rec
	forum := &fakeForum{
		threads:    map[string]*reddit.Submission{"a": &same},
		threadComs: map[string][]reddit.Comment{"a": {}},
	}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	if err := st.Save("test", []store.Record{
		{Submission: rec, IsResearch: true, SyncedSheet: true, SyncedZotero: true, Comments: []reddit.Comment{}},
	}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	changed, err := p.Update(context.Background(), "test", 168*time.Hour, false)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if changed != 0 {
		t.Fatalf("changed = %d, want 0", changed)
	}

	loaded, _ := st.Load("test")
	if !loaded[0].SyncedSheet || !loaded[0].SyncedZotero {
		t.Error("unchanged record lost its sync flags")
	}
}

func TestUpdateBackfillsFlair(t *testing.T) {
	old := submission("a", "Old unflaired")
	old.CreatedUTC = time.Now().Add(-400 * time.Hour).Format(reddit.TimeLayout)

	flair := "Psychology"
	refreshed := old
	refreshed.LinkFlairText = &flair

	forum := &fakeForum{
		threads:    map[string]*reddit.Submission{"a": &refreshed},
		threadComs: map[string][]reddit.Comment{"a": {}},
	}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	if err := st.Save("test", []store.Record{
		{Submission: old, IsResearch: true, Comments: []reddit.Comment{}},
	}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	changed, err := p.Update(context.Background(), "test", 168*time.Hour, true)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}

	loaded, _ := st.Load("test")
	if loaded[0].LinkFlairText == nil || *loaded[0].LinkFlairText != "Psychology" {
		t.Errorf("flair not backfilled: %v", loaded[0].LinkFlairText)
	}
}

func TestProcessResolvesResearchRecords(t *testing.T) {
	p, st := newPipeline(t, &fakeForum{}, &fakeMeta{}, nil)

	direct := submission("a", "Direct link")
	poll := submission("b", "Community poll")
	pollFlair := "Poll"
	poll.LinkFlairText = &pollFlair

	records := []store.Record{
		{
			Submission: direct,
			IsResearch: true,
			Comments: []reddit.Comment{
				{Body: "Summary by the author.", IsSubmitter: true},
			},
		},
		{Submission: poll},
	}
	if err := st.Save("test", records); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	processed, err := p.Process(context.Background(), "test")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	loaded, _ := st.Load("test")
	if loaded[0].RealURL == nil || *loaded[0].RealURL != "https://example.com/a" {
		t.Errorf("RealURL = %v", loaded[0].RealURL)
	}
	if loaded[0].Summary != "Summary by the author." {
		t.Errorf("Summary = %q", loaded[0].Summary)
	}
	if loaded[0].PaperType != "paper" {
		t.Errorf("PaperType = %q", loaded[0].PaperType)
	}
	if loaded[1].RealURL != nil || loaded[1].Summary != "" {
		t.Errorf("non-research record got derived fields: %+v", loaded[1])
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	p, st := newPipeline(t, &fakeForum{}, &fakeMeta{}, nil)

	rec := store.Record{
		Submission: submission("a", "Direct link"),
		IsResearch: true,
		Comments:   []reddit.Comment{{Body: "summary", IsSubmitter: true}},
	}
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := p.Process(context.Background(), "test"); err != nil {
		t.Fatalf("first Process() error: %v", err)
	}

	// Mark synced, reprocess: an unchanged outcome must not dirty the
	// record again.
	loaded, _ := st.Load("test")
	loaded[0].SyncedSheet = true
	loaded[0].SyncedZotero = true
	if err := st.Save("test", loaded); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := p.Process(context.Background(), "test"); err != nil {
		t.Fatalf("second Process() error: %v", err)
	}

	again, _ := st.Load("test")
	if !again[0].SyncedSheet || !again[0].SyncedZotero {
		t.Error("idempotent reprocess cleared the sync flags")
	}
}

func TestProcessCachesCrosspostBody(t *testing.T) {
	body := "Original: [paper](https://example.com/xpost-paper)"
	forum := &fakeForum{selftexts: map[string]string{
		"https://www.reddit.com/r/science/comments/xyz/orig/": body,
	}}
	p, st := newPipeline(t, forum, &fakeMeta{}, nil)

	crosspost := submission("a", "Crossposted")
	crosspost.URL = "/r/science/comments/xyz/orig/"

	if err := st.Save("test", []store.Record{
		{Submission: crosspost, IsResearch: true, Comments: []reddit.Comment{}},
	}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := p.Process(context.Background(), "test"); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	loaded, _ := st.Load("test")
	if loaded[0].RealURL == nil || *loaded[0].RealURL != "https://example.com/xpost-paper" {
		t.Errorf("RealURL = %v", loaded[0].RealURL)
	}
	if loaded[0].CrosspostSelftext == nil || *loaded[0].CrosspostSelftext != body {
		t.Errorf("crosspost body not cached: %v", loaded[0].CrosspostSelftext)
	}

	// The cache survives a later pass where the origin thread is gone.
	forum.selftexts = nil
	if _, err := p.Process(context.Background(), "test"); err != nil {
		t.Fatalf("second Process() error: %v", err)
	}
	again, _ := st.Load("test")
	if again[0].RealURL == nil || *again[0].RealURL != "https://example.com/xpost-paper" {
		t.Errorf("cached resolution lost: %v", again[0].RealURL)
	}
}

func TestMetadataByDOI(t *testing.T) {
	work := &crossref.Work{DOI: "10.1234/abcd", Title: []string{"A Paper"}}
	meta := &fakeMeta{byDOI: map[string]*crossref.Work{"10.1234/abcd": work}}
	p, st := newPipeline(t, &fakeForum{}, meta, nil)

	rec := store.Record{Submission: submission("a", "A Paper"), IsResearch: true}
	rec.RealURL = strPtr("https://doi.org/10.1234/abcd")
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	fetched, failed, err := p.Metadata(context.Background(), "test", false)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}
	if fetched != 1 || failed != 0 {
		t.Fatalf("fetched/failed = %d/%d, want 1/0", fetched, failed)
	}
	if meta.titleCalls != 0 {
		t.Errorf("title search ran %d times despite a DOI hit", meta.titleCalls)
	}

	loaded, _ := st.Load("test")
	if loaded[0].Metadata == nil || loaded[0].Metadata.DOI != "10.1234/abcd" {
		t.Errorf("metadata not stored: %+v", loaded[0].Metadata)
	}
	if loaded[0].SyncedZotero {
		t.Error("new metadata should leave the record unsynced")
	}
}

func TestMetadataTitleFallback(t *testing.T) {
	title := "Reading Habits of Graduate Students"
	meta := &fakeMeta{byTitle: map[string][]crossref.Work{
		title: {
			{DOI: "10.1/far", Title: []string{"Something Else Entirely"}},
			{DOI: "10.1/close", Title: []string{title}},
		},
	}}
	p, st := newPipeline(t, &fakeForum{}, meta, nil)

	rec := store.Record{Submission: submission("a", title), IsResearch: true}
	rec.RealURL = strPtr("https://example.com/no-doi-here")
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	fetched, failed, err := p.Metadata(context.Background(), "test", false)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}
	if fetched != 1 || failed != 0 {
		t.Fatalf("fetched/failed = %d/%d, want 1/0", fetched, failed)
	}

	loaded, _ := st.Load("test")
	if loaded[0].Metadata == nil || loaded[0].Metadata.DOI != "10.1/close" {
		t.Errorf("fuzzy match picked %+v", loaded[0].Metadata)
	}
}

func TestMetadataFailureIsSticky(t *testing.T) {
	meta := &fakeMeta{}
	p, st := newPipeline(t, &fakeForum{}, meta, nil)

	rec := store.Record{Submission: submission("a", "Nothing Matches This"), IsResearch: true}
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, failed, err := p.Metadata(context.Background(), "test", false); err != nil || failed != 1 {
		t.Fatalf("first pass: failed=%d err=%v, want 1/nil", failed, err)
	}
	if meta.titleCalls != 1 {
		t.Fatalf("titleCalls = %d, want 1", meta.titleCalls)
	}

	// Second pass must skip the remembered failure.
	if _, failed, err := p.Metadata(context.Background(), "test", false); err != nil || failed != 0 {
		t.Fatalf("second pass: failed=%d err=%v, want 0/nil", failed, err)
	}
	if meta.titleCalls != 1 {
		t.Errorf("titleCalls = %d after rerun, want still 1", meta.titleCalls)
	}

	// retryFailed clears the flag and tries again.
	if _, failed, err := p.Metadata(context.Background(), "test", true); err != nil || failed != 1 {
		t.Fatalf("retry pass: failed=%d err=%v, want 1/nil", failed, err)
	}
	if meta.titleCalls != 2 {
		t.Errorf("titleCalls = %d after retry, want 2", meta.titleCalls)
	}
}

func TestMetadataRemoteErrorDegrades(t *testing.T) {
	meta := &fakeMeta{titleErr: errors.New("service unavailable")}
	p, st := newPipeline(t, &fakeForum{}, meta, nil)

	rec := store.Record{Submission: submission("a", "Some Title"), IsResearch: true}
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	fetched, failed, err := p.Metadata(context.Background(), "test", false)
	if err != nil {
		t.Fatalf("remote failure should not abort the pass: %v", err)
	}
	if fetched != 0 || failed != 1 {
		t.Errorf("fetched/failed = %d/%d, want 0/1", fetched, failed)
	}
}

func TestMetadataContractViolationAborts(t *testing.T) {
	p, st := newPipeline(t, &fakeForum{}, &fakeMeta{}, nil)

	rec := store.Record{Submission: submission("a", ""), IsResearch: true}
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, _, err := p.Metadata(context.Background(), "test", false); err == nil {
		t.Fatal("expected error for a record with neither title nor URL")
	}
}

func TestMetadataPageFallback(t *testing.T) {
	work := &crossref.Work{DOI: "10.5678/meta", Title: []string{"Hidden Behind A Page"}}
	meta := &fakeMeta{byDOI: map[string]*crossref.Work{"10.5678/meta": work}}
	pages := &fakePages{pages: map[string]string{
		"https://publisher.example/article": `<html><head><meta name="citation_doi" content="10.5678/meta"></head></html>`,
	}}
	st := store.New(t.TempDir())
	p := New(&fakeForum{}, meta, pages, st, Options{FetchPages: true})

	rec := store.Record{Submission: submission("a", "Hidden Behind A Page"), IsResearch: true}
	rec.RealURL = strPtr("https://publisher.example/article")
	if err := st.Save("test", []store.Record{rec}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	fetched, _, err := p.Metadata(context.Background(), "test", false)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}
	if fetched != 1 {
		t.Fatalf("fetched = %d, want 1", fetched)
	}
	if meta.doiCalls != 1 {
		t.Errorf("doiCalls = %d, want 1", meta.doiCalls)
	}
}

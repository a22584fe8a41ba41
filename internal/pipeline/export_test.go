package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btraven00/lectio/internal/store"
)

func TestExportFiles(t *testing.T) {
	p, st := newPipeline(t, &fakeForum{}, &fakeMeta{}, nil)

	records := []store.Record{
		{Submission: submission("b", "Fresh paper"), IsResearch: true},
		{Submission: submission("a", "Old paper"), IsResearch: true, SyncedSheet: true},
	}
	if err := st.Save("Test", records); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	res, err := p.ExportFiles("Test", dir, false)
	if err != nil {
		t.Fatalf("ExportFiles() error: %v", err)
	}

	if res.Skipped {
		t.Fatal("export with an unsynced record should not be skipped")
	}
	if res.Records != 2 {
		t.Errorf("Records = %d, want 2", res.Records)
	}
	if res.MarkdownPath != filepath.Join(dir, "test.md") {
		t.Errorf("MarkdownPath = %q", res.MarkdownPath)
	}

	md, err := os.ReadFile(res.MarkdownPath)
	if err != nil {
		t.Fatalf("markdown file not written: %v", err)
	}
	if !strings.Contains(string(md), "Fresh paper") || !strings.Contains(string(md), "Old paper") {
		t.Errorf("markdown missing records:\n%s", md)
	}

	csvData, err := os.ReadFile(res.CSVPath)
	if err != nil {
		t.Fatalf("csv file not written: %v", err)
	}
	if !strings.HasPrefix(string(csvData), "title,url,permalink") {
		t.Errorf("csv header wrong:\n%s", csvData)
	}

	saved, err := st.Load("Test")
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range saved {
		if !rec.SyncedSheet {
			t.Errorf("record %s not marked as exported", rec.ID)
		}
	}
}

func TestExportFilesSkipsWhenSynced(t *testing.T) {
	p, st := newPipeline(t, &fakeForum{}, &fakeMeta{}, nil)

	records := []store.Record{
		{Submission: submission("a", "Paper"), IsResearch: true, SyncedSheet: true},
	}
	if err := st.Save("Test", records); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	res, err := p.ExportFiles("Test", dir, false)
	if err != nil {
		t.Fatalf("ExportFiles() error: %v", err)
	}
	if !res.Skipped {
		t.Error("export with every record synced should be skipped")
	}
	if _, err := os.Stat(filepath.Join(dir, "test.md")); !os.IsNotExist(err) {
		t.Error("skipped export must not write files")
	}

	res, err = p.ExportFiles("Test", dir, true)
	if err != nil {
		t.Fatalf("ExportFiles(force) error: %v", err)
	}
	if res.Skipped {
		t.Error("force should override the synced check")
	}
	if _, err := os.Stat(res.CSVPath); err != nil {
		t.Errorf("forced export did not write files: %v", err)
	}
}

func TestExportFilesRemovalTriggersRewrite(t *testing.T) {
	p, st := newPipeline(t, &fakeForum{}, &fakeMeta{}, nil)

	gone := "deleted"
	removed := store.Record{Submission: submission("a", "Retracted"), IsResearch: true}
	removed.RemovedByCategory = &gone

	records := []store.Record{
		{Submission: submission("b", "Kept"), IsResearch: true, SyncedSheet: true},
		removed,
	}
	if err := st.Save("Test", records); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	res, err := p.ExportFiles("Test", dir, false)
	if err != nil {
		t.Fatalf("ExportFiles() error: %v", err)
	}
	if res.Skipped {
		t.Fatal("unsynced removed record should trigger a rewrite")
	}
	if res.Records != 1 {
		t.Errorf("Records = %d, want 1 (removed record excluded)", res.Records)
	}

	md, err := os.ReadFile(res.MarkdownPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(md), "Retracted") {
		t.Error("removed record must not appear in the export")
	}
}

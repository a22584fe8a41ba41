package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btraven00/lectio/internal/export"
	"github.com/btraven00/lectio/internal/store"
)

// ExportResult reports what one export pass produced.
type ExportResult struct {
	MarkdownPath string `json:"markdown_path,omitempty"`
	CSVPath      string `json:"csv_path,omitempty"`
	Records      int    `json:"records"`
	Skipped      bool   `json:"skipped"`
}

// ExportFiles renders one subreddit's research records into a markdown
// table and a CSV snapshot under dir. When no record changed since the
// last export the files are left alone unless force is set; after a write
// every record is marked as reflected in the sheet.
func (p *Pipeline) ExportFiles(subreddit, dir string, force bool) (*ExportResult, error) {
	records, err := p.store.Load(subreddit)
	if err != nil {
		return nil, err
	}

	exportable := 0
	pending := force
	for i := range records {
		rec := &records[i]
		if rec.IsResearch && !rec.Removed() {
			exportable++
		}
		if !rec.SyncedSheet {
			pending = true
		}
	}

	if !pending {
		p.log.Info("sheet snapshot up to date", "subreddit", subreddit)

		return &ExportResult{Records: exportable, Skipped: true}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}

	slug := strings.ToLower(subreddit)
	mdPath := filepath.Join(dir, slug+".md")
	csvPath := filepath.Join(dir, slug+".csv")

	if err := writeMarkdown(mdPath, records); err != nil {
		return nil, err
	}
	if err := writeCSV(csvPath, records); err != nil {
		return nil, err
	}

	for i := range records {
		records[i].SyncedSheet = true
	}
	if err := p.store.Save(subreddit, records); err != nil {
		return nil, err
	}

	p.log.Info("exported", "subreddit", subreddit, "records", exportable,
		"markdown", mdPath, "csv", csvPath)

	return &ExportResult{
		MarkdownPath: mdPath,
		CSVPath:      csvPath,
		Records:      exportable,
	}, nil
}

func writeMarkdown(path string, records []store.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	export.Markdown(f, records)

	return f.Close()
}

func writeCSV(path string, records []store.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := export.CSV(f, records); err != nil {
		return err
	}

	return f.Close()
}

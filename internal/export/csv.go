package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/btraven00/lectio/internal/store"
)

// csvHeader matches the spreadsheet column layout the list has always been
// published with.
var csvHeader = []string{
	"title",
	"url",
	"permalink",
	"link_flair_text",
	"author_name",
	"created_utc",
	"_summary",
}

// CSV writes research records in the spreadsheet layout, newest first.
// Missing values render as the null placeholder; empty summaries stay
// empty.
func CSV(w io.Writer, records []store.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		if !rec.IsResearch || rec.Removed() {
			continue
		}

		row := []string{
			rec.Title,
			rec.URL,
			rec.Permalink,
			orDash(rec.LinkFlairText),
			orDash(rec.AuthorName),
			rec.CreatedUTC,
			rec.Summary,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", rec.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

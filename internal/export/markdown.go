// Package export renders curated records into publishable artifacts: a
// GitHub-flavored Markdown table, a CSV snapshot in the spreadsheet layout,
// and a report of records still lacking metadata.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/btraven00/lectio/internal/store"
)

// nullCell renders missing values in exports.
const nullCell = "—"

// Markdown writes research records as a GitHub-flavored table, newest
// first. The title links to the resolved URL when one was recovered and to
// the thread otherwise.
func Markdown(w io.Writer, records []store.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Title", "Flair", "Author", "Posted", "Thread"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for i := range records {
		rec := &records[i]
		if !rec.IsResearch || rec.Removed() {
			continue
		}

		target := rec.PermalinkURL()
		if rec.RealURL != nil && *rec.RealURL != "" {
			target = *rec.RealURL
		}

		table.Append([]string{
			fmt.Sprintf("[%s](%s)", mdCell(rec.Title), target),
			mdCell(orDash(rec.LinkFlairText)),
			mdCell(orDash(rec.AuthorName)),
			rec.CreatedUTC,
			fmt.Sprintf("[thread](%s)", rec.PermalinkURL()),
		})
	}

	table.Render()
}

// mdCell makes a value safe inside a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")

	return s
}

func orDash(s *string) string {
	if s == nil {
		return nullCell
	}

	return *s
}

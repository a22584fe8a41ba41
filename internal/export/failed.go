package export

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/btraven00/lectio/internal/store"
)

// FailedReport lists research records that still have no bibliographic
// metadata, grouped by the domain of their resolved URL so stubborn
// publishers stand out, and closes with the records whose library push was
// rejected.
func FailedReport(w io.Writer, records []store.Record) {
	var noURL []*store.Record
	byDomain := make(map[string][]*store.Record)

	for i := range records {
		rec := &records[i]
		if !rec.IsResearch || rec.Metadata != nil {
			continue
		}

		domain := domainOf(rec.RealURL)
		if domain == "" {
			noURL = append(noURL, rec)

			continue
		}

		byDomain[domain] = append(byDomain[domain], rec)
	}

	total := len(noURL)
	for _, recs := range byDomain {
		total += len(recs)
	}

	fmt.Fprintf(w, "Failed to fetch metadata for %d submissions.\n\n", total)

	if total > 0 {
		renderDomainTable(w, noURL, byDomain)
		fmt.Fprintln(w)

		if len(noURL) > 0 {
			fmt.Fprintf(w, "%d submissions with no URL:\n", len(noURL))
			for _, rec := range noURL {
				fmt.Fprintf(w, "  - %s\n", rec.PermalinkURL())
			}
			fmt.Fprintln(w)
		}

		for _, domain := range sortedDomains(byDomain) {
			recs := byDomain[domain]
			fmt.Fprintf(w, "%d submissions from %s:\n", len(recs), domain)
			for _, rec := range recs {
				fmt.Fprintf(w, "  - url=%s, permalink=%s\n", *rec.RealURL, rec.PermalinkURL())
			}
			fmt.Fprintln(w)
		}
	}

	var rejected []*store.Record
	for i := range records {
		if records[i].ZoteroSyncError != nil {
			rejected = append(rejected, &records[i])
		}
	}
	if len(rejected) > 0 {
		fmt.Fprintf(w, "%d submissions failed to sync:\n", len(rejected))
		for _, rec := range rejected {
			fmt.Fprintf(w, "  - %s: %s\n", rec.PermalinkURL(), *rec.ZoteroSyncError)
		}
	}
}

func renderDomainTable(w io.Writer, noURL []*store.Record, byDomain map[string][]*store.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Domain", "Submissions"})

	if len(noURL) > 0 {
		table.Append([]string{"(no URL)", strconv.Itoa(len(noURL))})
	}
	for _, domain := range sortedDomains(byDomain) {
		table.Append([]string{domain, strconv.Itoa(len(byDomain[domain]))})
	}

	table.Render()
}

// sortedDomains orders domains by affected submissions, most first, ties
// alphabetical.
func sortedDomains(byDomain map[string][]*store.Record) []string {
	domains := make([]string, 0, len(byDomain))
	for domain := range byDomain {
		domains = append(domains, domain)
	}

	sort.Slice(domains, func(i, j int) bool {
		if len(byDomain[domains[i]]) != len(byDomain[domains[j]]) {
			return len(byDomain[domains[i]]) > len(byDomain[domains[j]])
		}

		return domains[i] < domains[j]
	})

	return domains
}

func domainOf(rawURL *string) string {
	if rawURL == nil || *rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(*rawURL)
	if err != nil {
		return ""
	}

	return parsed.Hostname()
}

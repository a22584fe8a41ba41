// Package doi extracts Digital Object Identifiers from URLs, publisher page
// metadata, and free text such as extracted PDF content.
package doi

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// suffixPattern matches the registrant/suffix shape Crossref recommends for
// modern DOIs.
const suffixPattern = `10\.\d{4,9}/[-._;()/:\w]+`

var (
	// urlPattern requires the DOI to sit at the end of a URL path,
	// optionally followed by a slash or a query string.
	urlPattern = regexp.MustCompile(`^https?://\S+/(` + suffixPattern + `)(/|\?.*)?$`)

	// textPattern finds a bare DOI anywhere in free text.
	textPattern = regexp.MustCompile(`\b` + suffixPattern)

	// arxivPattern matches the post-2007 arXiv identifier scheme, with or
	// without the arXiv: prefix PDFs usually carry.
	arxivPattern = regexp.MustCompile(`(?i)\barxiv:\s*(\d{4}\.\d{4,5}(?:v\d+)?)`)
)

// FromURL extracts the DOI embedded in a URL path, e.g.
// https://doi.org/10.1177/0123456789 or
// https://link.springer.com/article/10.1007/s11757-021-00698-1. Returns ""
// when the URL carries no DOI-shaped segment. Percent-escapes are decoded
// first so escaped slashes still match.
func FromURL(rawURL string) string {
	unescaped, err := url.PathUnescape(rawURL)
	if err != nil {
		unescaped = rawURL
	}

	m := urlPattern.FindStringSubmatch(unescaped)
	if m == nil {
		return ""
	}

	return strings.TrimRight(m[1], "/")
}

// FromHTML reads the DOI from a page's citation_doi meta tag, which
// publishers expose under either the name or the property attribute.
func FromHTML(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}

	for _, attr := range []string{"name", "property"} {
		sel := doc.Find(fmt.Sprintf(`meta[%s="citation_doi"]`, attr))
		if content, ok := sel.First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}

	return ""
}

// FromText returns the first DOI-shaped identifier in free text, trimming
// the trailing punctuation PDF extraction tends to glue on. A closing
// parenthesis stays only when the identifier itself opened one.
func FromText(text string) string {
	m := textPattern.FindString(text)

	for {
		trimmed := strings.TrimRight(m, ".,;:")
		if strings.HasSuffix(trimmed, ")") && !strings.Contains(trimmed, "(") {
			trimmed = strings.TrimSuffix(trimmed, ")")
		}
		if trimmed == m {
			return m
		}
		m = trimmed
	}
}

// ArxivFromText returns the first arXiv identifier in free text, without
// the prefix, or "".
func ArxivFromText(text string) string {
	m := arxivPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return m[1]
}

package resolve

import (
	"fmt"
	"regexp"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https?://\S+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+`)
)

// Link is a Markdown link, [Label](URL).
type Link struct {
	Label string
	URL   string
}

// String reconstructs the link's Markdown form.
func (l Link) String() string {
	return fmt.Sprintf("[%s](%s)", l.Label, l.URL)
}

// MarkdownLinks returns every Markdown link in text whose target is an
// http(s) URL, in order of appearance.
func MarkdownLinks(text string) []Link {
	matches := markdownLinkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, Link{Label: m[1], URL: m[2]})
	}

	return links
}

// FirstBareURL returns the first http(s) URL appearing anywhere in text,
// or "".
func FirstBareURL(text string) string {
	return bareURLPattern.FindString(text)
}

package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/btraven00/lectio/pkg/reddit"
)

// SelftextFetcher fetches the body text of another submission, used to
// chase cross-posts into the community they came from.
type SelftextFetcher interface {
	FetchSelftext(ctx context.Context, link string) (string, error)
}

// Input carries the submission fields the URL resolution reads.
type Input struct {
	Title     string
	Selftext  string
	URL       string
	Permalink string
	Comments  []reddit.Comment

	// CrosspostSelftext is the body cached by an earlier pass, reused when
	// refetching the cross-posted submission fails.
	CrosspostSelftext *string
}

// Resolution is the outcome of resolving one submission.
type Resolution struct {
	// RealURL is the address the submission actually points at, nil when
	// none could be recovered.
	RealURL *string

	// Summary is the submitter's own description of the work.
	Summary string

	// CrosspostSelftext holds the fetched cross-post body so later passes
	// can fall back to it.
	CrosspostSelftext *string
}

// Resolve decides what a submission links to and where its summary lives.
//
// Self-posts (the posted URL is the submission's own permalink) carry the
// real link in their body or title and their summary in the body or the
// submitter's comments. Cross-posts (the posted URL is a relative permalink
// into another community) delegate both to the original submission's body.
// Anything else is a direct link: the URL stands and the summary comes from
// the submitter's comments.
func Resolve(ctx context.Context, fetcher SelftextFetcher, in Input) Resolution {
	switch {
	case in.URL == reddit.PermalinkHost+in.Permalink:
		return resolveSelfPost(in)
	case strings.HasPrefix(in.URL, "/r/"):
		return resolveCrosspost(ctx, fetcher, in)
	default:
		return Resolution{RealURL: &in.URL, Summary: Summary(in.Comments)}
	}
}

func resolveSelfPost(in Input) Resolution {
	links := MarkdownLinks(in.Selftext)

	switch {
	case len(links) == 0:
		// No links in the body; the title sometimes carries a bare URL.
		var realURL *string
		if u := FirstBareURL(in.Title); u != "" {
			realURL = &u
		}

		return Resolution{RealURL: realURL, Summary: in.Selftext}

	case in.Selftext == links[0].String():
		// The body is exactly one link and nothing else, so the summary
		// has to come from the comments.
		return Resolution{RealURL: &links[0].URL, Summary: Summary(in.Comments)}

	default:
		// A body with prose around its links. Prefer a link whose label is
		// the URL itself, which posters use for the primary source.
		for i := range links {
			if strings.Trim(links[i].Label, "*_") == links[i].URL {
				return Resolution{RealURL: &links[i].URL, Summary: in.Selftext}
			}
		}

		return Resolution{RealURL: &links[0].URL, Summary: in.Selftext}
	}
}

func resolveCrosspost(ctx context.Context, fetcher SelftextFetcher, in Input) Resolution {
	selftext, err := fetcher.FetchSelftext(ctx, reddit.PermalinkHost+in.URL)
	if err != nil {
		if in.CrosspostSelftext == nil {
			slog.Warn("failed to fetch cross-post", "url", in.URL, "error", err)

			return Resolution{}
		}

		slog.Warn("reusing cached cross-post body", "url", in.URL, "error", err)
		selftext = *in.CrosspostSelftext
	}

	res := Resolution{Summary: selftext, CrosspostSelftext: &selftext}
	if links := MarkdownLinks(selftext); len(links) > 0 {
		res.RealURL = &links[0].URL
	} else if u := FirstBareURL(selftext); u != "" {
		res.RealURL = &u
	}

	return res
}

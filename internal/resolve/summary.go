// Package resolve turns a raw submission into a curated record: it recovers
// the submitter's own summary from the comment tree, decides which URL a
// submission really points at, and classifies submissions by flair and
// title markers.
package resolve

import (
	"html"
	"strings"

	"github.com/btraven00/lectio/pkg/reddit"
)

// Separator joins consecutive submitter comments in an extracted summary.
const Separator = "\n\n∴\n\n"

// Summary recovers the submitter's uninterrupted comment chain from a
// submission's comment forest.
//
// Comments are processed from a queue seeded with the top-level comments in
// order. A comment by the submitter contributes its body and its replies go
// back to the front of the queue, still in order, so the submitter's own
// thread is followed to the end before any sibling is considered. A comment
// by anyone else ends that branch. Bodies are joined with Separator and
// HTML entities are decoded after joining.
func Summary(comments []reddit.Comment) string {
	queue := make([]reddit.Comment, len(comments))
	copy(queue, comments)

	var bodies []string
	for len(queue) > 0 {
		comment := queue[0]
		queue = queue[1:]

		if !comment.IsSubmitter {
			continue
		}

		bodies = append(bodies, comment.Body)
		if len(comment.Replies) > 0 {
			queue = append(append([]reddit.Comment{}, comment.Replies...), queue...)
		}
	}

	return html.UnescapeString(strings.Join(bodies, Separator))
}

package crossref

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MinSimilarity is the default similarity a candidate title must reach to
// count as the same work.
const MinSimilarity = 0.8

// Similarity returns the SequenceMatcher ratio between two strings, in
// [0, 1]. The comparison is character-based and case-sensitive.
func Similarity(a, b string) float64 {
	matcher := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))

	return matcher.Ratio()
}

// ClosestMatch returns the work whose title is most similar to target, or
// nil when no candidate reaches minSimilarity. Works can carry several
// titles; each one is compared and the work's best title counts. Ties keep
// the earlier candidate, which search APIs order by relevance.
func ClosestMatch(target string, works []Work, minSimilarity float64) *Work {
	var closest *Work
	highest := 0.0

	for i := range works {
		for _, title := range works[i].Title {
			if s := Similarity(target, title); s > highest {
				closest = &works[i]
				highest = s
			}
		}
	}

	if closest == nil || highest < minSimilarity {
		return nil
	}

	return closest
}

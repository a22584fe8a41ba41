package resolve

import "strings"

// PaperType classifies a submission by the bracketed marker some
// communities put in titles.
type PaperType string

const (
	PaperTypePreprint PaperType = "preprint"
	PaperTypeThesis   PaperType = "thesis"
	PaperTypePaper    PaperType = "paper"
)

var (
	preprintMarkers = []string{"[preprint]", "[pre-print]", "[pre print]"}
	thesisMarkers   = []string{"[thesis]", "[dissertation]"}
)

// PaperTypeFromTitle reads the marker at the start or end of a title,
// case-insensitively. Untagged titles count as papers.
func PaperTypeFromTitle(title string) PaperType {
	title = strings.ToLower(title)

	switch {
	case hasMarker(title, preprintMarkers):
		return PaperTypePreprint
	case hasMarker(title, thesisMarkers):
		return PaperTypeThesis
	default:
		return PaperTypePaper
	}
}

func hasMarker(title string, markers []string) bool {
	for _, m := range markers {
		if strings.HasPrefix(title, m) || strings.HasSuffix(title, m) {
			return true
		}
	}

	return false
}

// nonResearchFlairs mark submissions that are community business rather
// than research papers.
var nonResearchFlairs = map[string]struct{}{
	"Active Research":  {},
	"Mod Announcement": {},
	"Mod News":         {},
	"Poll":             {},
	"Requests":         {},
}

// IsResearch reports whether a submission's flair marks actual research.
// Unflaired submissions count as research.
func IsResearch(flair *string) bool {
	if flair == nil {
		return true
	}

	_, nonResearch := nonResearchFlairs[*flair]

	return !nonResearch
}

// Package crossref provides a small client for the Crossref REST API and
// the fuzzy title matching used to pick between candidate works.
package crossref

import (
	"strconv"
	"strings"
)

// Work is the subset of a Crossref work record the pipeline consumes. Field
// tags follow the API's JSON keys so stored metadata round-trips unchanged.
type Work struct {
	Abstract            string   `json:"abstract,omitempty"`
	Author              []Author `json:"author,omitempty"`
	ContainerTitle      []string `json:"container-title,omitempty"`
	DOI                 string   `json:"DOI,omitempty"`
	Event               *Event   `json:"event,omitempty"`
	ISSN                []string `json:"ISSN,omitempty"`
	Issue               string   `json:"issue,omitempty"`
	Issued              *Date    `json:"issued,omitempty"`
	Language            string   `json:"language,omitempty"`
	Page                string   `json:"page,omitempty"`
	Publisher           string   `json:"publisher,omitempty"`
	ShortContainerTitle []string `json:"short-container-title,omitempty"`
	ShortTitle          []string `json:"short-title,omitempty"`
	Subject             []string `json:"subject,omitempty"`
	Subtitle            []string `json:"subtitle,omitempty"`
	Title               []string `json:"title,omitempty"`
	Type                string   `json:"type,omitempty"`
	URL                 string   `json:"URL,omitempty"`
	Volume              string   `json:"volume,omitempty"`
}

// Author is one contributor. Organizations come back with Name instead of
// Given and Family.
type Author struct {
	Family   string `json:"family,omitempty"`
	Given    string `json:"given,omitempty"`
	Name     string `json:"name,omitempty"`
	ORCID    string `json:"ORCID,omitempty"`
	Sequence string `json:"sequence,omitempty"`
}

// Date is Crossref's date-parts encoding: [[year, month, day]] with month
// and day optional.
type Date struct {
	DateParts [][]int `json:"date-parts,omitempty"`
}

// String renders the first date-parts entry as year, year-month, or
// year-month-day.
func (d *Date) String() string {
	if d == nil || len(d.DateParts) == 0 {
		return ""
	}

	parts := make([]string, 0, len(d.DateParts[0]))
	for _, p := range d.DateParts[0] {
		parts = append(parts, strconv.Itoa(p))
	}

	return strings.Join(parts, "-")
}

// Event describes the conference a proceedings paper belongs to.
type Event struct {
	Name string `json:"name,omitempty"`
}

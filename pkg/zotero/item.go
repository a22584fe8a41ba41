package zotero

import (
	"strings"

	"github.com/btraven00/lectio/pkg/crossref"
)

// crossrefTypes maps Crossref work types onto item types. Anything not
// listed becomes a journal article.
var crossrefTypes = map[string]string{
	"thesis":              TypeThesis,
	"dissertation":        TypeThesis,
	"book-section":        TypeBookSection,
	"book-chapter":        TypeBookSection,
	"proceedings-article": TypeConferencePaper,
	"conference-paper":    TypeConferencePaper,
}

// SourcePost carries the forum-side fields of a record being pushed.
// PermalinkURL must be absolute; it keys the item back to its thread.
type SourcePost struct {
	Title        string
	RealURL      *string
	PermalinkURL string
	Author       *string
	Flair        *string
	Score        int
	CreatedUTC   string
	Summary      string
	PaperType    string
}

// BuildItem maps one curated record onto a library item. Records without
// bibliographic metadata become bare documents that still point at the
// thread; records with metadata become typed entries. The extra field
// always carries the provenance block so the item can be found again.
func BuildItem(post SourcePost, work *crossref.Work, collectionKey string) (Item, error) {
	item := Item{
		ItemType:   TypeDocument,
		Title:      post.Title,
		AccessDate: post.CreatedUTC,
	}
	if post.RealURL != nil {
		item.URL = *post.RealURL
	}
	if collectionKey != "" {
		item.Collections = []string{collectionKey}
	}

	paperType := post.PaperType

	if work != nil {
		paperType = workPaperType(work, post.PaperType)
		applyWork(&item, work, post)
	}

	extra, err := Extra{
		PaperType:            paperType,
		RedditTitlePaperType: post.PaperType,
		RedditLink:           post.PermalinkURL,
		RedditTitle:          post.Title,
		RedditAuthor:         post.Author,
		RedditFlair:          post.Flair,
		RedditUpvotes:        post.Score,
		RedditSummary:        post.Summary,
	}.Encode()
	if err != nil {
		return Item{}, err
	}
	item.Extra = extra

	return item, nil
}

// workPaperType prefers the registered work type over the title marker.
func workPaperType(work *crossref.Work, fallback string) string {
	if work.Type != "" {
		return work.Type
	}

	return fallback
}

func applyWork(item *Item, work *crossref.Work, post SourcePost) {
	item.ItemType = TypeJournalArticle
	if mapped, ok := crossrefTypes[work.Type]; ok {
		item.ItemType = mapped
	}

	if len(work.Title) > 0 && work.Title[0] != "" {
		item.Title = work.Title[0]
	}

	for _, author := range work.Author {
		if author.Given == "" || author.Family == "" {
			continue
		}
		item.Creators = append(item.Creators, Creator{
			CreatorType: "author",
			FirstName:   author.Given,
			LastName:    author.Family,
		})
	}

	item.AbstractNote = work.Abstract
	item.Date = work.Issued.String()
	item.Language = work.Language
	item.ShortTitle = strings.Join(work.ShortTitle, ", ")
	if item.URL == "" {
		item.URL = work.URL
	}

	for _, subject := range work.Subject {
		item.Tags = append(item.Tags, Tag{Tag: subject})
	}

	switch item.ItemType {
	case TypeThesis:
		item.University = work.Publisher
	case TypeBookSection:
		item.BookTitle = strings.Join(work.ContainerTitle, ", ")
		item.Pages = work.Page
		item.DOI = work.DOI
	case TypeConferencePaper:
		item.ConferenceName = eventName(work)
		item.Pages = work.Page
		item.DOI = work.DOI
	default:
		item.PublicationTitle = strings.Join(work.ContainerTitle, ", ")
		item.JournalAbbreviation = strings.Join(work.ShortContainerTitle, ", ")
		item.Volume = work.Volume
		item.Issue = work.Issue
		item.Pages = work.Page
		item.ISSN = strings.Join(work.ISSN, ", ")
		item.DOI = work.DOI
	}
}

func eventName(work *crossref.Work) string {
	if work.Event == nil {
		return ""
	}

	return work.Event.Name
}

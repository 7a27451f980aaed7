package api

import (
	"github.com/starford/tilog/internal/index"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteid"
	"github.com/starford/tilog/internal/slug"
)

// NoteSummary is a note without its body.
type NoteSummary struct {
	ID    string   `json:"id" example:"01ARZ3NDEKTSV4RRFFQ69G5FAV" validate:"required"`
	Title string   `json:"title" example:"Go channels" validate:"required"`
	Tags  []string `json:"tags" example:"go,concurrency" validate:"required"`
	Date  string   `json:"date" example:"2016-07-30T23:54:10.259Z" validate:"required"`
}

// NoteDetail is the full note response.
type NoteDetail struct {
	NoteSummary
	Content string `json:"content" example:"# Body" validate:"required"`
}

// NoteListResponse is one page of the newest-first note list.
type NoteListResponse struct {
	Notes      []NoteSummary `json:"notes" validate:"required"`
	Page       int           `json:"page" example:"1" validate:"required"`
	TotalPages int           `json:"total_pages" example:"3" validate:"required"`
	Total      int           `json:"total" example:"25" validate:"required"`
}

// TagItem is a tag with its URL segment and note count.
type TagItem struct {
	Tag   string `json:"tag" example:"go" validate:"required"`
	Slug  string `json:"slug" example:"go" validate:"required"`
	Count int    `json:"count" example:"4" validate:"required"`
}

// TagNotesResponse lists the notes carrying one tag.
type TagNotesResponse struct {
	Tag   string        `json:"tag" example:"go" validate:"required"`
	Notes []NoteSummary `json:"notes" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

func summaryOf(n models.ParsedNote) NoteSummary {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteSummary{
		ID:    n.ID,
		Title: n.Title,
		Tags:  tags,
		Date:  noteid.ISO(n.Metadata.Date),
	}
}

func summariesOf(notes []models.ParsedNote) []NoteSummary {
	out := make([]NoteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, summaryOf(n))
	}
	return out
}

func detailOf(n models.ParsedNote) NoteDetail {
	return NoteDetail{NoteSummary: summaryOf(n), Content: n.Content}
}

func tagItem(tag string, count int) TagItem {
	return TagItem{Tag: tag, Slug: slug.TagToSlug(tag), Count: count}
}

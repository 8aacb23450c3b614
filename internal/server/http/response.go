package httpserver

import (
	"time"

	"github.com/comic-con-museum/fan-forge/internal/assembler"
)

// Exhibit response types for JSON serialization. Timestamps are UTC and
// serialize as RFC3339. The supported flag is a pointer: present for
// authenticated viewers, omitted entirely for anonymous ones.

type feedEntryResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Featured    bool      `json:"featured"`
	Created     time.Time `json:"created"`
	Supporters  int64     `json:"supporters"`
	Supported   *bool     `json:"supported,omitempty"`
}

type feedResponse struct {
	StartIdx int                 `json:"startIdx"`
	Count    int64               `json:"count"`
	PageSize int                 `json:"pageSize"`
	Exhibits []feedEntryResponse `json:"exhibits"`
}

type artifactResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	// Image identifies the artifact's image resource, served by the asset
	// collaborator under the artifact's own ID.
	Image   int64     `json:"image"`
	Cover   bool      `json:"cover"`
	Creator string    `json:"creator"`
	Created time.Time `json:"created"`
}

type commentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Created time.Time `json:"created"`
}

type exhibitDetailResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Featured    bool               `json:"featured"`
	Author      string             `json:"author"`
	Created     time.Time          `json:"created"`
	Tags        []string           `json:"tags"`
	Supporters  int64              `json:"supporters"`
	Supported   *bool              `json:"supported,omitempty"`
	Artifacts   []artifactResponse `json:"artifacts"`
	Comments    []commentResponse  `json:"comments"`
}

type createExhibitResponse struct {
	ID int64 `json:"id"`
}

// Converter functions

func feedPageToResponse(page *assembler.FeedPage) feedResponse {
	entries := make([]feedEntryResponse, len(page.Exhibits))
	for i, e := range page.Exhibits {
		entries[i] = feedEntryResponse{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Featured:    e.Featured,
			Created:     e.Created.UTC(),
			Supporters:  e.Supporters,
			Supported:   e.Supported,
		}
	}
	return feedResponse{
		StartIdx: page.StartIdx,
		Count:    page.Count,
		PageSize: page.PageSize,
		Exhibits: entries,
	}
}

func detailToResponse(detail *assembler.ExhibitDetail) exhibitDetailResponse {
	artifacts := make([]artifactResponse, len(detail.Artifacts))
	for i, a := range detail.Artifacts {
		artifacts[i] = artifactResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Image:       a.ID,
			Cover:       a.Cover,
			Creator:     a.Creator,
			Created:     a.Created.UTC(),
		}
	}

	comments := make([]commentResponse, len(detail.Comments))
	for i, c := range detail.Comments {
		comments[i] = commentResponse{
			ID:      c.ID,
			Text:    c.Text,
			Author:  c.Author,
			Created: c.Created.UTC(),
		}
	}

	e := detail.Exhibit
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}

	return exhibitDetailResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Featured:    e.Featured,
		Author:      e.Author,
		Created:     e.Created.UTC(),
		Tags:        tags,
		Supporters:  detail.Supporters,
		Supported:   detail.Supported,
		Artifacts:   artifacts,
		Comments:    comments,
	}
}

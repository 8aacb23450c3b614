// Package domain provides domain models and business logic for the exhibit service.
package domain

import (
	"strings"
	"time"
)

// FeedType selects the ordering of the exhibit feed.
type FeedType string

const (
	// FeedTypeNew orders exhibits by creation time, newest first.
	FeedTypeNew FeedType = "new"
	// FeedTypeAlphabetical orders exhibits by title, case-insensitive.
	FeedTypeAlphabetical FeedType = "alphabetical"
)

// ParseFeedType resolves a feed name from the URL path into a FeedType.
// Unknown names report false; the boundary treats that as a routing miss (404),
// not as invalid input.
func ParseFeedType(name string) (FeedType, bool) {
	switch strings.ToLower(name) {
	case string(FeedTypeNew):
		return FeedTypeNew, true
	case string(FeedTypeAlphabetical):
		return FeedTypeAlphabetical, true
	default:
		return "", false
	}
}

// User identifies an authenticated principal. Users are resolved by the
// authentication collaborator outside this service and referenced by ID only.
type User struct {
	ID    string
	Name  string
	Admin bool
}

// Exhibit is a community-submitted exhibit proposal. The ID is assigned on
// creation and immutable; Author and Created never change after creation.
type Exhibit struct {
	ID          int64
	Title       string
	Description string
	Author      string
	Created     time.Time
	Tags        []string
	Featured    bool
}

// ValidateForWrite checks the fields a creation or update must supply.
// Absent tags (nil) are rejected, an explicitly empty tag list is allowed;
// this mirrors the boundary contract, which distinguishes a missing "tags"
// field from "tags": [].
func (e *Exhibit) ValidateForWrite() error {
	if e.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if e.Description == "" {
		return NewValidationError("description", "description is required")
	}
	if e.Tags == nil {
		return NewValidationError("tags", "tags are required")
	}
	return nil
}

// Artifact is a single item within an exhibit. Artifacts never outlive their
// exhibit; deleting the exhibit removes them.
type Artifact struct {
	ID          int64
	Title       string
	Description string
	Cover       bool
	Creator     string
	Created     time.Time
	Exhibit     int64
}

// Comment is a visitor comment on an exhibit, passed through on the detail
// view and cascade-deleted with the exhibit.
type Comment struct {
	ID      int64
	Text    string
	Author  string
	Created time.Time
	Exhibit int64
}

// Survey is the optional payload attached to a support. It is supplied when
// the support is created and immutable until the support is removed.
type Survey struct {
	Visits      int             `json:"visits"`
	Rating      int             `json:"rating"`
	Populations map[string]bool `json:"populations"`
}

// Support records that a user supports an exhibit. At most one support exists
// per (exhibit, supporter) pair; the supports table enforces this with a
// unique constraint.
type Support struct {
	Exhibit   int64
	Supporter string
	Survey    *Survey
	Created   time.Time
}

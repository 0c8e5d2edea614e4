package domain

import (
	"fmt"
	"github.com/google/uuid"
	"time"
)

// Visibility levels for entries. DELETED is a soft-delete marker: the row
// stays around so comments and likes keep a valid target.
const (
	VisibilityPublic   = "PUBLIC"
	VisibilityUnlisted = "UNLISTED"
	VisibilityFriends  = "FRIENDS"
	VisibilityDeleted  = "DELETED"
)

// Supported content types.
const (
	ContentTypePlain       = "text/plain"
	ContentTypeMarkdown    = "text/markdown"
	ContentTypePNG         = "image/png"
	ContentTypeJPEG        = "image/jpeg"
	ContentTypePNGBase64   = "image/png;base64"
	ContentTypeJPEGBase64  = "image/jpeg;base64"
	ContentTypeApplication = "application/base64"
)

// Entry is a post. URL is the canonical identifier; local entries derive it
// from (site URL, author id, entry id) at creation, remote entries arrive
// with it set.
type Entry struct {
	Id          uuid.UUID
	URL         string
	AuthorURL   string
	Title       string
	Description string
	Content     string
	ContentType string
	Categories  []string
	Visibility  string
	Source      string
	Origin      string
	Web         string
	Published   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDeleted reports whether the entry has been soft-deleted.
func (e *Entry) IsDeleted() bool {
	return e.Visibility == VisibilityDeleted
}

func (e *Entry) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tURL: %s \n\tTitle: %s \n\tVisibility: %s)", e.Id, e.URL, e.Title, e.Visibility)
}

// ValidVisibility reports whether v is one of the known visibility levels.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityFriends, VisibilityDeleted:
		return true
	}
	return false
}

// Comment is attached to exactly one entry and inherits the entry's
// effective visibility for display purposes.
type Comment struct {
	Id          uuid.UUID
	URL         string
	AuthorURL   string
	EntryURL    string
	Content     string
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Comment) ToString() string {
	return fmt.Sprintf("Comment by %s on %s", c.AuthorURL, c.EntryURL)
}

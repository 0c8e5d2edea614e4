package domain

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"time"
)

// Follow states.
const (
	FollowRequesting = "requesting"
	FollowAccepted   = "accepted"
	FollowRejected   = "rejected"
)

// Follow is a directed edge follower -> followed, unique per pair.
type Follow struct {
	Id          uuid.UUID
	FollowerURL string
	FollowedURL string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (f *Follow) ToString() string {
	return fmt.Sprintf("%s -> %s (%s)", f.FollowerURL, f.FollowedURL, f.Status)
}

// Friendship is the derived symmetric edge: it exists exactly when both
// follow directions between the pair are accepted. Rows always store the
// lexicographically smaller URL first so each unordered pair has one row.
// Friendships are maintained by the follow mutation path, never written
// directly by a caller.
type Friendship struct {
	Id         uuid.UUID
	Author1URL string
	Author2URL string
	CreatedAt  time.Time
}

func (f *Friendship) ToString() string {
	return fmt.Sprintf("Friendship: %s <-> %s", f.Author1URL, f.Author2URL)
}

// OrderPair returns the two author URLs in canonical (lexicographic) order.
func OrderPair(a string, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// ErrLikeTarget is returned when a like does not reference exactly one of
// entry or comment.
var ErrLikeTarget = errors.New("like must target exactly one of entry or comment")

// Like targets exactly one entry or one comment, one per (author, target).
type Like struct {
	Id         uuid.UUID
	URL        string
	AuthorURL  string
	EntryURL   string
	CommentURL string
	CreatedAt  time.Time
}

// Validate enforces the single-target rule.
func (l *Like) Validate() error {
	if l.EntryURL == "" && l.CommentURL == "" {
		return ErrLikeTarget
	}
	if l.EntryURL != "" && l.CommentURL != "" {
		return ErrLikeTarget
	}
	return nil
}

// TargetURL returns the canonical URL of whatever the like points at.
func (l *Like) TargetURL() string {
	if l.EntryURL != "" {
		return l.EntryURL
	}
	return l.CommentURL
}

func (l *Like) ToString() string {
	return fmt.Sprintf("Like by %s on %s", l.AuthorURL, l.TargetURL())
}

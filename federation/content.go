package federation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

// ContentService is the local command surface for entries, likes and
// comments. Writes land in the store first; the matching activity is then
// pushed out, entries to every remote author, likes and comments to the
// target's author only. Local entries derive their canonical url from the
// site url, the author id and the entry id.
type ContentService struct {
	SiteURL   string
	Authors   AuthorRepo
	Entries   EntryRepo
	Likes     LikeRepo
	Comments  CommentRepo
	Resolver  *Resolver
	Publisher *Publisher
}

// CreateEntry stores a new entry for a local author and fans it out.
func (s *ContentService) CreateEntry(authorURL string, draft *domain.Entry) (*domain.Entry, error) {
	author, err := s.localAuthor(authorURL)
	if err != nil {
		return nil, err
	}
	if draft.Title == "" {
		return nil, fmt.Errorf("entry title is required")
	}
	if draft.Content == "" {
		return nil, fmt.Errorf("entry content is required")
	}
	if draft.ContentType == "" {
		draft.ContentType = domain.ContentTypePlain
	}
	if err := checkVisibility(draft.Visibility); err != nil {
		return nil, err
	}
	if draft.Visibility == "" {
		draft.Visibility = domain.VisibilityPublic
	}

	if draft.Id == uuid.Nil {
		draft.Id = uuid.New()
	}
	draft.Title = util.NormalizeInput(draft.Title)
	draft.AuthorURL = author.URL
	draft.URL = util.NormalizeURL(fmt.Sprintf("%s/api/authors/%s/entries/%s", s.SiteURL, author.Id, draft.Id))
	if draft.Web == "" {
		draft.Web = draft.URL
	}
	if draft.Published.IsZero() {
		draft.Published = time.Now()
	}

	if err := s.Entries.UpsertEntry(draft); err != nil {
		return nil, err
	}
	err, stored := s.Entries.ReadEntryByURL(draft.URL)
	if err != nil {
		return nil, err
	}

	s.Publisher.PublishEntry(stored, author)
	return stored, nil
}

// UpdateEntry overwrites the mutable fields of an owned entry and fans the
// new state out. Empty fields in upd keep the stored value.
func (s *ContentService) UpdateEntry(authorURL string, entryId uuid.UUID, upd *domain.Entry) (*domain.Entry, error) {
	author, entry, err := s.ownedEntry(authorURL, entryId)
	if err != nil {
		return nil, err
	}
	if entry.IsDeleted() {
		return nil, fmt.Errorf("entry %s is deleted", entry.URL)
	}

	if upd.Title != "" {
		entry.Title = util.NormalizeInput(upd.Title)
	}
	if upd.Description != "" {
		entry.Description = upd.Description
	}
	if upd.Content != "" {
		entry.Content = upd.Content
	}
	if upd.ContentType != "" {
		entry.ContentType = upd.ContentType
	}
	if upd.Categories != nil {
		entry.Categories = upd.Categories
	}
	if upd.Visibility != "" {
		if err := checkVisibility(upd.Visibility); err != nil {
			return nil, err
		}
		entry.Visibility = upd.Visibility
	}

	if err := s.Entries.UpsertEntry(entry); err != nil {
		return nil, err
	}
	s.Publisher.PublishEntry(entry, author)
	return entry, nil
}

// DeleteEntry soft-deletes an owned entry and announces the tombstoned state
// so peers mark their cached copy as well. Already deleted entries succeed.
func (s *ContentService) DeleteEntry(authorURL string, entryId uuid.UUID) error {
	author, entry, err := s.ownedEntry(authorURL, entryId)
	if err != nil {
		return err
	}
	if entry.IsDeleted() {
		return nil
	}

	if err := s.Entries.SoftDeleteEntry(entry.URL); err != nil {
		return err
	}
	entry.Visibility = domain.VisibilityDeleted
	s.Publisher.PublishEntry(entry, author)
	return nil
}

// CreateLike records a like by a local author on an entry or comment and
// pushes it to the target's author. The second return reports whether the
// like was new; a repeated like of the same target changes nothing.
func (s *ContentService) CreateLike(actorURL, targetURL string) (*domain.Like, bool, error) {
	author, err := s.localAuthor(actorURL)
	if err != nil {
		return nil, false, err
	}
	entryURL, commentURL, err := s.Resolver.locateTarget(targetURL)
	if err != nil {
		return nil, false, err
	}

	like := &domain.Like{
		Id:         uuid.New(),
		AuthorURL:  author.URL,
		EntryURL:   entryURL,
		CommentURL: commentURL,
	}
	like.URL = util.NormalizeURL(fmt.Sprintf("%s/liked/%s", author.URL, like.Id))

	err, created := s.Likes.CreateLike(like)
	if err != nil {
		return nil, false, err
	}
	err, stored := s.Likes.ReadLikeByAuthorAndTarget(author.URL, like.TargetURL())
	if err != nil {
		return nil, false, err
	}
	if created {
		s.Publisher.PublishLike(stored, author, s.targetAuthor(entryURL, commentURL))
	}
	return stored, created, nil
}

// UndoLike withdraws a like and pushes the retraction. An absent like is
// already withdrawn and succeeds.
func (s *ContentService) UndoLike(actorURL, targetURL string) error {
	author, err := s.localAuthor(actorURL)
	if err != nil {
		return err
	}
	entryURL, commentURL, err := s.Resolver.locateTarget(targetURL)
	if err != nil {
		return err
	}
	target := entryURL
	if target == "" {
		target = commentURL
	}

	err, like := s.Likes.ReadLikeByAuthorAndTarget(author.URL, target)
	if err != nil {
		return nil
	}
	if err := s.Likes.DeleteLikeByAuthorAndTarget(author.URL, target); err != nil {
		return err
	}
	s.Publisher.PublishUndoLike(like, author, s.targetAuthor(entryURL, commentURL))
	return nil
}

// CreateComment attaches a comment by a local author to an entry and pushes
// it to the entry's author.
func (s *ContentService) CreateComment(actorURL, entryURL, content, contentType string) (*domain.Comment, error) {
	author, err := s.localAuthor(actorURL)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}
	entry, err := s.Resolver.locateEntry(entryURL)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = domain.ContentTypeMarkdown
	}

	comment := &domain.Comment{
		Id:          uuid.New(),
		AuthorURL:   author.URL,
		EntryURL:    entry.URL,
		Content:     content,
		ContentType: contentType,
	}
	comment.URL = util.NormalizeURL(fmt.Sprintf("%s/commented/%s", author.URL, comment.Id))

	if err := s.Comments.UpsertComment(comment); err != nil {
		return nil, err
	}
	err, stored := s.Comments.ReadCommentByURL(comment.URL)
	if err != nil {
		return nil, err
	}

	s.Publisher.PublishComment(stored, author, s.targetAuthor(entry.URL, ""))
	return stored, nil
}

// localAuthor loads the acting author and rejects remote ones: activities
// are only originated on behalf of authors homed here.
func (s *ContentService) localAuthor(authorURL string) (*domain.Author, error) {
	err, author := s.Authors.ReadAuthorByURL(util.NormalizeURL(authorURL))
	if err != nil {
		return nil, fmt.Errorf("unknown author %s: %w", authorURL, err)
	}
	if author.IsRemote() {
		return nil, fmt.Errorf("author %s is not local", author.URL)
	}
	return author, nil
}

func (s *ContentService) ownedEntry(authorURL string, entryId uuid.UUID) (*domain.Author, *domain.Entry, error) {
	author, err := s.localAuthor(authorURL)
	if err != nil {
		return nil, nil, err
	}
	err, entry := s.Entries.ReadEntryById(entryId)
	if err != nil || entry.AuthorURL != author.URL {
		return nil, nil, fmt.Errorf("no entry %s owned by %s", entryId, author.URL)
	}
	return author, entry, nil
}

// targetAuthor resolves the author behind a liked or commented object. A nil
// return skips the push; Publisher ignores nil and local recipients anyway.
func (s *ContentService) targetAuthor(entryURL, commentURL string) *domain.Author {
	ownerURL := ""
	if entryURL != "" {
		if err, entry := s.Entries.ReadEntryByURL(entryURL); err == nil {
			ownerURL = entry.AuthorURL
		}
	} else if commentURL != "" {
		if err, comment := s.Comments.ReadCommentByURL(commentURL); err == nil {
			ownerURL = comment.AuthorURL
		}
	}
	if ownerURL == "" {
		return nil
	}
	err, owner := s.Authors.ReadAuthorByURL(ownerURL)
	if err != nil {
		return nil
	}
	return owner
}

func checkVisibility(v string) error {
	if v == "" {
		return nil
	}
	if v == domain.VisibilityDeleted || !domain.ValidVisibility(v) {
		return fmt.Errorf("unsupported visibility %q", v)
	}
	return nil
}

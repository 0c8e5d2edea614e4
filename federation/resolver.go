package federation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

// ErrNotResolvable means an activity's canonical id is missing or unusable.
// Processing of that activity must stop; there is nothing to retry.
var ErrNotResolvable = errors.New("object not resolvable")

// Resolver turns inbound activity payloads into stored records. Every lookup
// and store is keyed on the normalized canonical url, so a repeated delivery
// of the same object updates in place instead of duplicating.
type Resolver struct {
	Authors  AuthorRepo
	Entries  EntryRepo
	Likes    LikeRepo
	Comments CommentRepo
	Nodes    NodeRepo
}

// ResolveAuthor upserts the author referenced by an activity payload. A new
// author gets a local id and is linked to its home node when one is
// registered for its host.
func (r *Resolver) ResolveAuthor(ref domain.ActorRef) (*domain.Author, error) {
	url := util.NormalizeURL(ref.Id)
	if url == "" || !util.IsValidURL(url) {
		return nil, fmt.Errorf("%w: author id %q", ErrNotResolvable, ref.Id)
	}

	author := &domain.Author{
		Id:           uuid.New(),
		URL:          url,
		Username:     usernameFrom(ref, url),
		DisplayName:  ref.DisplayName,
		ProfileImage: ref.ProfileImage,
		Host:         util.NormalizeURL(ref.Host),
		Web:          util.NormalizeURL(ref.Web),
	}
	if author.Host == "" {
		author.Host = util.BaseHost(url)
	}
	if err, node := r.Nodes.ReadNodeByHost(util.BaseHost(url)); err == nil && node != nil {
		nodeId := node.Id
		author.NodeId = &nodeId
	}

	if err := r.Authors.UpsertAuthor(author); err != nil {
		return nil, err
	}
	err, stored := r.Authors.ReadAuthorByURL(url)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ResolveEntry upserts the entry and its author, last write wins.
func (r *Resolver) ResolveEntry(act *domain.EntryActivity) (*domain.Entry, error) {
	author, err := r.ResolveAuthor(act.Author)
	if err != nil {
		return nil, err
	}

	url := util.NormalizeURL(act.Id)
	if url == "" || !util.IsValidURL(url) {
		return nil, fmt.Errorf("%w: entry id %q", ErrNotResolvable, act.Id)
	}

	visibility := act.Visibility
	if !domain.ValidVisibility(visibility) {
		visibility = domain.VisibilityPublic
	}
	published := time.Now()
	if act.Published != "" {
		if parsed, perr := time.Parse(time.RFC3339, act.Published); perr == nil {
			published = parsed
		}
	}

	entry := &domain.Entry{
		Id:          entryId(url),
		URL:         url,
		AuthorURL:   author.URL,
		Title:       act.Title,
		Description: act.Description,
		Content:     act.Content,
		ContentType: act.ContentType,
		Categories:  act.Categories,
		Visibility:  visibility,
		Source:      util.NormalizeURL(act.Source),
		Origin:      util.NormalizeURL(act.Origin),
		Web:         util.NormalizeURL(act.Web),
		Published:   published,
	}
	if err := r.Entries.UpsertEntry(entry); err != nil {
		return nil, err
	}
	err, stored := r.Entries.ReadEntryByURL(url)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ResolveLike locates the like target and builds the like record. The target
// lookup tries the trailing UUID first, then the full url; entries win over
// comments.
func (r *Resolver) ResolveLike(act *domain.LikeActivity) (*domain.Like, error) {
	author, err := r.ResolveAuthor(act.Author)
	if err != nil {
		return nil, err
	}

	url := util.NormalizeURL(act.Id)
	if url == "" {
		return nil, fmt.Errorf("%w: like id %q", ErrNotResolvable, act.Id)
	}
	entryURL, commentURL, err := r.locateTarget(act.Object)
	if err != nil {
		return nil, err
	}

	return &domain.Like{
		Id:         uuid.New(),
		URL:        url,
		AuthorURL:  author.URL,
		EntryURL:   entryURL,
		CommentURL: commentURL,
	}, nil
}

// ResolveComment upserts the commenting author and builds the comment after
// checking that the target entry exists locally.
func (r *Resolver) ResolveComment(act *domain.CommentActivity) (*domain.Comment, error) {
	author, err := r.ResolveAuthor(act.Author)
	if err != nil {
		return nil, err
	}

	url := util.NormalizeURL(act.Id)
	if url == "" {
		return nil, fmt.Errorf("%w: comment id %q", ErrNotResolvable, act.Id)
	}

	entry, err := r.locateEntry(act.Entry)
	if err != nil {
		return nil, err
	}

	contentType := act.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeMarkdown
	}
	return &domain.Comment{
		Id:          uuid.New(),
		URL:         url,
		AuthorURL:   author.URL,
		EntryURL:    entry.URL,
		Content:     act.Comment,
		ContentType: contentType,
	}, nil
}

// locateTarget finds the liked object. Entry first, comment second.
func (r *Resolver) locateTarget(rawURL string) (entryURL, commentURL string, err error) {
	url := util.NormalizeURL(rawURL)
	if url == "" {
		return "", "", fmt.Errorf("%w: like target %q", ErrNotResolvable, rawURL)
	}

	if id, ok := util.ParseUUIDFromURL(url); ok {
		if lerr, entry := r.Entries.ReadEntryById(id); lerr == nil && entry != nil {
			return entry.URL, "", nil
		}
		if lerr, comment := r.Comments.ReadCommentById(id); lerr == nil && comment != nil {
			return "", comment.URL, nil
		}
	}
	if lerr, entry := r.Entries.ReadEntryByURL(url); lerr == nil && entry != nil {
		return entry.URL, "", nil
	}
	if lerr, comment := r.Comments.ReadCommentByURL(url); lerr == nil && comment != nil {
		return "", comment.URL, nil
	}
	return "", "", fmt.Errorf("%w: like target %q", ErrNotResolvable, rawURL)
}

func (r *Resolver) locateEntry(rawURL string) (*domain.Entry, error) {
	url := util.NormalizeURL(rawURL)
	if url == "" {
		return nil, fmt.Errorf("%w: entry target %q", ErrNotResolvable, rawURL)
	}
	if id, ok := util.ParseUUIDFromURL(url); ok {
		if err, entry := r.Entries.ReadEntryById(id); err == nil && entry != nil {
			return entry, nil
		}
	}
	if err, entry := r.Entries.ReadEntryByURL(url); err == nil && entry != nil {
		return entry, nil
	}
	return nil, fmt.Errorf("%w: entry target %q", ErrNotResolvable, rawURL)
}

// entryId reuses the UUID embedded in the canonical url when there is one,
// so the same remote entry resolves to the same local id everywhere.
func entryId(url string) uuid.UUID {
	if id, ok := util.ParseUUIDFromURL(url); ok {
		return id
	}
	return uuid.New()
}

func usernameFrom(ref domain.ActorRef, url string) string {
	if ref.DisplayName != "" {
		return ref.DisplayName
	}
	return url
}

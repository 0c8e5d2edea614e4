package federation

import (
	"time"

	"github.com/mwaldt/driftwood/domain"
)

// Wire payloads pushed to peer inboxes. The same structs feed the dispatcher
// dedup hash, so an activity hashes identically whether built locally or
// rebuilt from a received delivery.

type AuthorPayload struct {
	Type         string `json:"type"`
	Id           string `json:"id"`
	Host         string `json:"host,omitempty"`
	Web          string `json:"web,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type EntryPayload struct {
	Type        string        `json:"type"`
	Id          string        `json:"id"`
	Author      AuthorPayload `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Content     string        `json:"content"`
	ContentType string        `json:"contentType"`
	Categories  []string      `json:"categories,omitempty"`
	Visibility  string        `json:"visibility"`
	Source      string        `json:"source,omitempty"`
	Origin      string        `json:"origin,omitempty"`
	Web         string        `json:"web,omitempty"`
	Published   string        `json:"published"`
}

type FollowPayload struct {
	Type    string        `json:"type"`
	Summary string        `json:"summary,omitempty"`
	Actor   AuthorPayload `json:"actor"`
	Object  AuthorPayload `json:"object"`
}

type FollowResponsePayload struct {
	Type         string        `json:"type"`
	ResponseType string        `json:"response_type"`
	Follower     AuthorPayload `json:"follower"`
	Followed     AuthorPayload `json:"followed"`
}

type LikePayload struct {
	Type   string        `json:"type"`
	Id     string        `json:"id"`
	Author AuthorPayload `json:"author"`
	Object string        `json:"object"`
}

type CommentPayload struct {
	Type        string        `json:"type"`
	Id          string        `json:"id"`
	Author      AuthorPayload `json:"author"`
	Comment     string        `json:"comment"`
	ContentType string        `json:"contentType"`
	Entry       string        `json:"entry"`
}

type UndoPayload struct {
	Type   string        `json:"type"`
	Actor  AuthorPayload `json:"actor"`
	Object any           `json:"object"`
}

func NewAuthorPayload(a *domain.Author) AuthorPayload {
	return AuthorPayload{
		Type:         "author",
		Id:           a.URL,
		Host:         a.Host,
		Web:          a.Web,
		DisplayName:  a.DisplayName,
		ProfileImage: a.ProfileImage,
	}
}

func NewEntryPayload(e *domain.Entry, author *domain.Author) EntryPayload {
	return EntryPayload{
		Type:        domain.ActivityEntry,
		Id:          e.URL,
		Author:      NewAuthorPayload(author),
		Title:       e.Title,
		Description: e.Description,
		Content:     e.Content,
		ContentType: e.ContentType,
		Categories:  e.Categories,
		Visibility:  e.Visibility,
		Source:      e.Source,
		Origin:      e.Origin,
		Web:         e.Web,
		Published:   e.Published.UTC().Format(time.RFC3339),
	}
}

func NewFollowPayload(actor, object *domain.Author) FollowPayload {
	return FollowPayload{
		Type:    domain.ActivityFollow,
		Summary: actor.DisplayName + " wants to follow " + object.DisplayName,
		Actor:   NewAuthorPayload(actor),
		Object:  NewAuthorPayload(object),
	}
}

func NewFollowResponsePayload(follower, followed *domain.Author, responseType string) FollowResponsePayload {
	return FollowResponsePayload{
		Type:         domain.ActivityFollow,
		ResponseType: responseType,
		Follower:     NewAuthorPayload(follower),
		Followed:     NewAuthorPayload(followed),
	}
}

func NewLikePayload(like *domain.Like, author *domain.Author) LikePayload {
	return LikePayload{
		Type:   domain.ActivityLike,
		Id:     like.URL,
		Author: NewAuthorPayload(author),
		Object: like.TargetURL(),
	}
}

func NewCommentPayload(c *domain.Comment, author *domain.Author) CommentPayload {
	return CommentPayload{
		Type:        domain.ActivityComment,
		Id:          c.URL,
		Author:      NewAuthorPayload(author),
		Comment:     c.Content,
		ContentType: c.ContentType,
		Entry:       c.EntryURL,
	}
}

func NewUndoLikePayload(like *domain.Like, actor *domain.Author) UndoPayload {
	return UndoPayload{
		Type:   domain.ActivityUndo,
		Actor:  NewAuthorPayload(actor),
		Object: NewLikePayload(like, actor),
	}
}

func NewUndoFollowPayload(actor, object *domain.Author) UndoPayload {
	return UndoPayload{
		Type:   domain.ActivityUndo,
		Actor:  NewAuthorPayload(actor),
		Object: NewFollowPayload(actor, object),
	}
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Activity type tags carried in the wire envelope.
const (
	ActivityEntry   = "entry"
	ActivityFollow  = "follow"
	ActivityLike    = "like"
	ActivityComment = "comment"
	ActivityUndo    = "undo"
)

// Follow response types carried by follow activities that answer a request
// instead of opening one.
const (
	ResponseAccept = "Accept"
	ResponseReject = "Reject"
)

// ActorRef is the embedded author payload used throughout the activities.
type ActorRef struct {
	Type         string `json:"type,omitempty"`
	Id           string `json:"id"`
	Host         string `json:"host,omitempty"`
	Web          string `json:"web,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Activity is the closed set of inbound federation events. The dispatcher
// switches exhaustively over the concrete types, so a new activity kind is a
// compile-time visible change.
type Activity interface {
	ActivityType() string
}

// EntryActivity announces a created or updated entry.
type EntryActivity struct {
	Type        string   `json:"type"`
	Id          string   `json:"id"`
	Author      ActorRef `json:"author"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	ContentType string   `json:"contentType"`
	Categories  []string `json:"categories,omitempty"`
	Visibility  string   `json:"visibility,omitempty"`
	Source      string   `json:"source,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	Web         string   `json:"web,omitempty"`
	Published   string   `json:"published,omitempty"`
}

func (a *EntryActivity) ActivityType() string { return ActivityEntry }

// FollowActivity opens a follow request from actor to object.
type FollowActivity struct {
	Type    string   `json:"type"`
	Summary string   `json:"summary,omitempty"`
	Actor   ActorRef `json:"actor"`
	Object  ActorRef `json:"object"`
}

func (a *FollowActivity) ActivityType() string { return ActivityFollow }

// FollowResponseActivity answers a previously delivered follow request.
// On the wire it is a follow activity carrying a response_type.
type FollowResponseActivity struct {
	Type         string   `json:"type"`
	ResponseType string   `json:"response_type"`
	Follower     ActorRef `json:"follower"`
	Followed     ActorRef `json:"followed"`
}

func (a *FollowResponseActivity) ActivityType() string { return ActivityFollow }

// LikeActivity announces a like on an entry or comment, referenced by the
// target's canonical URL in Object.
type LikeActivity struct {
	Type   string   `json:"type"`
	Id     string   `json:"id"`
	Author ActorRef `json:"author"`
	Object string   `json:"object"`
}

func (a *LikeActivity) ActivityType() string { return ActivityLike }

// CommentActivity announces a comment on an entry.
type CommentActivity struct {
	Type        string   `json:"type"`
	Id          string   `json:"id"`
	Author      ActorRef `json:"author"`
	Comment     string   `json:"comment"`
	ContentType string   `json:"contentType,omitempty"`
	Entry       string   `json:"entry"`
}

func (a *CommentActivity) ActivityType() string { return ActivityComment }

// UndoActivity reverses a previously delivered activity. The nested object
// declares its own type; only like undo is currently meaningful.
type UndoActivity struct {
	Type   string          `json:"type"`
	Actor  ActorRef        `json:"actor"`
	Object json.RawMessage `json:"object"`
}

func (a *UndoActivity) ActivityType() string { return ActivityUndo }

// UndoneLike decodes the nested object as a like activity. The second return
// is false when the nested type is not "like".
func (a *UndoActivity) UndoneLike() (*LikeActivity, bool) {
	var like LikeActivity
	if err := json.Unmarshal(a.Object, &like); err != nil {
		return nil, false
	}
	if like.Type != ActivityLike {
		return nil, false
	}
	return &like, true
}

// UndoneFollow decodes the nested object as a follow activity, the wire form
// of an unfollow. The second return is false when the nested type is not
// "follow".
func (a *UndoActivity) UndoneFollow() (*FollowActivity, bool) {
	var follow FollowActivity
	if err := json.Unmarshal(a.Object, &follow); err != nil {
		return nil, false
	}
	if follow.Type != ActivityFollow {
		return nil, false
	}
	return &follow, true
}

// ValidationError names the field an inbound activity is missing.
type ValidationError struct {
	ActivityType string
	Field        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field '%s' for %s activity", e.Field, e.ActivityType)
}

// DecodeActivity parses one inbound activity envelope and validates the
// per-type required fields, naming the violated field on failure. A follow
// payload carrying a response_type decodes as a follow response.
func DecodeActivity(body []byte) (Activity, error) {
	var envelope struct {
		Type         string `json:"type"`
		ResponseType string `json:"response_type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse activity: %w", err)
	}

	switch envelope.Type {
	case ActivityEntry:
		var a EntryActivity
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("failed to parse entry activity: %w", err)
		}
		if a.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityEntry, Field: "id"}
		}
		if a.Author.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityEntry, Field: "author"}
		}
		if a.Title == "" {
			return nil, &ValidationError{ActivityType: ActivityEntry, Field: "title"}
		}
		if a.Content == "" {
			return nil, &ValidationError{ActivityType: ActivityEntry, Field: "content"}
		}
		if a.ContentType == "" {
			return nil, &ValidationError{ActivityType: ActivityEntry, Field: "contentType"}
		}
		return &a, nil

	case ActivityFollow:
		if envelope.ResponseType != "" {
			var a FollowResponseActivity
			if err := json.Unmarshal(body, &a); err != nil {
				return nil, fmt.Errorf("failed to parse follow response: %w", err)
			}
			if a.ResponseType != ResponseAccept && a.ResponseType != ResponseReject {
				return nil, fmt.Errorf("unsupported follow response_type: %s", a.ResponseType)
			}
			if a.Follower.Id == "" {
				return nil, &ValidationError{ActivityType: ActivityFollow, Field: "follower"}
			}
			if a.Followed.Id == "" {
				return nil, &ValidationError{ActivityType: ActivityFollow, Field: "followed"}
			}
			return &a, nil
		}

		var a FollowActivity
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("failed to parse follow activity: %w", err)
		}
		if a.Actor.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityFollow, Field: "actor"}
		}
		if a.Object.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityFollow, Field: "object"}
		}
		return &a, nil

	case ActivityLike:
		var a LikeActivity
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("failed to parse like activity: %w", err)
		}
		if a.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityLike, Field: "id"}
		}
		if a.Author.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityLike, Field: "author"}
		}
		if a.Object == "" {
			return nil, &ValidationError{ActivityType: ActivityLike, Field: "object"}
		}
		return &a, nil

	case ActivityComment:
		var a CommentActivity
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("failed to parse comment activity: %w", err)
		}
		if a.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityComment, Field: "id"}
		}
		if a.Author.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityComment, Field: "author"}
		}
		if a.Comment == "" {
			return nil, &ValidationError{ActivityType: ActivityComment, Field: "comment"}
		}
		if a.Entry == "" {
			return nil, &ValidationError{ActivityType: ActivityComment, Field: "entry"}
		}
		return &a, nil

	case ActivityUndo:
		var a UndoActivity
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("failed to parse undo activity: %w", err)
		}
		if a.Actor.Id == "" {
			return nil, &ValidationError{ActivityType: ActivityUndo, Field: "actor"}
		}
		if len(a.Object) == 0 {
			return nil, &ValidationError{ActivityType: ActivityUndo, Field: "object"}
		}
		return &a, nil

	default:
		return nil, fmt.Errorf("unsupported activity type: %s", envelope.Type)
	}
}
